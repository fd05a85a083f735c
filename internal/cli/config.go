package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	keyServerURL       = "server_url"
	keyOutput          = "output"
	keyDefaultSubject  = "defaults.subject"
	keyDefaultGrade    = "defaults.grade"
	keyDefaultDuration = "defaults.duration"
	keyDefaultPageSize = "defaults.page_size"
)

// settableKeys are the keys `config set` accepts, with a validator for each
var settableKeys = map[string]func(string) error{
	keyServerURL: func(v string) error {
		u, err := url.Parse(v)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("expected an http(s) URL")
		}
		return nil
	},
	keyOutput: func(v string) error {
		switch v {
		case "table", "json", "yaml":
			return nil
		}
		return fmt.Errorf("expected table, json or yaml")
	},
	keyDefaultSubject:  nonEmpty,
	keyDefaultGrade:    nonEmpty,
	keyDefaultDuration: nonEmpty,
	keyDefaultPageSize: func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			return fmt.Errorf("expected a number between 1 and 100")
		}
		return nil
	},
}

func nonEmpty(v string) error {
	if strings.TrimSpace(v) == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

func validateSetting(key, value string) error {
	check, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(knownKeys(), ", "))
	}
	if err := check(value); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func knownKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for k := range settableKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive first-time setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := runConfigInit(bufio.NewReader(os.Stdin), cmd.OutOrStdout()); err != nil {
				return err
			}
			if err := writeConfig(); err != nil {
				return err
			}
			path, _ := configFilePath()
			fmt.Printf("Configuration saved to %s\n", path)
			return nil
		},
	}
}

// runConfigInit prompts for each setting, keeping the current value on empty input
func runConfigInit(in *bufio.Reader, out io.Writer) error {
	prompts := []struct {
		key   string
		label string
	}{
		{keyServerURL, "Server URL"},
		{keyOutput, "Default output format (table/json/yaml)"},
		{keyDefaultSubject, "Default subject for generate"},
		{keyDefaultGrade, "Default grade for generate"},
	}

	for _, p := range prompts {
		current := viper.GetString(p.key)
		fmt.Fprintf(out, "%s [%s]: ", p.label, current)
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		value := strings.TrimSpace(line)
		if value == "" {
			continue
		}
		if err := validateSetting(p.key, value); err != nil {
			return err
		}
		viper.Set(p.key, value)
	}
	return nil
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Known keys: " + strings.Join(knownKeys(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateSetting(args[0], args[1]); err != nil {
				return err
			}
			viper.Set(args[0], args[1])
			if err := writeConfig(); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.HasPrefix(args[0], "auth") {
				fmt.Printf("%s: (hidden)\n", args[0])
				return nil
			}
			if !viper.IsSet(args[0]) {
				fmt.Printf("%s: (not set)\n", args[0])
				return nil
			}
			fmt.Printf("%s: %v\n", args[0], viper.Get(args[0]))
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range viper.AllKeys() {
				if strings.HasPrefix(key, "auth.") {
					continue
				}
				fmt.Printf("%s: %v\n", key, viper.Get(key))
			}
			if viper.GetString("auth.token") != "" {
				fmt.Println("auth: (credentials stored)")
			}
			return nil
		},
	}
}

func configFilePath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// writeConfig persists viper's settings with owner-only permissions, since the file holds tokens
func writeConfig() error {
	configPath, err := configFilePath()
	if err != nil {
		return err
	}
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(configPath, 0600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}
	return nil
}
