package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show account and server summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			format := getOutputFormat()
			if format != "table" {
				summary := map[string]interface{}{}

				if health, err := apiClient.Ready(ctx); err == nil {
					summary["server"] = health.Status
				}
				if usage, err := apiClient.Usage(ctx); err == nil {
					summary["usage"] = usage
				}
				return printOutput(summary)
			}

			fmt.Println("Lesson Planner")
			fmt.Println(strings.Repeat("=", 40))

			health, err := apiClient.Ready(ctx)
			if err != nil {
				fmt.Printf("  Server:      (error: %v)\n", err)
			} else {
				fmt.Printf("  Server:      %s (database %s)\n", health.Status, health.Database)
			}

			usage, err := apiClient.Usage(ctx)
			if err != nil {
				fmt.Printf("  Account:     (error: %v)\n", err)
				return nil
			}
			fmt.Printf("  Role:        %s\n", usage.Role)
			fmt.Printf("  Tier:        %s\n", formatTier(usage.Tier))
			fmt.Printf("  Plans:       %s\n", formatUsage(usage.Storage.Used, usage.Storage.Limit))
			fmt.Printf("  AI credits:  %s remaining\n", usage.Credits)

			return nil
		},
	}
}

func newHealthCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check that the server and its database are ready",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			var (
				health *client.HealthResponse
				err    error
			)
			if wait > 0 {
				waitCtx, cancel := context.WithTimeout(ctx, wait)
				defer cancel()
				health, err = apiClient.WaitReady(waitCtx, 2*time.Second)
			} else {
				health, err = apiClient.Ready(ctx)
			}
			if err != nil {
				return fmt.Errorf("server not ready: %w", err)
			}

			if getOutputFormat() != "table" {
				return printOutput(health)
			}

			fmt.Printf("Server:    %s\n", health.Status)
			fmt.Printf("Database:  %s (%dms)\n", health.Database, health.LatencyMs)
			names := make([]string, 0, len(health.Features))
			for name := range health.Features {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				state := "disabled"
				if health.Features[name] {
					state = "enabled"
				}
				fmt.Printf("%-10s %s\n", name+":", state)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "keep polling up to this long, e.g. 30s")
	return cmd
}
