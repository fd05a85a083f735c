package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authentication commands",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthRefreshCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthWhoamiCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var provider, token, refreshToken string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in through the browser and store the session tokens",
		Long: `Sign-in happens through Google or GitHub in the browser. Open the printed
URL, finish sign-in, then paste the access and refresh tokens shown on the
account page.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			if token == "" {
				providers, err := apiClient.Providers(ctx)
				if err != nil {
					return fmt.Errorf("failed to list sign-in providers: %w", err)
				}
				if len(providers) == 0 {
					return fmt.Errorf("the server has no sign-in providers configured")
				}
				if provider == "" {
					provider = providers[0]
				}
				fmt.Printf("Open this URL to sign in with %s:\n\n  %s\n\n", provider, apiClient.LoginURL(provider))
				token = promptPassword("Access token: ")
				if refreshToken == "" {
					refreshToken = promptPassword("Refresh token (optional): ")
				}
			}
			if token == "" {
				return fmt.Errorf("an access token is required")
			}

			apiClient.SetToken(token)
			me, err := apiClient.Me(ctx)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			viper.Set("auth.token", token)
			if refreshToken != "" {
				viper.Set("auth.refresh_token", refreshToken)
			}
			viper.Set("auth.email", me.Identity.Email)

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Printf("Logged in as %s (%s, %s tier)\n", me.Identity.Email, me.Identity.Role, me.Identity.Tier)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "sign-in provider: google or github")
	cmd.Flags().StringVar(&token, "token", "", "access token")
	cmd.Flags().StringVar(&refreshToken, "refresh-token", "", "refresh token")

	return cmd
}

func newAuthRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Exchange the stored refresh token for new tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			refreshToken := viper.GetString("auth.refresh_token")
			if refreshToken == "" {
				return fmt.Errorf("no refresh token stored. Run 'lessonplanner auth login' first")
			}

			resp, err := apiClient.RefreshToken(context.Background(), refreshToken)
			if err != nil {
				return fmt.Errorf("refresh failed: %w", err)
			}

			viper.Set("auth.token", resp.AccessToken)
			viper.Set("auth.refresh_token", resp.RefreshToken)
			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to save credentials: %w", err)
			}

			fmt.Println("Session refreshed")
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = apiClient.Logout(context.Background())

			viper.Set("auth.token", "")
			viper.Set("auth.refresh_token", "")
			viper.Set("auth.email", "")

			if err := writeConfig(); err != nil {
				return fmt.Errorf("failed to clear credentials: %w", err)
			}

			fmt.Println("Logged out successfully")
			return nil
		},
	}
}

func newAuthWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show current user info",
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := apiClient.Me(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get user info: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(me)
			}

			id := me.Identity
			fmt.Printf("Email:    %s\n", id.Email)
			if me.User != nil {
				if me.User.Name != "" {
					fmt.Printf("Name:     %s\n", me.User.Name)
				}
				fmt.Printf("ID:       %s\n", me.User.ID)
				fmt.Printf("Expires:  %s\n", formatDate(me.User.Subscription.ExpiresAt))
			}
			fmt.Printf("Role:     %s\n", id.Role)
			fmt.Printf("Tier:     %s\n", formatTier(id.Tier))
			fmt.Printf("Credits:  %s\n", id.Credits)
			fmt.Printf("Storage:  %s plans\n", id.Storage)
			fmt.Printf("Features: %s\n", strings.Join(id.Features, ", "))
			return nil
		},
	}
}

func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func promptPassword(prompt string) string {
	fmt.Print(prompt)
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(secret))
}
