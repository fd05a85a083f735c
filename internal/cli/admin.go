package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "User administration (admin role required)",
	}

	cmd.AddCommand(newAdminUsersCmd())
	cmd.AddCommand(newAdminSetRoleCmd())
	cmd.AddCommand(newAdminSetSubscriptionCmd())

	return cmd
}

func newAdminUsersCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := apiClient.Admin().ListUsers(context.Background(), &client.ListOptions{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(result)
			}

			table := NewTable("ID", "EMAIL", "ROLE", "TIER", "CREDITS", "EXPIRES")
			for _, u := range result.Data {
				table.AddRow(
					u.ID,
					truncate(u.Email, 36),
					u.Role,
					formatTier(u.Subscription.Tier),
					u.Subscription.AICredits.String(),
					formatDate(u.Subscription.ExpiresAt),
				)
			}
			table.Render()
			fmt.Printf("\nPage %d of %d (%d users)\n", result.Page, result.TotalPages, result.TotalItems)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "users per page")

	return cmd
}

func newAdminSetRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "set-role <user-id> <user|premium|admin>",
		Short:     "Change a user's role",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"user", "premium", "admin"},
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := apiClient.Admin().SetRole(context.Background(), args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to set role: %w", err)
			}
			fmt.Printf("%s is now %s\n", u.Email, u.Role)
			return nil
		},
	}
}

func newAdminSetSubscriptionCmd() *cobra.Command {
	var tier, credits, expires string
	var features []string
	var clearExpiry bool

	cmd := &cobra.Command{
		Use:   "set-subscription <user-id>",
		Short: "Change a user's subscription; a tier change resets features unless --feature is given",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd client.SubscriptionUpdate
			if tier != "" {
				upd.Tier = &tier
			}
			if credits != "" {
				var l client.Limit
				if err := l.UnmarshalJSON([]byte(fmt.Sprintf("%q", credits))); err != nil {
					return err
				}
				upd.AICredits = &l
			}
			if expires != "" {
				t, err := time.Parse("2006-01-02", expires)
				if err != nil {
					return fmt.Errorf("--expires must be YYYY-MM-DD: %w", err)
				}
				upd.ExpiresAt = &t
			}
			upd.ClearExpiry = clearExpiry
			if cmd.Flags().Changed("feature") {
				upd.Features = &features
			}

			u, err := apiClient.Admin().SetSubscription(context.Background(), args[0], upd)
			if err != nil {
				return fmt.Errorf("failed to set subscription: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(u)
			}
			fmt.Printf("%s: %s, %s credits, expires %s\n", u.Email, formatTier(u.Subscription.Tier), u.Subscription.AICredits, formatDate(u.Subscription.ExpiresAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&tier, "tier", "", "tier: free, basic or premium")
	cmd.Flags().StringVar(&credits, "credits", "", "AI credits remaining, or \"unlimited\"")
	cmd.Flags().StringVar(&expires, "expires", "", "expiry date YYYY-MM-DD")
	cmd.Flags().BoolVar(&clearExpiry, "clear-expiry", false, "remove the expiry date")
	cmd.Flags().StringSliceVar(&features, "feature", nil, "feature (repeatable); replaces the feature list")

	return cmd
}
