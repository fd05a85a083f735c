package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newBillingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Subscription plans and checkout",
	}

	cmd.AddCommand(newBillingPlansCmd())
	cmd.AddCommand(newBillingCheckoutCmd())
	cmd.AddCommand(newBillingVerifyCmd())
	cmd.AddCommand(newBillingPortalCmd())

	return cmd
}

func newBillingPlansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := apiClient.Billing().Plans(context.Background())
			if err != nil {
				return fmt.Errorf("failed to list plans: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(plans)
			}

			table := NewTable("PLAN", "PRICE", "STORAGE", "AI CREDITS", "FEATURES", "")
			for _, p := range plans {
				marker := ""
				switch {
				case p.IsCurrent:
					marker = "current"
				case p.IsPopular:
					marker = "popular"
				}
				table.AddRow(
					p.Name,
					fmt.Sprintf("%.2f %s/%s", p.Price, strings.ToUpper(p.Currency), p.Interval),
					p.Storage.String(),
					p.Credits.String(),
					truncate(strings.Join(p.Features, ", "), 50),
					marker,
				)
			}
			table.Render()
			return nil
		},
	}
}

func newBillingCheckoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "checkout <basic|premium>",
		Short:     "Start a checkout and print the payment URL",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"basic", "premium"},
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := apiClient.Billing().Checkout(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to start checkout: %w", err)
			}

			fmt.Printf("Complete payment at:\n\n  %s\n\n", session.URL)
			fmt.Printf("Then run: lessonplanner billing verify %s\n", session.ID)
			return nil
		},
	}
}

func newBillingVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <session-id>",
		Short: "Activate the subscription from a completed checkout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := apiClient.Billing().Verify(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to verify checkout: %w", err)
			}

			fmt.Printf("Subscription active: %s until %s\n", formatTier(u.Subscription.Tier), formatDate(u.Subscription.ExpiresAt))
			return nil
		},
	}
}

func newBillingPortalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "portal",
		Short: "Print the billing portal URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := apiClient.Billing().Portal(context.Background())
			if err != nil {
				return fmt.Errorf("failed to open billing portal: %w", err)
			}
			fmt.Println(url)
			return nil
		},
	}
}
