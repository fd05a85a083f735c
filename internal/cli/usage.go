package cli

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

func newUsageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show storage and AI credit usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			summary, err := apiClient.Usage(context.Background())
			if err != nil {
				return fmt.Errorf("failed to get usage: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(summary)
			}

			fmt.Printf("Tier:        %s\n", formatTier(summary.Tier))
			fmt.Printf("Storage:     %s\n", formatUsage(summary.Storage.Used, summary.Storage.Limit))
			fmt.Printf("AI credits:  %s remaining of %s\n", summary.Credits, summary.CreditLimit)

			if len(summary.RecentUsage) > 0 {
				fmt.Println()
				table := NewTable("WHEN", "FEATURE", "CREDITS")
				for _, u := range summary.RecentUsage {
					table.AddRow(u.CreatedAt.Local().Format("2006-01-02 15:04"), u.Feature, fmt.Sprintf("%d", u.CreditsUsed))
				}
				table.Render()
			}
			return nil
		},
	}
}

// quotaHint adds an upgrade hint to quota rejections
func quotaHint(err error) error {
	var apiErr *client.APIError
	if !stderrors.As(err, &apiErr) {
		return err
	}
	q, ok := apiErr.Quota()
	if !ok {
		return err
	}
	return fmt.Errorf("%w\n%s limit of %s reached on the %s tier. Run 'lessonplanner billing plans' to upgrade", err, q.Resource, q.Limit, q.Tier)
}
