package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

func newLessonPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "lessonplan",
		Aliases: []string{"lp", "plan"},
		Short:   "Manage lesson plans",
	}

	cmd.AddCommand(newLessonPlanListCmd())
	cmd.AddCommand(newLessonPlanGetCmd())
	cmd.AddCommand(newLessonPlanCreateCmd())
	cmd.AddCommand(newLessonPlanGenerateCmd())
	cmd.AddCommand(newLessonPlanDeleteCmd())

	return cmd
}

func newLessonPlanListCmd() *cobra.Command {
	var page, pageSize int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your lesson plans, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("page-size") && viper.IsSet(keyDefaultPageSize) {
				pageSize = viper.GetInt(keyDefaultPageSize)
			}
			result, err := apiClient.LessonPlans().List(context.Background(), &client.ListOptions{Page: page, PageSize: pageSize})
			if err != nil {
				return fmt.Errorf("failed to list lesson plans: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(result)
			}

			if len(result.Items) == 0 {
				fmt.Println("No lesson plans found.")
				return nil
			}

			table := NewTable("ID", "TITLE", "SUBJECT", "AUDIENCE", "AI", "PUBLIC", "UPDATED")
			for _, p := range result.Items {
				table.AddRow(
					p.ID,
					truncate(p.Title, 40),
					truncate(p.Subject, 20),
					truncate(p.Audience, 16),
					yesNo(p.Generated),
					yesNo(p.IsPublic),
					formatDate(&p.UpdatedAt),
				)
			}
			table.Render()
			fmt.Printf("\nPage %d of %d (%d total)\n", result.Page, result.TotalPages, result.Total)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "plans per page")

	return cmd
}

func newLessonPlanGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a lesson plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := apiClient.LessonPlans().Get(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to get lesson plan: %w", err)
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(p)
			}

			fmt.Printf("Title:    %s\n", p.Title)
			fmt.Printf("Subject:  %s\n", p.Subject)
			fmt.Printf("Audience: %s\n", p.Audience)
			fmt.Printf("Time:     %s\n", p.Time)
			fmt.Printf("Topic:    %s\n", p.Topic)
			if len(p.Tags) > 0 {
				fmt.Printf("Tags:     %s\n", strings.Join(p.Tags, ", "))
			}
			fmt.Printf("Public:   %s\n", yesNo(p.IsPublic))
			fmt.Println(strings.Repeat("-", 40))
			fmt.Println(p.Content)
			return nil
		},
	}
}

func newLessonPlanCreateCmd() *cobra.Command {
	var req client.CreateLessonPlanRequest
	var contentFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a lesson plan from a Markdown file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Title == "" {
				req.Title = promptInput("Title: ")
			}
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return fmt.Errorf("failed to read content: %w", err)
				}
				req.Content = string(data)
			}

			p, err := apiClient.LessonPlans().Create(context.Background(), req)
			if err != nil {
				return quotaHint(fmt.Errorf("failed to create lesson plan: %w", err))
			}

			fmt.Printf("Lesson plan created: %s\n", p.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Title, "title", "", "plan title")
	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject")
	cmd.Flags().StringVar(&req.Audience, "audience", "", "grade or audience")
	cmd.Flags().StringVar(&req.Time, "time", "", "lesson length")
	cmd.Flags().StringVar(&req.Topic, "topic", "", "topic")
	cmd.Flags().StringSliceVar(&req.Tags, "tag", nil, "tag (repeatable)")
	cmd.Flags().BoolVar(&req.IsPublic, "public", false, "make the plan public")
	cmd.Flags().StringVarP(&contentFile, "file", "f", "", "Markdown file with the plan content")

	return cmd
}

func newLessonPlanGenerateCmd() *cobra.Command {
	var req client.GenerateRequest

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a lesson plan with AI (spends one credit)",
		RunE: func(cmd *cobra.Command, args []string) error {
			applyGenerateDefaults(&req)
			if req.Subject == "" || req.Grade == "" {
				return fmt.Errorf("--subject and --grade are required (or set defaults.subject and defaults.grade)")
			}

			resp, err := apiClient.LessonPlans().Generate(context.Background(), req)
			if err != nil {
				return quotaHint(fmt.Errorf("generation failed: %w", err))
			}

			format := getOutputFormat()
			if format != "table" {
				return printOutput(resp)
			}

			fmt.Println(resp.Content)
			fmt.Println(strings.Repeat("-", 40))
			if resp.LessonPlan != nil {
				fmt.Printf("Saved as %s (%s)\n", resp.LessonPlan.ID, resp.LessonPlan.Title)
			}
			if resp.AICreditsRemaining != nil {
				fmt.Printf("AI credits remaining: %s\n", resp.AICreditsRemaining)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Subject, "subject", "", "subject (defaults.subject)")
	cmd.Flags().StringVar(&req.Grade, "grade", "", "grade level (defaults.grade)")
	cmd.Flags().StringVar(&req.Topic, "topic", "", "topic (required)")
	cmd.Flags().StringVar(&req.Duration, "duration", "", "lesson length, e.g. \"45 minutes\"")
	cmd.Flags().StringVar(&req.Standards, "standards", "", "standards to cover")
	cmd.Flags().StringVar(&req.Objectives, "objectives", "", "learning objectives")
	cmd.Flags().StringVar(&req.Differentiation, "differentiation", "", "differentiation strategies")
	cmd.Flags().StringVar(&req.Extensions, "extensions", "", "extension activities")
	cmd.Flags().BoolVar(&req.Save, "save", false, "save the result as a lesson plan")
	cmd.Flags().StringVar(&req.Title, "title", "", "title when saving")
	_ = cmd.MarkFlagRequired("topic")

	return cmd
}

func applyGenerateDefaults(req *client.GenerateRequest) {
	if req.Subject == "" {
		req.Subject = viper.GetString(keyDefaultSubject)
	}
	if req.Grade == "" {
		req.Grade = viper.GetString(keyDefaultGrade)
	}
	if req.Duration == "" {
		req.Duration = viper.GetString(keyDefaultDuration)
	}
}

func newLessonPlanDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a lesson plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apiClient.LessonPlans().Delete(context.Background(), args[0]); err != nil {
				return fmt.Errorf("failed to delete lesson plan: %w", err)
			}
			fmt.Printf("Lesson plan %s deleted\n", args[0])
			return nil
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
