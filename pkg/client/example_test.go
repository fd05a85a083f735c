package client_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/pratik-mahalle/lessonplanner/pkg/client"
)

// Example demonstrates basic usage of the client
func Example() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
		Token:   "access-token-from-sign-in",
	})

	ctx := context.Background()

	me, err := c.Me(ctx)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Signed in as %s (%s)\n", me.Identity.Email, me.Identity.Tier)

	page, err := c.LessonPlans().List(ctx, &client.ListOptions{Page: 1, PageSize: 10})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Found %d of %d lesson plans\n", len(page.Items), page.Total)
}

// ExampleLessonPlanService_Generate demonstrates generating and saving a plan
func ExampleLessonPlanService_Generate() {
	c := client.NewClient(client.Config{
		BaseURL: "http://localhost:8080",
		Token:   "access-token-from-sign-in",
	})

	resp, err := c.LessonPlans().Generate(context.Background(), client.GenerateRequest{
		Subject: "Science",
		Grade:   "5th grade",
		Topic:   "Photosynthesis",
		Save:    true,
	})
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			if q, ok := apiErr.Quota(); ok {
				log.Fatalf("%s limit reached: %d of %s on %s", q.Resource, q.Used, q.Limit, q.Tier)
			}
		}
		log.Fatal(err)
	}

	fmt.Printf("Saved %q\n", resp.LessonPlan.Title)
}
