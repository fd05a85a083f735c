package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/repository/mongodb"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout+cfg.Database.QueryTimeout*4)
	defer cancel()

	// Connect to database
	db, err := mongodb.Connect(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	fmt.Printf("Connected to database %s\n", cfg.Database.Name)

	collections := make([]string, 0, len(mongodb.Indexes()))
	for name, models := range mongodb.Indexes() {
		collections = append(collections, fmt.Sprintf("%s (%d indexes)", name, len(models)))
	}
	sort.Strings(collections)
	for _, c := range collections {
		fmt.Printf("  ensuring %s\n", c)
	}

	n, err := mongodb.EnsureIndexes(ctx, db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to ensure indexes: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Ensured %d indexes\n", n)
}
