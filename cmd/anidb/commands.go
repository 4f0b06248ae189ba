package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/justchokingaround/anidb/internal/anidb"
	"github.com/justchokingaround/anidb/internal/database"
	"github.com/justchokingaround/anidb/internal/titles"
)

// openTitles builds the configured cache cascade. The returned close
// function releases the database when the database tier is in use.
func openTitles() (*titles.Getter, func(), error) {
	var db *gorm.DB
	if titles.UsesDatabase(&cfg.Cache) {
		var err error
		db, err = database.Open(&cfg.Database)
		if err != nil {
			return nil, nil, err
		}
	}
	closeDB := func() {
		if err := database.Close(db); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}

	tiers, err := titles.TiersFromConfig(&cfg.Cache, db)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	client := anidb.NewClient(cfg, logger)
	getter := titles.NewGetter(titles.NewResolver(logger), tiers, client.RequestTitles)
	return getter, closeDB, nil
}

var animeCmd = &cobra.Command{
	Use:   "anime <aid>",
	Short: "Fetch an anime record from the AniDB HTTP API",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aid, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid aid %q", args[0])
		}
		format, _ := cmd.Flags().GetString("output")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()

		client := anidb.NewClient(cfg, logger)
		record, err := client.RequestAnime(ctx, aid)
		if err != nil {
			var svcErr *anidb.ServiceError
			if errors.As(err, &svcErr) {
				return fmt.Errorf("AniDB refused the request: %s", svcErr.Message)
			}
			return err
		}

		if format == "text" {
			return printAnime(os.Stdout, record)
		}
		return writeOutput(os.Stdout, format, record)
	},
}

var titlesCmd = &cobra.Command{
	Use:   "titles",
	Short: "Resolve the titles index through the cache and list it",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		countOnly, _ := cmd.Flags().GetBool("count")

		getter, closeTitles, err := openTitles()
		if err != nil {
			return err
		}
		defer closeTitles()

		index, err := getter.Get(context.Background(), force)
		if err != nil {
			return err
		}

		if countOnly {
			fmt.Println(index.Len())
			return nil
		}
		return printIndex(os.Stdout, index)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search the cached titles index",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		limit, _ := cmd.Flags().GetInt("limit")

		getter, closeTitles, err := openTitles()
		if err != nil {
			return err
		}
		defer closeTitles()

		index, err := getter.Get(context.Background(), force)
		if err != nil {
			return err
		}

		matches := titles.Search(index, joinArgs(args), limit)
		if len(matches) == 0 {
			fmt.Println("No matches found.")
			return nil
		}
		return printMatches(os.Stdout, matches)
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the titles cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every cache tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		getter, closeTitles, err := openTitles()
		if err != nil {
			return err
		}
		defer closeTitles()

		ctx := context.Background()
		statuses := make([]tierStatus, 0, len(getter.Tiers()))
		for _, tier := range getter.Tiers() {
			statuses = append(statuses, inspectTier(ctx, tier))
		}
		return printStatus(os.Stdout, statuses)
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached titles data from every tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		getter, closeTitles, err := openTitles()
		if err != nil {
			return err
		}
		defer closeTitles()

		ctx := context.Background()
		for _, tier := range getter.Tiers() {
			clearer, ok := tier.(titles.Clearer)
			if !ok {
				continue
			}
			if err := clearer.Clear(ctx); err != nil {
				return fmt.Errorf("clear %s tier: %w", tier.Name(), err)
			}
			fmt.Printf("Cleared %s tier\n", tier.Name())
		}
		return nil
	},
}

func init() {
	animeCmd.Flags().StringP("output", "o", "text", "output format (text, yaml, json)")

	titlesCmd.Flags().Bool("force", false, "bypass the cache and fetch the titles dump")
	titlesCmd.Flags().Bool("count", false, "print only the number of works")

	searchCmd.Flags().Bool("force", false, "bypass the cache and fetch the titles dump")
	searchCmd.Flags().IntP("limit", "n", 20, "maximum number of results (0 for all)")

	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
