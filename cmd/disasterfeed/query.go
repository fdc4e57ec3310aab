package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/rajasatyajit/DisasterFeed/internal/api"
	apperrors "github.com/rajasatyajit/DisasterFeed/internal/errors"
	"github.com/rajasatyajit/DisasterFeed/internal/models"
)

var (
	flagSources      string
	flagCategory     string
	flagSeverity     string
	flagKeywords     string
	flagDisasterType string
	updatesLimit     int
	searchLimit      int
	socialLimit      int
	flagTimeout      time.Duration
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the official update sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			env, err := a.pipeline.Sources(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), env)
		})
	},
}

var updatesCmd = &cobra.Command{
	Use:   "updates",
	Short: "Print filtered, ranked official updates",
	Example: `  disasterfeed updates --category shelter
  disasterfeed updates --sources fema,redcross --severity high --limit 5`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(updatesLimit); err != nil {
			return err
		}
		q := models.UpdatesQuery{
			Sources:  models.ParseSources(flagSources),
			Category: flagCategory,
			Keywords: flagKeywords,
			Limit:    updatesLimit,
		}
		if flagSeverity != "" {
			severity, err := models.ParseSeverity(flagSeverity)
			if err != nil {
				return apperrors.Invalid("severity", "%v", err)
			}
			q.Severity = severity
		}
		return withApp(func(ctx context.Context, a *app) error {
			return printJSON(cmd.OutOrStdout(), a.pipeline.BuildUpdates(ctx, q))
		})
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search official updates by keywords",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(searchLimit); err != nil {
			return err
		}
		query := strings.TrimSpace(args[0])
		if query == "" {
			return apperrors.Missing("q")
		}
		q := models.SearchQuery{Query: query, Sources: models.ParseSources(flagSources), Limit: searchLimit}
		return withApp(func(ctx context.Context, a *app) error {
			return printJSON(cmd.OutOrStdout(), a.pipeline.BuildSearch(ctx, q))
		})
	},
}

var socialCmd = &cobra.Command{
	Use:   "social",
	Short: "Print prioritized social-media crisis reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkLimit(socialLimit); err != nil {
			return err
		}
		q := models.SocialQuery{Keywords: flagKeywords, DisasterType: flagDisasterType, Limit: socialLimit}
		return withApp(func(ctx context.Context, a *app) error {
			return printJSON(cmd.OutOrStdout(), a.pipeline.BuildSocial(ctx, q))
		})
	},
}

func init() {
	for _, cmd := range []*cobra.Command{updatesCmd, searchCmd} {
		cmd.Flags().StringVar(&flagSources, "sources", "", "comma-separated source ids (default: all active)")
	}
	updatesCmd.Flags().StringVar(&flagCategory, "category", "", "category filter")
	updatesCmd.Flags().StringVar(&flagSeverity, "severity", "", "severity filter (high, medium, low)")

	for _, cmd := range []*cobra.Command{updatesCmd, socialCmd} {
		cmd.Flags().StringVar(&flagKeywords, "keywords", "", "comma-separated keywords")
	}
	socialCmd.Flags().StringVar(&flagDisasterType, "disaster-type", "", "disaster type filter")

	updatesCmd.Flags().IntVar(&updatesLimit, "limit", 20, "maximum number of results")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of results")
	socialCmd.Flags().IntVar(&socialLimit, "limit", 50, "maximum number of results")

	for _, cmd := range []*cobra.Command{sourcesCmd, updatesCmd, searchCmd, socialCmd} {
		cmd.Flags().DurationVar(&flagTimeout, "timeout", 30*time.Second, "overall timeout")
	}
}

// withApp runs fn against a freshly wired app. Each run gets its own request
// id so its log lines can be correlated.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	ctx = context.WithValue(ctx, middleware.RequestIDKey, uuid.NewString())

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeApp(a)

	return fn(ctx, a)
}

func checkLimit(n int) error {
	if n < 1 || n > api.MaxLimit {
		return apperrors.Invalid("limit", "must be between 1 and %d", api.MaxLimit)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
