package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"FlashLeaderserver/internal/app"
	"FlashLeaderserver/internal/config"
	"FlashLeaderserver/internal/domain"
	"FlashLeaderserver/internal/ranking"
	"FlashLeaderserver/internal/seed"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type cli struct {
	app     *app.App
	verbose bool
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "flashctl",
		Short:        "Operate a FlashLeader database",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DBDSN == "" {
				return errors.New("APP_DB_DSN is required")
			}
			// The seed file is applied explicitly by the seed command.
			cfg.SeedFile = ""

			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if c.verbose {
				logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
			}
			a, err := app.New(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if c.app == nil {
				return nil
			}
			return c.app.Close()
		},
	}
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log to stderr")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 30*time.Second, "deadline for the whole command")

	root.AddCommand(
		newPurgeUserCmd(c),
		newLeaderboardCmd(c),
		newSeedCmd(c),
		newUserCmd(c),
		newMigrateCmd(c),
	)
	return root
}

func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), c.timeout)
}

func newPurgeUserCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "purge-user <user-id>",
		Short: "Delete a user's game sessions and friendships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			userID := strings.TrimSpace(args[0])
			if _, err := c.app.Users.GetUserByID(ctx, userID); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return fmt.Errorf("user %s not found", userID)
				}
				return err
			}
			res, err := c.app.Accounts.Purge(ctx, userID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), res)
		},
	}
}

func newLeaderboardCmd(c *cli) *cobra.Command {
	var (
		criterion string
		friendsOf string
		limit     int
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the leaderboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			crit := ranking.ParseCriterion(criterion)
			entries, err := c.app.Leaderboard.Get(ctx, friendsOf, crit, friendsOf != "", limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			return writeLeaderboard(cmd.OutOrStdout(), crit, entries)
		},
	}
	cmd.Flags().StringVar(&criterion, "criterion", string(ranking.ByPoints), "points, studyTime, gamesPlayed or streak")
	cmd.Flags().StringVar(&friendsOf, "friends-of", "", "rank only this user and their friends")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of entries")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeLeaderboard(w io.Writer, crit ranking.Criterion, entries []domain.LeaderboardEntry) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RANK\tUSER\tID\t%s\n", strings.ToUpper(string(crit)))
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\n", e.Rank, e.Username, e.UserID, e.Score)
	}
	return tw.Flush()
}

func newSeedCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load users and decks from a YAML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := seed.Load(args[0])
			if err != nil {
				return err
			}
			ctx, cancel := c.context(cmd)
			defer cancel()

			res, err := seed.Apply(ctx, c.app.Seeder, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d decks=%d skipped_decks=%d\n", res.Users, res.Decks, res.SkippedDecks)
			return nil
		},
	}
}

func newUserCmd(c *cli) *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var u seed.User
	add := &cobra.Command{
		Use:   "add",
		Short: "Create or update a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			res, err := seed.Apply(ctx, c.app.Seeder, seed.File{Users: []seed.User{u}})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "users=%d\n", res.Users)
			return nil
		},
	}
	add.Flags().StringVar(&u.ID, "id", "", "user id (generated when empty)")
	add.Flags().StringVar(&u.Email, "email", "", "email address")
	add.Flags().StringVar(&u.Username, "username", "", "username (defaults to the email local part)")
	add.Flags().StringVar(&u.DisplayName, "display-name", "", "display name")
	_ = add.MarkFlagRequired("email")

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's progression and friends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.context(cmd)
			defer cancel()

			got, err := c.app.Users.GetUserByID(ctx, args[0])
			if err != nil {
				return err
			}
			friends, err := c.app.Friends.ListFriends(ctx, got.ID)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"user":        got.Summary(),
				"email":       got.Email,
				"progression": got.Progression(),
				"friends":     friends,
			})
		},
	}

	user.AddCommand(add, show)
	return user
}

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Connecting already migrated the schema.
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
