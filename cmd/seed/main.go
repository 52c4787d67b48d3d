package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cognition-berries/pkg/config"
	"cognition-berries/pkg/database"
	"cognition-berries/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	adminEmail string
	adminName  string
	adminUID   string
	skipIndex  bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load an admin account and sample courses",
	Long: `Seeds the database with an admin user and a small course catalogue.

Running it again is safe: courses are matched on course_id and the admin on
email, so existing records are left untouched.

Example:
  seed --admin-email admin@cognitionberries.com --admin-name "Site Admin"`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().StringVar(&adminEmail, "admin-email", "", "Email of the admin account (required)")
	rootCmd.Flags().StringVar(&adminName, "admin-name", "Administrator", "Display name of the admin account")
	rootCmd.Flags().StringVar(&adminUID, "admin-uid", "", "Firebase uid of the admin, if already known")
	rootCmd.Flags().BoolVar(&skipIndex, "skip-indexes", false, "Do not create indexes before seeding")
	_ = rootCmd.MarkFlagRequired("admin-email")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.NewWithOptions(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat}).Named("seed")
	defer log.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	db, err := database.NewMongoDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())

	if !skipIndex {
		if err := db.EnsureIndexes(ctx, log); err != nil {
			return err
		}
	}

	seeder := newSeeder(db.DB, log)
	created, err := seeder.seedAdmin(ctx, strings.ToLower(strings.TrimSpace(adminEmail)), adminName, adminUID)
	if err != nil {
		return err
	}
	if created {
		log.Info("Created admin %s", adminEmail)
	} else {
		log.Info("Admin %s already present, role set to admin", adminEmail)
	}

	stats, err := seeder.seedCourses(ctx, sampleCourses())
	if err != nil {
		return err
	}
	log.Info("Database seeded: %d courses and %d quizzes created, %d courses already present",
		stats.CoursesCreated, stats.QuizzesCreated, stats.CoursesSkipped)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
