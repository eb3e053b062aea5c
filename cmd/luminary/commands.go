package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nerrad567/luminary-core/internal/auth"
	"github.com/nerrad567/luminary-core/internal/infrastructure/config"
	"github.com/nerrad567/luminary-core/internal/infrastructure/database"
	"github.com/nerrad567/luminary-core/internal/show"
)

// defaultConfigPath is used when neither --config nor LUMINARY_CONFIG is set.
const defaultConfigPath = "configs/config.yaml"

// newRootCmd builds the command tree. A fresh tree per call keeps tests
// independent.
func newRootCmd() *cobra.Command {
	var configPath string
	resolve := func() string {
		if configPath != "" {
			return configPath
		}
		return getConfigPath()
	}

	root := &cobra.Command{
		Use:   "luminary",
		Short: "Luminary - coordinated light show engine",
		Long: `Luminary runs colour shows across a set of networked lights.

Shows compute colours per light, a write coordinator debounces them per
light, and colour commands are published over MQTT.

Without a subcommand it behaves like serve.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), resolve())
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"path to config file (default $LUMINARY_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		newServeCmd(resolve),
		newShowsCmd(),
		newMigrateCmd(resolve),
		newTokenCmd(resolve),
		newVersionCmd(),
	)
	return root
}

func newServeCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the show engine and HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath())
		},
	}
}

func newShowsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shows",
		Short: "List the show catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDESCRIPTION")
			for _, info := range show.NewDefaultRegistry(nil).List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", info.ID, info.Name, info.Description)
			}
			return tw.Flush()
		},
	}
}

func newMigrateCmd(configPath func() string) *cobra.Command {
	var down, status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			switch {
			case status:
				return printMigrationStatus(ctx, cmd, db)
			case down:
				if err := db.MigrateDown(ctx); err != nil {
					return fmt.Errorf("rolling back migration: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back latest migration")
				return nil
			default:
				if err := db.Migrate(ctx); err != nil {
					return fmt.Errorf("running migrations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "migrations up to date")
				return nil
			}
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "roll back the latest migration")
	cmd.Flags().BoolVar(&status, "status", false, "show applied and pending migrations")
	cmd.MarkFlagsMutuallyExclusive("down", "status")
	return cmd
}

func printMigrationStatus(ctx context.Context, cmd *cobra.Command, db *database.DB) error {
	applied, pending, err := db.GetMigrationStatus(ctx)
	if err != nil {
		return fmt.Errorf("reading migration status: %w", err)
	}
	out := cmd.OutOrStdout()
	for _, r := range applied {
		fmt.Fprintf(out, "applied  %s  %s\n", r.Version, r.AppliedAt.Format("2006-01-02 15:04:05"))
	}
	for _, m := range pending {
		fmt.Fprintf(out, "pending  %s  %s\n", m.Version, m.Name)
	}
	return nil
}

func newTokenCmd(configPath func() string) *cobra.Command {
	var (
		subject  string
		readOnly bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for the control endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.API.Auth.JWTSecret == "" {
				return fmt.Errorf("api.auth.jwt_secret is not set: %w", auth.ErrMissingSecret)
			}

			var scopes []string
			if !readOnly {
				scopes = append(scopes, auth.ScopeControl)
			}
			token, err := auth.GenerateToken(subject, cfg.API.Auth.JWTSecret, cfg.API.Auth.TokenLifetime(), scopes...)
			if err != nil {
				return fmt.Errorf("minting token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "operator", "name recorded against requests made with the token")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "omit the control scope")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "luminary %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

// getConfigPath returns LUMINARY_CONFIG if set, otherwise the default path.
func getConfigPath() string {
	if path := os.Getenv("LUMINARY_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
