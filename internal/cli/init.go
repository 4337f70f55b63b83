package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/config"
	"github.com/lifelens/lifelens/internal/db"
)

func newInitCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and the journal database",
		Long: `Write a default config file (unless one exists) and create the journal
database with its schema. Running it again is safe: migrations are idempotent
and an existing config is kept unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			path := opts.configPath
			if path == "" {
				path = config.DefaultPath()
			}

			_, statErr := os.Stat(path)
			switch {
			case statErr == nil && !force:
				fmt.Fprintf(out, "Config:   %s (kept)\n", path)
			case statErr == nil || os.IsNotExist(statErr):
				cfg := config.Default()
				if opts.dbPath != "" {
					cfg.Database = opts.dbPath
				}
				if opts.timezone != "" {
					cfg.Timezone = opts.timezone
				}
				if err := config.Save(path, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "Config:   %s\n", path)
			default:
				return fmt.Errorf("stat config: %w", statErr)
			}

			cfg, err := resolveConfig(opts)
			if err != nil {
				return err
			}
			if _, err := cfg.Location(); err != nil {
				return err
			}

			database, err := db.Open(cfg.Database)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			if err := database.Close(); err != nil {
				return err
			}
			fmt.Fprintf(out, "Journal:  %s\n", cfg.Database)
			fmt.Fprintf(out, "Timezone: %s\n", cfg.Timezone)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file with defaults")
	return cmd
}
