package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/config"
	"github.com/lifelens/lifelens/internal/db"
	"github.com/lifelens/lifelens/internal/engine"
	"github.com/lifelens/lifelens/internal/forensic"
	"github.com/lifelens/lifelens/internal/journal"
	"github.com/lifelens/lifelens/internal/logging"
	"github.com/lifelens/lifelens/internal/render"
)

// app is everything a command needs once flags and config are resolved.
type app struct {
	cfg      config.Config
	db       *db.DB
	engine   *engine.Engine
	renderer render.Renderer
	out      io.Writer
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(opts *globalOptions) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.dbPath != "" {
		cfg.Database = opts.dbPath
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
	}
	if opts.timezone != "" {
		cfg.Timezone = opts.timezone
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, nil
}

// openApp resolves configuration, sets up logging and opens the journal.
// Callers must Close the result.
func openApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return nil, err
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Output.Color); err != nil {
		log.Warn().Err(err).Msg("falling back to info level")
	}

	r, ok := render.Get(cfg.Output.Format)
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (valid: %v)", cfg.Output.Format, render.ValidFormats())
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug().Str("db", cfg.Database).Str("tz", loc.String()).Msg("journal opened")

	eng := engine.New(journal.NewStore(database),
		engine.WithLocation(loc),
		engine.WithDefaultWindow(cfg.SnapshotWindow(), cfg.ForensicWindow()),
		engine.WithForensic(forensic.Options{
			SimilarLimit: cfg.Forensic.SimilarLimit,
			VisualTop:    cfg.Forensic.VisualTop,
		}),
	)

	return &app{
		cfg:      cfg,
		db:       database,
		engine:   eng,
		renderer: r,
		out:      cmd.OutOrStdout(),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

// print renders v in the configured format.
func (a *app) print(v any) error {
	out, err := a.renderer.Render(v, render.Options{Location: a.engine.Location()})
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, out)
	return err
}

// withApp opens the app for the duration of fn.
func withApp(opts *globalOptions, fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd, opts)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "  warning: close database: %v\n", err)
			}
		}()
		return fn(cmd, args, a)
	}
}
