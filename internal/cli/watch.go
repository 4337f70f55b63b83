package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/lifelens/lifelens/internal/confront"
)

func newWatchCmd(opts *globalOptions) *cobra.Command {
	var debounceMs int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate confrontations whenever the journal changes",
		Long: `Start a long-running watcher on the journal database. When events are added
or removed, the weekly and monthly confrontations are regenerated.

Writes are debounced so that an import of many events triggers a single
regeneration. Confrontation writes made by the watcher itself are ignored.

Press Ctrl-C to stop.`,
		Args: cobra.NoArgs,
		RunE: withApp(opts, func(cmd *cobra.Command, args []string, a *app) error {
			debounce := a.cfg.Debounce()
			if cmd.Flags().Changed("debounce") {
				debounce = time.Duration(debounceMs) * time.Millisecond
			}

			dbPath, err := filepath.Abs(a.cfg.Database)
			if err != nil {
				return err
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()

			// SQLite replaces and appends to sidecar files, so watch the
			// directory rather than the database file itself.
			if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
				return fmt.Errorf("watch %s: %w", filepath.Dir(dbPath), err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			w := &journalWatcher{
				dbPath:      dbPath,
				fingerprint: a.engine.Store().Fingerprint,
				generate:    a.engine.GenerateConfrontations,
				out:         a.out,
			}

			fmt.Fprintf(a.out, "Watching %s (debounce %s). Press Ctrl-C to stop.\n", dbPath, debounce)
			w.refresh(ctx)
			return w.run(ctx, watcher.Events, watcher.Errors, debounce)
		}),
	}

	cmd.Flags().IntVar(&debounceMs, "debounce", 750, "debounce interval in milliseconds (default from config)")
	return cmd
}

// journalWatcher regenerates confrontations after the event table changes.
type journalWatcher struct {
	dbPath      string
	fingerprint func(context.Context) (string, error)
	generate    func(context.Context, confront.Period) (confront.Result, error)
	out         io.Writer

	last string
}

func (w *journalWatcher) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, debounce time.Duration) error {
	timer := time.NewTimer(debounce)
	timer.Stop() // Don't fire immediately.
	pending := false

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(w.out, "\nStopping watcher.")
			return nil

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !isJournalWrite(w.dbPath, ev) {
				continue
			}
			pending = true
			timer.Reset(debounce)

		case err, ok := <-errs:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")

		case <-timer.C:
			if !pending {
				continue
			}
			pending = false
			w.refresh(ctx)
		}
	}
}

// refresh regenerates both periods if events changed since the last run.
// It reports whether it regenerated.
func (w *journalWatcher) refresh(ctx context.Context) bool {
	fp, err := w.fingerprint(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("read journal fingerprint")
		return false
	}
	if fp == w.last {
		log.Debug().Msg("journal events unchanged")
		return false
	}
	w.last = fp

	ts := time.Now().Format("15:04:05")
	fmt.Fprintf(w.out, "[%s]", ts)
	for _, p := range []confront.Period{confront.Weekly, confront.Monthly} {
		res, err := w.generate(ctx, p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  warning: %s confrontations: %v\n", p, err)
			continue
		}
		fmt.Fprintf(w.out, " %s %d", p, res.Generated)
	}
	fmt.Fprintln(w.out)
	return true
}

// isJournalWrite reports whether ev touches the database or its WAL.
func isJournalWrite(dbPath string, ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(ev.Name)
	if filepath.Dir(name) != filepath.Dir(dbPath) {
		return false
	}
	base := filepath.Base(dbPath)
	switch filepath.Base(name) {
	case base, base + "-wal":
		return true
	}
	return false
}
