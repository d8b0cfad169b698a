package main

import (
	"log/slog"
	"net/http"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/recera/dragplot/cmd/dragplot/internal/config"
	"github.com/recera/dragplot/pkg/chart"
	"github.com/recera/dragplot/pkg/dragplot"
	"github.com/recera/dragplot/pkg/live"
	"github.com/recera/dragplot/pkg/scheduler"
)

func newServeCommand(cfgPath, logLevel *string) *cobra.Command {
	var addr string
	var noWatch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chart in the browser",
		Long: `Starts the live server. Every page load gets its own chart session;
drags run on the server and patches stream back over a WebSocket.
When watching is enabled, edits to the config file reload open pages.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			if err := setupLogging(cfg, *logLevel); err != nil {
				return err
			}
			if addr != "" {
				cfg.Serve.Addr = addr
			}
			if noWatch {
				cfg.Serve.Watch = false
			}
			return runServe(*cfgPath, cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable config file watching")
	return cmd
}

func runServe(cfgPath string, cfg *config.Config) error {
	log := slog.Default()

	// Sessions created after a config edit pick up the new file; open
	// pages get a RELOAD and reconnect into fresh sessions.
	var current atomic.Pointer[config.Config]
	current.Store(cfg)

	app := func(sched *scheduler.Scheduler) (*chart.Chart, *dragplot.Binding, error) {
		c := current.Load()
		dragOpts, err := c.DragOptions()
		if err != nil {
			return nil, nil, err
		}
		ch := chart.New("chart", c.SeriesData(), c.ChartOptions(), sched)
		b := dragplot.Bind(ch, dragOpts)
		return ch, b, nil
	}

	server := live.NewServer(app, &live.Options{
		AllowedOrigins: cfg.Serve.AllowedOrigins,
		Logger:         log,
	})

	if cfg.Serve.Watch {
		if err := watchConfig(cfgPath, &current, server, log); err != nil {
			log.Warn("config watching disabled", "error", err)
		}
	}

	log.Info("serving", "addr", cfg.Serve.Addr, "config", cfgPath)
	return http.ListenAndServe(cfg.Serve.Addr, server.Handler())
}

// watchConfig reloads the config when the file changes and pushes
// RELOAD to connected pages. Editors often replace the file, so the
// parent directory is watched and rename/create count as changes.
func watchConfig(path string, current *atomic.Pointer[config.Config], server *live.Server, log *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}
	name := filepath.Base(path)

	go func() {
		var pending <-chan time.Time
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
					continue
				}
				// Debounce bursts from editors writing in chunks.
				pending = time.After(150 * time.Millisecond)

			case <-pending:
				pending = nil
				cfg, err := config.Load(path)
				if err != nil {
					log.Warn("config reload failed", "error", err)
					continue
				}
				prev := current.Load()
				current.Store(cfg)
				// Data-only edits hot-swap into live sessions; layout
				// or behavior changes need fresh pages.
				if reflect.DeepEqual(prev.Chart, cfg.Chart) &&
					reflect.DeepEqual(prev.Drag, cfg.Drag) {
					server.UpdateSeries(cfg.SeriesData())
					log.Info("series updated", "sessions", server.SessionCount())
				} else {
					server.Broadcast("RELOAD")
					log.Info("config reloaded", "path", path, "sessions", server.SessionCount())
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", "error", err)
			}
		}
	}()
	return nil
}
