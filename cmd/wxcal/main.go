package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"wxcal/internal/calendar"
	"wxcal/internal/capture"
	"wxcal/internal/config"
	"wxcal/internal/ics"
	appLog "wxcal/internal/log"
	"wxcal/internal/model"
	"wxcal/internal/schedule"
	"wxcal/internal/tui"
	"wxcal/internal/web"
)

const version = "0.3.0"

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ",") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

type flagConfig struct {
	configPath string
	mode       string
	listen     string
	imports    stringList
	export     string
	snapshot   string
	debug      bool
}

func parseFlags(args []string) (flagConfig, error) {
	var cfg flagConfig
	fs := flag.NewFlagSet("wxcal", flag.ContinueOnError)

	fs.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	fs.StringVar(&cfg.mode, "mode", "tui", "Host to run: tui or web")
	fs.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	fs.Var(&cfg.imports, "import", "ICS file to import on start (repeatable)")
	fs.StringVar(&cfg.export, "export", "", "Write all events to this ICS file and exit")
	fs.StringVar(&cfg.snapshot, "snapshot", "", "Render /calendar to this PNG file and exit")
	fs.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	switch cfg.mode {
	case "tui", "web":
	default:
		return cfg, fmt.Errorf("unknown mode %q (want tui or web)", cfg.mode)
	}
	return cfg, nil
}

func main() {
	flags, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	conf, err := config.Load(flags.configPath)
	if conf == nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if err != nil {
		appLog.Error("using defaults; config not written", err, "config_path", flags.configPath)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.debug {
		conf.LogLevel = "debug"
	}
	level, _ := appLog.ParseLevel(conf.LogLevel)
	appLog.SetLevel(level)

	appLog.Info("wxcal starting", "version", version)
	appLog.Info("effective config",
		"mode", flags.mode,
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"horizon_days", conf.HorizonDays,
		"ics_count", len(conf.ICS),
		"imports", len(flags.imports),
		"seed", conf.Seed(),
	)

	loc := conf.Location()
	var seed []model.Event
	if conf.Seed() {
		seed = calendar.SampleEvents(time.Now().In(loc))
	}
	view := calendar.Mount(calendar.Options{
		WeekStart: conf.Weekday(),
		Location:  loc,
		Seed:      seed,
	})

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	imp := newImporter(conf, flags.imports)
	for id, events := range imp.run(ctx) {
		view.ReplaceSource(id, events)
	}

	switch {
	case flags.export != "":
		err = exportICS(flags.export, view.Events())
	case flags.snapshot != "":
		err = runSnapshot(ctx, conf, view, flags.snapshot)
	case flags.mode == "web":
		err = runWeb(ctx, conf, view, imp, flags.debug)
	default:
		err = runTUI(ctx, conf, view, imp)
	}
	if err != nil {
		appLog.Error("wxcal failed", err)
		os.Exit(1)
	}
	appLog.Info("wxcal exiting")
}

// importer re-reads every configured ICS source and -import file.
type importer struct {
	fetcher *ics.Fetcher
	sources []ics.Source
	horizon int
	loc     *time.Location
	classes ics.Classifier
}

func newImporter(conf *config.Config, files []string) *importer {
	return &importer{
		fetcher: ics.NewFetcher(filepath.Join(conf.CacheDir, "ics")),
		sources: buildSources(conf.ICS, files),
		horizon: conf.HorizonDays,
		loc:     conf.Location(),
		classes: ics.Classifier{
			Task:     conf.TypeKeywords.Task,
			Reminder: conf.TypeKeywords.Reminder,
		},
	}
}

func buildSources(subs []config.ICSConfig, files []string) []ics.Source {
	out := make([]ics.Source, 0, len(subs)+len(files))
	for _, c := range subs {
		if c.URL == "" {
			continue
		}
		out = append(out, ics.Source{ID: c.SourceID(), URL: c.URL})
	}
	for _, f := range files {
		out = append(out, ics.Source{ID: "file:" + filepath.Base(f), URL: f})
	}
	return out
}

func (imp *importer) run(ctx context.Context) map[string][]model.Event {
	if len(imp.sources) == 0 {
		return nil
	}
	events, errs := ics.Import(ctx, imp.fetcher, imp.sources, ics.ImportConfig{
		Location:    imp.loc,
		Now:         time.Now().In(imp.loc),
		HorizonDays: imp.horizon,
		Classifier:  imp.classes,
	})
	for _, err := range errs {
		appLog.Error("ics import failed", err)
	}
	return events
}

func exportICS(path string, events []model.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if err := ics.Export(f, events, time.Now()); err != nil {
		f.Close()
		return fmt.Errorf("export: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	appLog.Info("events exported", "path", path, "count", len(events))
	return nil
}

func runWeb(ctx context.Context, conf *config.Config, view *calendar.View, imp *importer, debug bool) error {
	srv := web.NewServer(conf, view, debug)

	sched, err := schedule.New(conf.Location(),
		schedule.Job{Name: "rollover", Spec: conf.Rollover, Run: func() {
			srv.Do(func(v *calendar.View) { v.Refresh() })
		}},
		schedule.Job{Name: "ics-refresh", Spec: conf.RefreshCron, Run: func() {
			events := imp.run(ctx)
			srv.Do(func(v *calendar.View) {
				for id, evs := range events {
					v.ReplaceSource(id, evs)
				}
			})
		}},
		schedule.Job{Name: "snapshot", Spec: conf.SnapshotCron, Run: func() {
			opts := snapshotOptions(conf, "http://"+clientAddr(conf.Listen), web.PreviewPath(conf))
			if err := capture.Snapshot(ctx, opts); err != nil {
				appLog.Error("scheduled snapshot failed", err)
			}
		}},
	)
	if err != nil {
		return err
	}
	sched.Start(ctx)
	return srv.Serve(ctx)
}

func runTUI(ctx context.Context, conf *config.Config, view *calendar.View, imp *importer) error {
	// The terminal belongs to bubbletea; logs go to a file instead.
	if err := os.MkdirAll(conf.CacheDir, 0o755); err != nil {
		return err
	}
	logPath := filepath.Join(conf.CacheDir, "wxcal.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("tui: open log: %w", err)
	}
	defer logFile.Close()
	appLog.SetOutput(logFile)
	defer appLog.SetOutput(os.Stderr)

	p, done := tui.Run(view)

	sched, err := schedule.New(conf.Location(),
		schedule.Job{Name: "rollover", Spec: conf.Rollover, Run: func() {
			p.Send(tui.RolloverMsg{})
		}},
		schedule.Job{Name: "ics-refresh", Spec: conf.RefreshCron, Run: func() {
			for id, events := range imp.run(ctx) {
				p.Send(tui.ImportMsg{Source: id, Events: events})
			}
		}},
	)
	if err != nil {
		p.Quit()
		<-done
		return err
	}
	sched.Start(ctx)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		p.Quit()
		return <-done
	}
}

// runSnapshot serves the view on a loopback port just long enough to
// capture /calendar.
func runSnapshot(ctx context.Context, conf *config.Config, view *calendar.View, out string) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("snapshot: listen: %w", err)
	}
	srv := &http.Server{
		Handler:           web.NewServer(conf, view, false).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("snapshot server stopped", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return capture.Snapshot(ctx, snapshotOptions(conf, "http://"+ln.Addr().String(), out))
}

func snapshotOptions(conf *config.Config, base, out string) capture.Options {
	return capture.Options{
		URL:        base + "/calendar",
		OutputPath: out,
		Headers:    authHeaders(conf),
	}
}

// clientAddr turns a listen address into one a local client can dial.
func clientAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}

func authHeaders(conf *config.Config) map[string]string {
	ba := conf.BasicAuth
	if ba == nil || ba.Username == "" || ba.Password == "" {
		return nil
	}
	token := base64.StdEncoding.EncodeToString([]byte(ba.Username + ":" + ba.Password))
	return map[string]string{"Authorization": "Basic " + token}
}
