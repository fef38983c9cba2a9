package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"duedate/internal/cmdlog"
	"duedate/internal/config"
	"duedate/internal/jobs"
	"duedate/internal/logging"
	"duedate/internal/metrics"
	"duedate/internal/schedule"
	"duedate/internal/theme"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		if errors.Is(err, schedule.ErrInvalidArgument) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "duedate",
		Usage: "compute due dates counted in working hours (Mon-Fri)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: config.DefaultPath, Usage: "config path", EnvVars: []string{"DUEDATE_CONFIG"}},
			&cli.StringFlag{Name: "log-level", Usage: "override the configured log level"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "serve prometheus metrics on this address while the command runs"},
		},
		Action: func(cctx *cli.Context) error {
			theme.PrintBanner(cctx.App.Writer, schedule.DefaultWorkHours.String())
			return cli.ShowAppHelp(cctx)
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "write a default config file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Value: config.DefaultPath, Usage: "path to write config"},
				},
				Action: cmdInit,
			},
			{
				Name:  "calc",
				Usage: "print the due date for a submit time and turnaround",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "submit", Usage: "submit timestamp, e.g. \"2025-01-03 16:30\"", Required: true},
					&cli.StringFlag{Name: "turnaround", Usage: "whole number of working hours", Required: true},
				},
				Action: cmdCalc,
			},
			{
				Name:  "check",
				Usage: "report whether a timestamp is working time",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "at", Usage: "timestamp to check (default: now)"},
				},
				Action: cmdCheck,
			},
			{
				Name:  "batch",
				Usage: "compute due dates for CSV rows of submit,turnaround",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "in", Value: "-", Usage: "input CSV file, - for stdin"},
					&cli.StringFlag{Name: "out", Value: "-", Usage: "output CSV file, - for stdout"},
				},
				Action: cmdBatch,
			},
			{
				Name:   "demo",
				Usage:  "run sample submissions and print each calculation",
				Action: cmdDemo,
			},
		},
	}
}

type session struct {
	cfg     config.Config
	calc    *schedule.Calculator
	metrics *http.Server
}

// close stops the metrics server, which only lives as long as the command.
func (s *session) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := metrics.Shutdown(ctx, s.metrics); err != nil {
		logging.Error("metrics_server_shutdown", map[string]any{"error": err.Error()})
	}
}

// loadConfig falls back to defaults only when --config was left at its default
// and that file is absent. An explicit path must exist.
func loadConfig(cctx *cli.Context) (config.Config, error) {
	path := cctx.String("config")
	if cctx.IsSet("config") {
		return config.Load(path)
	}
	return config.LoadOrDefault(path)
}

// setup loads config, configures logging and metrics, and builds the calculator.
// Extra observers run after the metrics and logging ones. Callers must close the
// returned session.
func setup(cctx *cli.Context, observers ...schedule.Observer) (*session, error) {
	cfg, err := loadConfig(cctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl := cctx.String("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if addr := cctx.String("metrics-addr"); addr != "" {
		cfg.Metrics.Addr = addr
	}
	if err := logging.Setup(cfg.Logging.Level, cfg.Logging.Format, cctx.App.ErrWriter); err != nil {
		return nil, err
	}
	logging.WithField("run_id", uuid.NewString())

	opts := []schedule.Option{
		schedule.WithWorkHours(cfg.WorkHours),
		schedule.WithObserver(metrics.Observer()),
		schedule.WithObserver(func(c schedule.Calculation) {
			logging.Debug("due_date_calculated", map[string]any{
				"submit":     c.Submit,
				"turnaround": c.Turnaround,
				"due":        c.Due,
				"result":     c.String(),
			})
		}),
	}
	for _, o := range observers {
		opts = append(opts, schedule.WithObserver(o))
	}
	calc, err := schedule.New(opts...)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, calc: calc, metrics: metrics.StartServer(cfg.Metrics.Addr)}, nil
}

func cmdInit(cctx *cli.Context) error {
	path := cctx.String("path")
	return cmdlog.Run("init", func() error {
		cfg := config.Default()
		if err := config.Save(path, cfg); err != nil {
			return err
		}
		abs, _ := filepath.Abs(path)
		theme.PrintBanner(cctx.App.Writer, cfg.WorkHours.String())
		fmt.Fprintln(cctx.App.Writer, "Config written to:", abs)
		return nil
	})
}

func cmdCalc(cctx *cli.Context) error {
	rt, err := setup(cctx)
	if err != nil {
		return err
	}
	defer rt.close()
	return cmdlog.Run("calc", func() error {
		submit, err := schedule.ParseSubmit(cctx.String("submit"), time.Local)
		if err != nil {
			metrics.ObserveError(err)
			return err
		}
		turnaround, err := schedule.ParseTurnaround(cctx.String("turnaround"))
		if err != nil {
			metrics.ObserveError(err)
			return err
		}
		start := time.Now()
		due, err := rt.calc.DueDate(submit, turnaround)
		metrics.ObserveDuration(start)
		if err != nil {
			metrics.ObserveError(err)
			return err
		}
		fmt.Fprintln(cctx.App.Writer, due.Format(rt.cfg.Output.Layout))
		return nil
	})
}

func cmdCheck(cctx *cli.Context) error {
	rt, err := setup(cctx)
	if err != nil {
		return err
	}
	defer rt.close()
	return cmdlog.Run("check", func() error {
		at := time.Now()
		if s := cctx.String("at"); s != "" {
			if at, err = schedule.ParseSubmit(s, time.Local); err != nil {
				return err
			}
		}
		wh := rt.calc.WorkHours()
		layout := rt.cfg.Output.Layout
		if wh.IsWorkTime(at) {
			fmt.Fprintf(cctx.App.Writer, "%s %s: working time (%s)\n", at.Format(layout), at.Weekday(), wh)
			return nil
		}
		next := wh.NextWorkStart(at)
		fmt.Fprintf(cctx.App.Writer, "%s %s: outside working time (%s); next work start %s %s\n",
			at.Format(layout), at.Weekday(), wh, next.Format(layout), next.Weekday())
		return nil
	})
}

func cmdBatch(cctx *cli.Context) error {
	rt, err := setup(cctx)
	if err != nil {
		return err
	}
	defer rt.close()
	return cmdlog.Run("batch", func() error {
		in, closeIn, err := openInput(cctx.String("in"))
		if err != nil {
			return err
		}
		defer closeIn()
		out, closeOut, err := openOutput(cctx.String("out"), cctx.App.Writer)
		if err != nil {
			return err
		}
		sum, err := jobs.RunBatch(cctx.Context, rt.calc, in, out, rt.cfg.Output.Layout, time.Local)
		if cerr := closeOut(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		if sum.Failed > 0 {
			fmt.Fprintf(cctx.App.ErrWriter, "%d of %d rows failed\n", sum.Failed, sum.Rows)
		}
		return nil
	})
}

// demoSubmissions are the sample requests shown by the demo command.
var demoSubmissions = []struct {
	submit     time.Time
	turnaround int
}{
	{time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local), 1},
	{time.Date(2025, 1, 1, 16, 30, 0, 0, time.Local), 1},
	{time.Date(2025, 1, 3, 16, 30, 0, 0, time.Local), 1},
	{time.Date(2025, 1, 3, 16, 30, 0, 0, time.Local), 9},
	{time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local), 1},
	{time.Date(2025, 1, 1, 17, 0, 0, 0, time.Local), 1},
}

func cmdDemo(cctx *cli.Context) error {
	w := cctx.App.Writer
	rt, err := setup(cctx, func(c schedule.Calculation) { fmt.Fprintln(w, c.String()) })
	if err != nil {
		return err
	}
	defer rt.close()
	return cmdlog.Run("demo", func() error {
		theme.PrintBanner(w, rt.calc.WorkHours().String())
		for _, d := range demoSubmissions {
			if _, err := rt.calc.DueDate(d.submit, d.turnaround); err != nil {
				return err
			}
		}
		return nil
	})
}

func openInput(path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return os.Stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
