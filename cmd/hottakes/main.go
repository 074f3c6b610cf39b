package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"hottakes/internal/app"
	"hottakes/internal/backend"
	"hottakes/internal/cmdlog"
	"hottakes/internal/config"
	"hottakes/internal/logging"
	"hottakes/internal/metrics"
	"hottakes/internal/profanity"
	"hottakes/internal/router"
	"hottakes/internal/store"
	"hottakes/internal/theme"
	"hottakes/internal/tui"
	"hottakes/internal/util"
)

const defaultConfig = "./hottakes.yaml"

func main() {
	cmd := "run"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	var err error
	switch cmd {
	case "init":
		err = cmdInit()
	case "run":
		err = cmdRun()
	case "leaderboard":
		err = cmdLeaderboard()
	case "check":
		err = cmdCheck()
	default:
		printHelp()
		return
	}
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: hottakes <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init          Create a config file at ./hottakes.yaml")
	fmt.Println("  run           Start the voting app (default)")
	fmt.Println("  leaderboard   Print the top opinions")
	fmt.Println("  check <text>  Run text through the profanity filter")
}

func args() []string {
	if len(os.Args) > 2 {
		return os.Args[2:]
	}
	return nil
}

// setup loads config and starts logging and metrics. The returned func
// closes the log file.
func setup(path string) (config.Config, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	w, err := logging.OpenFile(cfg.Log.Path)
	if err != nil {
		return cfg, nil, fmt.Errorf("open log: %w", err)
	}
	logging.Init(w, cfg.Log.Level, "hottakes")
	metrics.StartServer(cfg.Metrics.Addr)
	return cfg, func() { _ = w.Close() }, nil
}

func openTokens(ctx context.Context, cfg config.Config) (*store.DB, *store.Tokens, error) {
	db, err := store.Open(cfg.Session.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	tokens, err := store.NewTokens(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, tokens, nil
}

func cmdInit() error {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", defaultConfig, "path to write config")
	_ = fs.Parse(args())
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		return err
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
	return nil
}

func cmdRun() error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfig, "config path")
	_ = fs.Parse(args())
	cfg, closeLog, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer closeLog()

	return cmdlog.Run("run", func() error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		db, tokens, err := openTokens(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if cfg.Profanity.APIKey == "" {
			logging.Warn("profanity_key_missing", map[string]any{"hint": "set PROFANITY_API_KEY; submissions will fail"})
		}
		gw := backend.NewHTTPClient(cfg.Backend, tokens)
		a := app.New(cfg, gw, profanity.NewClient(cfg.Profanity), tokens)
		err = tui.Run(ctx, a, tui.Options{Resume: cfg.Session.DSN != ":memory:"})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
}

func cmdLeaderboard() error {
	fs := flag.NewFlagSet("leaderboard", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfig, "config path")
	limit := fs.Int("limit", 0, "rows to fetch (default from config)")
	typ := fs.String("type", "", "top or new")
	sortBy := fs.String("sort", "votes", "votes or newest")
	near := fs.Bool("near", false, "rank opinions from your region")
	_ = fs.Parse(args())
	cfg, closeLog, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer closeLog()
	if *limit > 0 {
		cfg.Leaderboard.Limit = *limit
	}
	if *typ != "" {
		cfg.Leaderboard.Type = *typ
	}
	mode, err := app.ParseSortMode(*sortBy)
	if err != nil {
		return err
	}

	return cmdlog.Run("leaderboard", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		db, tokens, err := openTokens(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		gw := backend.NewHTTPClient(cfg.Backend, tokens)
		a := app.New(cfg, gw, profanity.NewClient(cfg.Profanity), tokens)
		if cfg.Credentials.Username != "" {
			res, err := a.Auth.Login(ctx, cfg.Credentials.Username, cfg.Credentials.Password)
			if err != nil {
				return err
			}
			if err := a.SignedIn(res, router.LoginSucceeded); err != nil {
				return err
			}
		}

		l := a.Leaderboard
		l.SetSort(mode)
		if *near {
			if err := l.ToggleNearMe(); err != nil {
				return err
			}
		}
		rows, err := l.Fetch(ctx, l.Request())
		l.Show(rows, err)
		if err != nil {
			return err
		}
		now := time.Now()
		for i, r := range l.Rows() {
			fmt.Printf("%2d. %5s  %s  (%s)\n", i+1, app.FormatScore(r.Score()), util.Truncate(r.Content, 70), app.FormatDate(r.DateSubmitted, now))
		}
		return nil
	})
}

func cmdCheck() error {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	cfgPath := fs.String("config", defaultConfig, "config path")
	_ = fs.Parse(args())
	if fs.NArg() == 0 {
		return errors.New("usage: hottakes check [-config path] <text>")
	}
	cfg, closeLog, err := setup(*cfgPath)
	if err != nil {
		return err
	}
	defer closeLog()

	return cmdlog.Run("check", func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		text := util.NormalizeWhitespace(strings.Join(fs.Args(), " "))
		res, err := profanity.NewClient(cfg.Profanity).Check(ctx, text)
		if err != nil {
			return err
		}
		if res.HasProfanity {
			fmt.Println("profanity found:", res.Censored)
			return nil
		}
		fmt.Println("clean")
		return nil
	})
}
