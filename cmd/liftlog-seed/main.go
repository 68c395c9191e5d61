package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/claude/liftlog/internal/backend"
	"github.com/claude/liftlog/internal/config"
	"github.com/claude/liftlog/internal/logging"
	"github.com/claude/liftlog/internal/seed"
	"github.com/claude/liftlog/internal/workout"
)

const source = "seed"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	user := flag.String("user", "", "user to seed (default: auth.dev_user)")
	days := flag.Int("days", 90, "number of days of history, ending today")
	rate := flag.Float64("rate", 0.5, "chance of a session on any given day")
	seedValue := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	out := flag.String("out", "", "write a fixtures JSON file instead of the configured store")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log, logCloser := logging.New(cfg.Logging)
	defer logCloser.Close()

	if *user == "" {
		*user = cfg.Auth.DevUser
	}
	loc, err := cfg.Calendar.Location()
	if err != nil {
		log.Error("invalid timezone", "error", err)
		os.Exit(1)
	}

	gen := seed.New(*seedValue, loc)
	gen.Rate = *rate
	from := workout.DayOf(time.Now(), loc).AddDays(1 - *days)
	sessions, err := gen.Generate(workout.UserID(*user), from, *days)
	if err != nil {
		log.Error("generating sessions", "error", err)
		os.Exit(1)
	}
	log.Info("generated sessions", "user", *user, "from", from, "days", *days, "sessions", len(sessions))

	if *out != "" {
		data, err := json.MarshalIndent(sessions, "", "  ")
		if err != nil {
			log.Error("encoding fixtures", "error", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Error("writing fixtures", "error", err)
			os.Exit(1)
		}
		log.Info("fixtures written", "path", *out)
		return
	}

	ctx := context.Background()
	app, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open backend", "error", err)
		os.Exit(1)
	}
	res, err := app.Service.Import(ctx, workout.UserID(*user), source, sessions)
	if cerr := app.Close(); cerr != nil {
		log.Warn("closing backend", "error", cerr)
	}
	if err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	log.Info("seed complete", "written", res.Written, "skipped", res.Skipped)
}
