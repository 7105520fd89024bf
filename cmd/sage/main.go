// Command sage runs the tutor as an interactive terminal session: enroll a
// student, ask questions, inspect progress, and ingest curriculum files.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/edusage/sage"
	"github.com/edusage/sage/ingest"
	"github.com/edusage/sage/internal/app"
	"github.com/edusage/sage/internal/config"
	"github.com/edusage/sage/observer"
	"github.com/edusage/sage/provider/gemini"
	"github.com/edusage/sage/store/sqlite"
)

func main() {
	name := flag.String("name", "Student", "student name")
	email := flag.String("email", "student@example.com", "student email")
	flag.Parse()

	if err := run(*name, *email); err != nil {
		fmt.Fprintln(os.Stderr, "sage:", err)
		os.Exit(1)
	}
}

func run(name, email string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load(os.Getenv("SAGE_CONFIG"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := sqlite.Open(ctx, sqlite.Config{
		Dir:        cfg.Database.Dir,
		MaxSizeKB:  cfg.Database.MaxSizeKB,
		MaxReaders: cfg.Database.MaxReaders,
		DebugFlags: cfg.Database.DebugFlags,
	}, sage.Schemas(), sqlite.WithLogger(logger))
	if err != nil {
		return err
	}
	defer db.Close()

	var inst *observer.Instruments
	if cfg.Observer.Enabled {
		var shutdown func(context.Context) error
		inst, shutdown, err = observer.Init(ctx)
		if err != nil {
			return fmt.Errorf("observer init: %w", err)
		}
		defer shutdown(context.Background())
	}

	var embed ingest.EmbedFunc
	if cfg.Embedding.APIKey != "" {
		embed = gemini.NewEmbedding(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.Dimensions).Embed
	}

	tutor := app.New(cfg, app.Deps{
		DB:          db,
		Provider:    gemini.New(cfg.LLM.APIKey, cfg.LLM.Model),
		Embed:       embed,
		Instruments: inst,
		Logger:      logger,
	})

	student, err := tutor.Enroll(ctx, name, email)
	if err != nil {
		return err
	}
	session := sage.NewSessionID()
	fmt.Printf("sage ready. student=%s session=%s\n", student.Name, session)
	fmt.Println(`commands: /ingest <file> <subject> <difficulty>, /progress <subject> <topic> <pct> <score>, /stats, /quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "/quit" {
			return nil
		}
		if strings.HasPrefix(line, "/") {
			if err := command(ctx, tutor, student, line); err != nil {
				fmt.Println("error:", err)
			}
			continue
		}

		res, err := tutor.Ask(ctx, student.ID, session, line)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}
		fmt.Printf("[%s] %s\n", res.Agent, res.Output)
	}
}

func command(ctx context.Context, tutor *app.App, student sage.Student, line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/stats":
		for k, v := range tutor.Stats(ctx) {
			fmt.Printf("  %s: %v\n", k, v)
		}
		return nil

	case "/ingest":
		if len(fields) != 4 {
			return fmt.Errorf("usage: /ingest <file> <subject> <difficulty>")
		}
		difficulty, err := strconv.Atoi(fields[3])
		if err != nil {
			return fmt.Errorf("difficulty must be a number")
		}
		content, err := os.ReadFile(fields[1])
		if err != nil {
			return err
		}
		res, err := tutor.IngestFile(ctx, content, filepath.Base(fields[1]), fields[2], difficulty)
		if err != nil {
			return err
		}
		fmt.Printf("ingested %d chunks\n", res.ChunkCount)
		return nil

	case "/progress":
		if len(fields) != 5 {
			return fmt.Errorf("usage: /progress <subject> <topic> <pct> <score>")
		}
		pct, err1 := strconv.ParseFloat(fields[3], 64)
		score, err2 := strconv.ParseFloat(fields[4], 64)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("pct and score must be numbers")
		}
		p, err := tutor.RecordProgress(ctx, student.ID, fields[1], fields[2], pct, score)
		if err != nil {
			return err
		}
		fmt.Printf("%s / %s: %.0f%% complete\n", p.Subject, p.Topic, p.CompletionPercentage)
		return nil

	default:
		return fmt.Errorf("unknown command %s", fields[0])
	}
}
