package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/brainup-app/brainup/go/clients/quiz_api_client"
	"github.com/brainup-app/brainup/go/internal/quiz/config"
	"github.com/brainup-app/brainup/go/internal/quiz/identity"
	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
	"github.com/brainup-app/brainup/go/internal/quiz/participant"
	"github.com/brainup-app/brainup/go/internal/quiz/round"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	app := &cli.App{
		Name:  "brainup-player",
		Usage: "join a live quiz room and answer questions as they are broadcast",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to yaml config file"},
			&cli.StringFlag{Name: "api-url", Usage: "quiz service base URL (overrides config)"},
			&cli.StringFlag{Name: "name", Usage: "display name used when joining"},
			&cli.StringFlag{Name: "player-id", Usage: "reuse an existing participant id"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "address to serve prometheus metrics on, e.g. :9091 (empty disables)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("player client failed")
	}
}

func run(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if url := c.String("api-url"); url != "" {
		cfg.API.BaseURL = url
	}

	metrics.Init()
	if addr := c.String("metrics-addr"); addr != "" {
		go serveMetrics(addr)
	}

	idPath := cfg.Identity.Path
	if idPath == "" {
		if idPath, err = identity.DefaultPath(); err != nil {
			return err
		}
	}

	api := quiz_api_client.NewQuizAPIClient(cfg.API.BaseURL)
	api.SetTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second)

	session := participant.NewSession(api, identity.NewStore(idPath),
		participant.WithRoundDuration(cfg.Round.DurationSeconds),
		participant.WithBackoff(cfg.StreamBaseDelay(), cfg.StreamMaxDelay()),
		participant.WithOnRoundChange(func(snap round.Snapshot) {
			participant.RenderScreen(os.Stdout, participant.ScreenSnapshot{Round: snap})
		}),
	)
	defer session.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := session.ResolveIdentity(c.String("player-id")); err != nil {
		fields := map[string]string{}
		if name := c.String("name"); name != "" {
			fields["name"] = name
		}
		if err := session.Join(ctx, fields); err != nil {
			return err
		}
	}

	if err := session.Start(ctx); err != nil {
		return err
	}

	fmt.Println("Connected. Commands: 1-4 select, s submit, n next, q quit and exit the room.")
	participant.RenderScreen(os.Stdout, session.Snapshot())

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := handleCommand(ctx, session, line); done {
				return nil
			}
		}
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}

func handleCommand(ctx context.Context, session *participant.Session, line string) bool {
	switch line {
	case "":
		return false
	case "q":
		if err := session.Exit(ctx); err != nil {
			fmt.Printf("exit failed, still in the quiz: %v\n", err)
			return false
		}
		return true
	case "s":
		if err := session.Submit(ctx); err != nil {
			fmt.Printf("submit: %v\n", err)
		}
	case "n":
		if err := session.Acknowledge(); err != nil {
			fmt.Printf("next: %v\n", err)
		}
	default:
		if n, err := strconv.Atoi(line); err == nil {
			if err := session.Select(n - 1); err != nil {
				fmt.Printf("select: %v\n", err)
			} else {
				participant.RenderScreen(os.Stdout, session.Snapshot())
			}
		}
	}
	return false
}
