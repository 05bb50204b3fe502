package main

import (
	"bufio"
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
	"github.com/brainup-app/brainup/go/internal/quiz/admin"
	"github.com/brainup-app/brainup/go/internal/quiz/config"
	"github.com/brainup-app/brainup/go/internal/quiz/metrics"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file loaded")
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	app := &cli.App{
		Name:  "brainup-admin",
		Usage: "observe the participant roster and broadcast quiz questions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to yaml config file"},
			&cli.StringFlag{Name: "api-url", Usage: "quiz service base URL (overrides config)"},
			&cli.StringFlag{Name: "metrics-addr", Usage: "address to serve prometheus metrics on, e.g. :9090 (empty disables)"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("admin client failed")
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

	api := quiz_api_client.NewQuizAPIClient(cfg.API.BaseURL)
	api.SetTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second)

	session := admin.NewSession(api,
		admin.WithBackoff(cfg.StreamBaseDelay(), cfg.StreamMaxDelay()),
	)
	defer session.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	session.Start(ctx)

	fmt.Println("Connected. Commands: 1-10 broadcast question, d dashboard, t test player, x simulate exit, q quit.")

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
			switch line {
			case "":
			case "q":
				return nil
			case "d":
				admin.RenderDashboard(os.Stdout, session.Snapshot())
			case "t":
				p := session.AddTestPlayer()
				fmt.Printf("added %s (%s) with score %d\n", p.Name, p.ID, p.Score)
			case "x":
				if p, ok := session.SimulateExit(); ok {
					fmt.Printf("marked %s offline\n", p.ID)
				} else {
					fmt.Println("no active participants")
				}
			default:
				if n, err := strconv.Atoi(line); err == nil && n >= 1 {
					if err := session.ChangeQuestion(ctx, n); err != nil {
						fmt.Printf("broadcast failed: %v\n", err)
					} else {
						fmt.Printf("question %d sent to participants\n", n)
					}
				}
			}
		}
	}
}
