package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/config"
	"github.com/basel-ax/fireflyweb/internal/infrastructure/firefly"
	"github.com/basel-ax/fireflyweb/internal/logger"
	"github.com/basel-ax/fireflyweb/internal/render"
	"github.com/basel-ax/fireflyweb/internal/service"
)

var version = "0.1.0"

var flagConf string

var rootCmd = &cobra.Command{
	Use:   "fireflyweb",
	Short: "Firefly Services demo front-end",
	Long: `fireflyweb triggers Firefly image generation endpoints from a web page,
the command line, or a schedule.

Examples:
  fireflyweb serve                                   # Serve the web page
  fireflyweb run text-to-image --prompt "a red fox"  # One-shot call
  fireflyweb run upload --file cat.jpg               # Upload and print the asset id
  fireflyweb schedule                                # Run SCHEDULE_PROMPT on SCHEDULE_SPEC`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConf, "conf", "", "path to a YAML config file (environment is used when empty)")
	rootCmd.AddCommand(serveCmd, runCmd, scheduleCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app holds the wired components shared by every command
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	renderer *render.Renderer
	actions  *service.ImageGenerationService
}

func newApp(confPath string) (*app, error) {
	cfg, err := config.Load(confPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log.Info("configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("base_url", cfg.Firefly.BaseURL),
		zap.Bool("token_service", cfg.Firefly.TokenURL != ""),
		logger.Secret("api_key", cfg.Firefly.APIKey),
	)

	var tokens firefly.TokenSource
	if cfg.Firefly.TokenURL != "" {
		tokens = firefly.NewTokenService(&http.Client{Timeout: cfg.Firefly.Timeout}, cfg.Firefly.TokenURL)
	} else {
		tokens = firefly.NewStaticTokenSource(cfg.Firefly.AccessToken)
	}

	client := firefly.NewClient(firefly.Config{
		BaseURL: cfg.Firefly.BaseURL,
		APIKey:  cfg.Firefly.APIKey,
		Timeout: cfg.Firefly.Timeout,
	}, tokens, log)
	renderer := render.NewRenderer(log)

	return &app{
		cfg:      cfg,
		log:      log,
		renderer: renderer,
		actions:  service.NewImageGenerationService(client, renderer, log),
	}, nil
}
