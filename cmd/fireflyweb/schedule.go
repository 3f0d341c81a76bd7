package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/basel-ax/fireflyweb/internal/config"
	"github.com/basel-ax/fireflyweb/internal/render"
	"github.com/basel-ax/fireflyweb/internal/service"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run text to image with SCHEDULE_PROMPT on SCHEDULE_SPEC",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

type textToImager interface {
	TextToImage(ctx context.Context, in service.Input) *render.Page
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	a, err := newApp(flagConf)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	if a.cfg.Schedule.Prompt == "" {
		return fmt.Errorf("SCHEDULE_PROMPT is required")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := cron.New(cron.WithSeconds())
	var cronMutex sync.Mutex

	_, err = c.AddFunc(a.cfg.Schedule.Spec, func() {
		cronMutex.Lock()
		defer cronMutex.Unlock()
		a.log.Info("[CRON] running scheduled text to image")
		scheduledTextToImage(ctx, a.actions, a.cfg.Schedule, a.log, time.Now())
		a.log.Info("[CRON] finished scheduled text to image")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %q: %w", a.cfg.Schedule.Spec, err)
	}

	c.Start()
	a.log.Info("cron scheduler started", zap.String("spec", a.cfg.Schedule.Spec))

	<-ctx.Done()
	<-c.Stop().Done()
	a.log.Info("cron scheduler stopped")
	return nil
}

// scheduledTextToImage runs one generation and saves its images when an
// output directory is configured
func scheduledTextToImage(ctx context.Context, actions textToImager, cfg config.ScheduleConfig, log *zap.Logger, now time.Time) []string {
	page := actions.TextToImage(ctx, service.Input{Prompt: cfg.Prompt})
	log.Info("scheduled generation done",
		zap.Int("images", len(page.Results)),
		zap.Int("alerts", len(page.Alerts)),
	)
	if cfg.OutputDir == "" || len(page.Results) == 0 {
		return nil
	}

	paths, err := render.SaveImages(cfg.OutputDir, now.Format("20060102-150405"), page)
	if err != nil {
		log.Error("saving scheduled images", zap.Error(err))
	}
	for _, p := range paths {
		log.Info("saved image", zap.String("path", p))
	}
	return paths
}
