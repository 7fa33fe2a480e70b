package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/careerlink/job-matcher/internal/scheduler"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-score every user on a cron schedule until interrupted",
	Run: func(_ *cobra.Command, _ []string) {
		schedule()
	},
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func schedule() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt := setup(ctx)
	defer rt.Close()

	spec := scheduler.DefaultSpec
	var delay time.Duration
	if cfg := rt.config.Schedule; cfg != nil {
		if cfg.Spec != "" {
			spec = cfg.Spec
		}
		delay = cfg.UserDelay
	}

	s := scheduler.New(rt.store, rt.engine(rt.store), spec, delay, rt.logger)
	if err := s.Start(ctx); err != nil {
		rt.logger.Fatal("starting the scheduler", zap.String("spec", spec), zap.Error(err))
	}

	<-ctx.Done()
	rt.logger.Info("shutting down", zap.String("reason", "signal received"))
	s.Stop()
}
