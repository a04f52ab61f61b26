package pipeline

import (
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/secintel/kevfeed/internal/config"
	"github.com/secintel/kevfeed/internal/pipeline"
)

func newDaemonCommand() *cobra.Command {
	var configPath string
	var addr string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Runs the pipeline on an interval and serves pipeline status",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(c.Global.Logger.Level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("kevfeed.pipeline.daemon")
			l.Info("starting pipeline daemon!", zap.Duration("interval", interval))

			p, err := config.InitializePipeline(c, l)
			if err != nil {
				return err
			}

			s := pipeline.NewServer(p, l)
			go func() {
				if err := s.Start(ctx, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					l.Error("pipeline server error", zap.Error(err))
				}
			}()

			p.Run(ctx)

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					l.Info("shutting down pipeline daemon")
					return nil
				case <-ticker.C:
					p.Run(ctx)
				}
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Status server listen address")
	cmd.Flags().DurationVar(&interval, "interval", 6*time.Hour, "Time between pipeline runs")

	return cmd
}
