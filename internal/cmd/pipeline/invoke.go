package pipeline

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/secintel/kevfeed/internal/config"
)

func newInvokeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Invokes one pipeline run. The catalog is fetched, enriched and loaded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			logger, err := newLogger(c.Global.Logger.Level)
			if err != nil {
				return err
			}
			defer logger.Sync()
			l := logger.Named("kevfeed.pipeline.invoke")
			l.Info("starting pipeline!")

			p, err := config.InitializePipeline(c, l)
			if err != nil {
				return err
			}

			report := p.Run(cmd.Context())
			if !report.Success {
				return fmt.Errorf("pipeline failed during %s: %s", report.FailedStage, report.Error)
			}

			fmt.Printf("pipeline completed successfully: %d records loaded in %s\n",
				report.NumRecordsLoaded, report.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	return cmd
}
