package pipeline

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/secintel/kevfeed/internal/config"
)

func NewCommand() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "pipeline",
		Short: "Manages the vulnerability ingestion pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("welcome to the kevfeed pipeline!")
			return nil
		},
	}
	cmd.AddCommand(newInvokeCommand())
	cmd.AddCommand(newDaemonCommand())
	return cmd
}

func loadConfig(path string) (*config.Config, error) {
	c := config.Default()
	if path != "" {
		var err error
		c, err = config.NewFromFile(path)
		if err != nil {
			return nil, err
		}
	}
	c.ApplyEnv()
	return c, nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return cfg.Build()
}
