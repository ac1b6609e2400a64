package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridsim/pvdispatch/app"
	"github.com/gridsim/pvdispatch/config"
	"github.com/gridsim/pvdispatch/infra/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate the configured site under its dispatch policy",
	RunE:  runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("run-command").Errorf("service close: %v", err)
		}
	}()

	_, err = svc.Run(ctx)
	return err
}
