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
	"github.com/gridsim/pvdispatch/core/analysis"
	"github.com/gridsim/pvdispatch/infra/logger"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run all scenarios and print the cost-benefit table",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, args []string) error {
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
			logger.New("compare-command").Errorf("service close: %v", err)
		}
	}()

	baseline, solarOnly, policyA, policyB, err := svc.RunAll(ctx)
	if err != nil {
		return err
	}
	rep := analysis.CostBenefit(baseline, solarOnly, policyA, policyB)
	return rep.Write(cmd.OutOrStdout())
}
