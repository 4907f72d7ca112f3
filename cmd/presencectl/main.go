package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/pkg/config"
)

type ctxKey struct{}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

var verbose bool

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "presencectl",
	Short:         "presencectl - interview presence analysis toolkit",
	Long:          "Runs interview analyses locally, generates practice questions, mints API tokens and manages the database schema.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logCfg := zap.NewProductionConfig()
		if !verbose {
			logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		}
		logger, err := logCfg.Build()
		if err != nil {
			return err
		}

		cmd.SetContext(context.WithValue(cmd.Context(), ctxKey{}, &runtime{cfg: cfg, logger: logger}))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rt := fromContext(cmd.Context()); rt != nil {
			_ = rt.logger.Sync()
		}
	},
}

func fromContext(ctx context.Context) *runtime {
	rt, _ := ctx.Value(ctxKey{}).(*runtime)
	return rt
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(migrateCmd)
}
