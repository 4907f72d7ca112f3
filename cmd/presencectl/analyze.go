package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Aanishnithin07/PresenceAI/internal/adapter/dto"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/detector"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/media"
	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/speech"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/analysis"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [input video]",
	Short: "Analyze an interview video and print the result as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := fromContext(cmd.Context())
		cfg, logger := rt.cfg, rt.logger

		executor, err := media.New(logger, cfg.Analysis.FFmpegThreads, cfg.Analysis.MaxFrameWidth)
		if err != nil {
			return err
		}

		recognizer, err := speech.New(cmd.Context(), &cfg.Speech, logger)
		if err != nil {
			return err
		}
		defer recognizer.Close()

		faceDetector, err := detector.NewPigoDetector(cfg.Detector, logger)
		if err != nil {
			return err
		}
		defer faceDetector.Close()

		pipeline := analysis.NewPipeline(
			analysis.NewAudioExtractor(executor, cfg.Analysis.TempDir, logger),
			analysis.NewTranscriber(recognizer, logger),
			analysis.NewPresenceSampler(executor, faceDetector, logger),
			nil,
			logger,
		)

		outcome := pipeline.Analyze(cmd.Context(), args[0])
		if outcome.Degraded() {
			logger.Warn("analysis degraded",
				zap.String("stage", string(outcome.FailedStage)),
				zap.Error(outcome.Err),
			)
		}

		out, err := json.MarshalIndent(dto.NewAnalysisResponse(uuid.New(), outcome), "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}
