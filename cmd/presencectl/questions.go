package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aanishnithin07/PresenceAI/internal/infrastructure/cache"
	"github.com/Aanishnithin07/PresenceAI/internal/usecase/questions"
	pkgai "github.com/Aanishnithin07/PresenceAI/pkg/ai"
)

var questionsCmd = &cobra.Command{
	Use:   "questions [job role]",
	Short: "Print interview questions for a job role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt := fromContext(cmd.Context())
		cfg, logger := rt.cfg, rt.logger

		store, err := cache.New(cmd.Context(), cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer store.Close()

		bank, err := questions.DefaultBank()
		if err != nil {
			return err
		}

		var generator questions.Generator
		if cfg.LLM.APIKey != "" {
			generator = pkgai.NewGroqClient(&cfg.LLM)
		}

		service := questions.NewService(generator, store, bank, cfg.LLM.QuestionTTL, nil, logger)
		list, source, err := service.Questions(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		fmt.Fprintf(cmd.ErrOrStderr(), "source: %s\n", source)
		return nil
	},
}
