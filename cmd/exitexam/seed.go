package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pavelanni/exitexam/internal/importer"
	"github.com/pavelanni/exitexam/internal/llm"
)

func seedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed FILE...",
		Short: "Load questions from JSON files into the question bank",
		Long: `Load questions from JSON files into the question bank.

Each file is an array of {subject, questionText, options, correctAnswer,
explanation, difficulty}. Questions are matched by subject and text, so
re-running a seed updates questions instead of duplicating them.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSeed,
	}
	f := cmd.Flags()
	f.Bool("force", false, "Import files even if unchanged since the last import")
	f.Bool("draft-explanations", false, "Ask an LLM to draft missing explanations")
	f.String("llm-url", "http://localhost:11434/v1", "OpenAI-compatible API base URL")
	f.String("llm-key", "ollama", "API key for LLM")
	f.String("llm-model", "llama3.2", "LLM model name")
	addStorageFlags(f)
	addLogFlags(f)
	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	v := commandSetup(cmd)
	ctx := context.Background()

	b, err := openBackends(ctx, v)
	if err != nil {
		return err
	}
	defer b.Close()

	opts := []importer.Option{importer.WithForce(v.GetBool("force"))}
	if v.GetBool("draft-explanations") {
		client := llm.New(v.GetString("llm-url"), v.GetString("llm-key"), v.GetString("llm-model"))
		if err := client.Ping(ctx); err != nil {
			// Drafting is best effort; seed without it.
			slog.Warn("LLM endpoint unavailable, not drafting explanations", "error", err)
		} else {
			slog.Info("LLM endpoint OK", "url", v.GetString("llm-url"), "model", v.GetString("llm-model"))
			opts = append(opts, importer.WithDrafter(client))
		}
	}
	im := importer.New(b.questions, opts...)

	var total importer.Summary
	for _, path := range args {
		s, err := im.ImportFile(ctx, path)
		if err != nil {
			return err
		}
		if s.SkippedFile {
			continue
		}
		slog.Info("imported questions",
			"path", path,
			"inserted", s.Inserted,
			"updated", s.Updated,
			"unchanged", s.Unchanged,
			"invalid", s.Invalid,
			"drafted", s.Drafted,
		)
		total.Inserted += s.Inserted
		total.Updated += s.Updated
		total.Invalid += s.Invalid
	}

	slog.Info("seed complete", "files", len(args), "inserted", total.Inserted, "updated", total.Updated, "invalid", total.Invalid)
	if total.Invalid > 0 {
		return fmt.Errorf("%d invalid questions were skipped", total.Invalid)
	}
	return nil
}
