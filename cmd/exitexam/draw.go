package main

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/spf13/cobra"

	"github.com/pavelanni/exitexam/internal/exam"
	"github.com/pavelanni/exitexam/internal/model"
)

func drawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "Assemble one attempt without storing it, to check the bank covers the rules",
		RunE:  runDraw,
	}
	f := cmd.Flags()
	f.Uint64("seed", 0, "Random seed for a reproducible draw (0 = random)")
	f.Bool("show-ids", false, "Print the drawn question ids")
	addExamFlags(f)
	addStorageFlags(f)
	addLogFlags(f)
	return cmd
}

func runDraw(cmd *cobra.Command, _ []string) error {
	v := commandSetup(cmd)
	ctx := context.Background()

	b, err := openBackends(ctx, v)
	if err != nil {
		return err
	}
	defer b.Close()

	cfg := examConfigFrom(v)
	bank, err := logBankCounts(ctx, b.questions, cfg.Subjects)
	if err != nil {
		return err
	}

	var rng exam.Rand
	if seed := v.GetUint64("seed"); seed != 0 {
		rng = rand.New(rand.NewPCG(seed, seed))
	}
	set, err := exam.NewService(b.questions, b.db, rng).Draw(ctx, cfg)
	if err != nil {
		return fmt.Errorf("draw: %w", err)
	}

	printDraw(os.Stdout, cfg, bank, set, v.GetBool("show-ids"))
	return nil
}

func printDraw(w io.Writer, cfg model.ExamConfig, bank map[string]int, set []model.Question, showIDs bool) {
	drawn := make(map[string]int, len(cfg.Subjects))
	for _, q := range set {
		drawn[q.Subject]++
	}

	fmt.Fprintf(w, "%s: %d questions, %d minutes\n", cfg.Title, len(set), cfg.DurationMinutes)
	for _, s := range cfg.Subjects {
		fmt.Fprintf(w, "  %-45s drawn %2d  bank %4d\n", s, drawn[s], bank[s])
	}
	if showIDs {
		for i, q := range set {
			fmt.Fprintf(w, "%3d  %s  %s\n", i+1, q.ID, q.Subject)
		}
	}
}
