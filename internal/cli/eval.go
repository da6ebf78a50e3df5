package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/capsearch/internal/eval"
)

// NewEvalCmd creates the eval command.
func NewEvalCmd() *cobra.Command {
	var (
		corpusPath   string
		baselineOnly bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate ranking quality against a labeled corpus",
		Long: `Run the labeled query corpus through the engine and report recall@5
and mean reciprocal rank per query segment. By default every ablation
variant runs as well, showing how much each ranking signal contributes.`,
		Example: `  capsearch eval --corpus queries.yaml
  capsearch eval --corpus queries.yaml --baseline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(corpusPath, baselineOnly)
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "f", "", "Path to the YAML query corpus")
	cmd.Flags().BoolVar(&baselineOnly, "baseline", false, "Run only the baseline variant, skip ablations")
	cmd.MarkFlagRequired("corpus")

	return cmd
}

func runEval(corpusPath string, baselineOnly bool) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	corpus, err := eval.LoadCorpus(corpusPath)
	if err != nil {
		return fmt.Errorf("failed to load corpus: %w", err)
	}

	variants := eval.Variants()
	if baselineOnly {
		variants = variants[:1]
	}

	reports, err := eval.Run(context.Background(), d.engine, corpus, variants)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	fmt.Printf("%-24s %-12s %8s %10s %8s\n", "VARIANT", "SEGMENT", "QUERIES", "RECALL@5", "MRR")
	for _, r := range reports {
		fmt.Printf("%-24s %-12s %8d %10.3f %8.3f\n", r.Variant, r.Segment, r.Queries, r.RecallAt5, r.MRR)
	}
	return nil
}
