package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/khanglvm/capsearch/internal/search"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	var (
		category    string
		limit       int
		sessionUsed []string
		showScores  bool
	)

	cmd := &cobra.Command{
		Use:     "search <query>",
		Aliases: []string{"find", "s"},
		Short:   "Search registered capabilities",
		Long: `Search the capability registry with the hybrid ranking pipeline.

Lexical and dense signals are fused by reciprocal rank. When the
full-text index or the embedding backend is unavailable the engine
falls back to a keyword scan over the registry.`,
		Example: `  capsearch search "resize an image"
  capsearch search "page speed" --category seo --limit 3
  capsearch search "crop" --session-used image_load --scores`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(strings.Join(args, " "), category, limit, sessionUsed, showScores)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Restrict results to one category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of results")
	cmd.Flags().StringSliceVar(&sessionUsed, "session-used", nil, "Capabilities already used this session, boosts co-occurring results")
	cmd.Flags().BoolVar(&showScores, "scores", false, "Print fused scores alongside results")

	return cmd
}

func runSearch(query, category string, limit int, sessionUsed []string, showScores bool) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	results, err := d.engine.Search(context.Background(), search.Query{
		Text:        query,
		Category:    category,
		Limit:       limit,
		SessionUsed: sessionUsed,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No matching capabilities found.")
		return nil
	}

	for _, r := range results {
		cap, err := d.store.GetByName(r.Name)
		desc := ""
		if err == nil && cap != nil {
			desc = cap.Description
		}
		if showScores {
			fmt.Printf("%2d. %-30s %.4f  %-8s %s\n", r.Rank, r.Name, r.Score, r.MatchType, desc)
		} else {
			fmt.Printf("%2d. %-30s %s\n", r.Rank, r.Name, desc)
		}
	}
	return nil
}
