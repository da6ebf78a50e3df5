/*
Package main is the entry point for the capsearch CLI.

capsearch is a hybrid search engine for agent capability discovery. It
fuses lexical signals (exact, prefix, fuzzy, phrase n-grams, tag TF-IDF)
with dense embedding similarity by reciprocal rank, then applies domain
cluster and session trace boosts learned from recorded invocations.

Usage:

	capsearch [command]

Available Commands:

	search      Search registered capabilities
	categories  List capability categories
	add         Register or update a capability
	deactivate  Deactivate a capability
	record      Record a capability invocation
	eval        Evaluate ranking quality against a labeled corpus
	version     Show version information
	help        Help about any command

Examples:

	# Register a capability
	capsearch add image_resize -d "Resize an image" -t image,resize -c image

	# Search for it
	capsearch search "make this picture smaller"

	# Record invocations so co-occurring capabilities boost each other
	capsearch record image_resize --session build-42
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanglvm/capsearch/internal/cli"
	"github.com/khanglvm/capsearch/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "capsearch",
		Short: "Hybrid search for agent capability discovery",
		Long: `capsearch ranks registered capabilities against natural-language
queries. Lexical and dense signals are fused by reciprocal rank, with a
keyword-scan fallback when the full-text index or embedding backend is
unavailable.`,
		Version: version.GetVersion(),
	}

	rootCmd.AddCommand(cli.NewSearchCmd())
	rootCmd.AddCommand(cli.NewCategoriesCmd())
	rootCmd.AddCommand(cli.NewAddCmd())
	rootCmd.AddCommand(cli.NewDeactivateCmd())
	rootCmd.AddCommand(cli.NewRecordCmd())
	rootCmd.AddCommand(cli.NewEvalCmd())
	rootCmd.AddCommand(cli.NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
