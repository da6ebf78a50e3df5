package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCategoriesCmd creates the categories command.
func NewCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List capability categories",
		Long:    "List every category present in the registry with the count of active capabilities in each.",
		Example: "  capsearch categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategories()
		},
	}
}

func runCategories() error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	categories, err := d.engine.ListCategories()
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}

	if len(categories) == 0 {
		fmt.Println("No categories registered.")
		return nil
	}

	for _, c := range categories {
		fmt.Printf("%-24s %d\n", c.Category, c.Count)
	}
	return nil
}
