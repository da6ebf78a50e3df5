package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanglvm/capsearch/internal/registry"
)

// NewAddCmd creates the add command.
func NewAddCmd() *cobra.Command {
	var (
		description string
		tags        []string
		category    string
	)

	cmd := &cobra.Command{
		Use:     "add <name>",
		Aliases: []string{"register"},
		Short:   "Register or update a capability",
		Long: `Register a capability in the registry. Adding a name that already
exists updates its description, tags and category while keeping its
usage history.`,
		Example: `  capsearch add image_resize -d "Resize an image to given dimensions" -t image,resize,scale -c image
  capsearch add seo_audit_url -d "Run a Lighthouse audit against a URL" -t seo,lighthouse,audit -c seo`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(args[0], description, tags, category)
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Human readable description")
	cmd.Flags().StringSliceVarP(&tags, "tags", "t", nil, "Comma separated tags")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Category the capability belongs to")
	cmd.MarkFlagRequired("description")

	return cmd
}

func runAdd(name, description string, tags []string, category string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	err = d.store.Upsert(registry.Capability{
		Name:        name,
		Description: description,
		Tags:        tags,
		Category:    category,
		Active:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to register %s: %w", name, err)
	}

	fmt.Printf("Registered %s\n", name)
	return nil
}

// NewDeactivateCmd creates the deactivate command.
func NewDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "deactivate <name>",
		Aliases: []string{"rm"},
		Short:   "Deactivate a capability",
		Long: `Deactivate a capability so it no longer appears in search results.
Its usage history and trace edges are kept, re-adding the name restores them.`,
		Example: "  capsearch deactivate image_resize",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeactivate(args[0])
		},
	}
}

func runDeactivate(name string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.store.Deactivate(name); err != nil {
		return fmt.Errorf("failed to deactivate %s: %w", name, err)
	}

	fmt.Printf("Deactivated %s\n", name)
	return nil
}
