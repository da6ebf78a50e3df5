package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// NewRecordCmd creates the record command.
func NewRecordCmd() *cobra.Command {
	var (
		session string
		failed  bool
	)

	cmd := &cobra.Command{
		Use:   "record <capability>",
		Short: "Record a capability invocation",
		Long: `Record that a capability was invoked. Successful invocations bump
the capability's usage count and strengthen trace edges to the other
capabilities used successfully in the same session.`,
		Example: `  capsearch record image_resize --session build-42
  capsearch record seo_audit_url --session build-42 --failed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(args[0], session, !failed)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", "", "Session identifier grouping related invocations")
	cmd.Flags().BoolVar(&failed, "failed", false, "Mark the invocation as failed")
	cmd.MarkFlagRequired("session")

	return cmd
}

func runRecord(capability, session string, success bool) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}
	defer d.close()

	if err := d.store.RecordInvocation(capability, session, time.Now().UTC(), success); err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}

	fmt.Printf("Recorded %s in session %s\n", capability, session)
	return nil
}
