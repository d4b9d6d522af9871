package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/blob"
	"github.com/billfold/billfold/internal/gateway"
	"github.com/billfold/billfold/internal/invoice"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List invoice summaries stored under a drive root",
		Long: `Walk the drive hierarchy the same way engine startup does and print one
summary per document found. Unparsable entries are skipped, matching the
engine's best-effort index seed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, root, cmd)
		},
	}
	cmd.Flags().StringVar(&root, "root", "data", "drive root to list")
	return cmd
}

func runList(opts *RootOptions, root string, cmd *cobra.Command) error {
	store, err := blob.NewOS(root)
	if err != nil {
		return err
	}
	gw := gateway.New(store, nil)

	docs := gw.ListAll()
	summaries := make([]invoice.Summary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, invoice.Summarize(doc))
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Fprintln(out, "no invoices found")
		return nil
	}
	fmt.Fprintf(out, "%-24s %-12s %-12s %-10s %12s  %s\n", "ID", "NUMBER", "DATE", "STATUS", "TOTAL", "NAME")
	for _, s := range summaries {
		fmt.Fprintf(out, "%-24s %-12s %-12s %-10s %12.2f  %s\n", s.ID, s.Number, s.Date, s.Status, s.Total, s.Name)
	}
	return nil
}
