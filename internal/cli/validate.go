package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/blob"
	"github.com/billfold/billfold/internal/schema"
)

// ValidationResult holds drive validation results.
type ValidationResult struct {
	Valid    bool             `json:"valid"`
	Problems []schema.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate every stored document against the invoice schema",
		Long: `Walk the drive and check each document.json against the embedded CUE
schema. The engine's startup walk silently skips documents it cannot
parse; this command reports exactly which blobs would be skipped and why.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, root, cmd)
		},
	}
	cmd.Flags().StringVar(&root, "root", "data", "drive root to validate")
	return cmd
}

func runValidate(opts *RootOptions, root string, cmd *cobra.Command) error {
	store, err := blob.NewOS(root)
	if err != nil {
		return err
	}
	validator, err := schema.New()
	if err != nil {
		return err
	}

	problems, err := validator.CheckDrive(store)
	if err != nil {
		return err
	}

	result := ValidationResult{
		Valid:    len(problems) == 0,
		Problems: problems,
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintln(out, "drive is valid")
	} else {
		for _, p := range problems {
			fmt.Fprintf(out, "%s: %s\n", p.Path, p.Message)
		}
	}

	if !result.Valid {
		return fmt.Errorf("%d invalid document(s)", len(problems))
	}
	return nil
}
