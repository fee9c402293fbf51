package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/engine"
	"github.com/rcliao/expert-dx/internal/model"
)

type compareOutput struct {
	Inputs  model.Facts     `json:"inputs"`
	Results []engine.Result `json:"results"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every engine over the same fact vector",
		Args:  cobra.NoArgs,
		Run:   runCompare,
	}

	addFactFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runCompare(cmd *cobra.Command, args []string) {
	facts, err := readFacts(cmd, os.Stdin)
	if err != nil {
		exitErr("read facts", err)
	}

	results, err := newRegistry().Compare(cmd.Context(), facts)
	if err != nil {
		exitErr("compare", err)
	}

	if textOutput() {
		for _, r := range results {
			printDiagnosis(os.Stdout, r.Engine, r.Diagnosis)
		}
		return
	}
	printJSON(os.Stdout, compareOutput{Inputs: facts, Results: results})
}
