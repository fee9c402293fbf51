package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/model"
)

// diagnoseOutput is the JSON document printed by diagnose and read back by learn.
type diagnoseOutput struct {
	Engine    string          `json:"engine"`
	Diagnosis model.Diagnosis `json:"diagnosis"`
	Inputs    model.Facts     `json:"inputs"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Run one engine over a patient fact vector",
		Long: "Run one engine over a patient fact vector. Facts come from flags, from\n" +
			"a JSON document (--input file or - for stdin), or both; flags win.",
		Example: "  expert-dx diagnose -e rule-based --fever 38.5 --headache --travel\n" +
			"  echo '{\"fiebre\": 39, \"tos\": \"on\"}' | expert-dx diagnose -e fuzzy -i -",
		Args: cobra.NoArgs,
		Run:  runDiagnose,
	}

	cmd.Flags().StringP("engine", "e", "", "Engine: rule-based, bayesian, fuzzy (default from config)")
	addFactFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runDiagnose(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("engine")
	if name == "" {
		name = cfg.DefaultEngine
	}

	facts, err := readFacts(cmd, os.Stdin)
	if err != nil {
		exitErr("read facts", err)
	}

	reg := newRegistry()
	id, err := reg.Resolve(name)
	if err != nil {
		exitErr("diagnose", err)
	}
	d, err := reg.Diagnose(id, facts)
	if err != nil {
		exitErr("diagnose", err)
	}

	if textOutput() {
		printDiagnosis(os.Stdout, id, d)
		return
	}
	printJSON(os.Stdout, diagnoseOutput{Engine: id, Diagnosis: d, Inputs: facts})
}
