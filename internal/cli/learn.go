package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/engine"
	"github.com/rcliao/expert-dx/internal/model"
	"github.com/rcliao/expert-dx/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "learn",
		Short: "Record clinician feedback on a diagnosis",
		Long: "Append a learning-log record. Either pipe the JSON printed by diagnose\n" +
			"or give --engine and --diagnosis with fact flags.",
		Example: "  expert-dx diagnose -e bayesian --fever 39 --travel | expert-dx learn --correct --feedback \"NS1 positive\"",
		Args:    cobra.NoArgs,
		Run:     runLearn,
	}

	cmd.Flags().StringP("engine", "e", "", "Engine that produced the diagnosis")
	cmd.Flags().String("diagnosis", "", "Diagnosis label being reviewed")
	cmd.Flags().String("feedback", "", "Free-text clinician feedback")
	cmd.Flags().Bool("correct", false, "The diagnosis was confirmed correct")
	addFactFlags(cmd)

	RootCmd.AddCommand(cmd)
}

func runLearn(cmd *cobra.Command, args []string) {
	p, err := learnParams(cmd, pipedStdin(), newRegistry())
	if err != nil {
		exitErr("learn", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	rec, err := s.Append(cmd.Context(), p)
	if err != nil {
		exitErr("learn", err)
	}

	printJSON(os.Stdout, rec)
}

// learnParams builds the record from a piped diagnose result when --diagnosis
// is absent, otherwise from flags. Fact flags override the piped inputs.
func learnParams(cmd *cobra.Command, stdin io.Reader, reg *engine.Registry) (store.AppendParams, error) {
	var p store.AppendParams
	fs := cmd.Flags()

	name, _ := fs.GetString("engine")
	label, _ := fs.GetString("diagnosis")
	p.UserFeedback, _ = fs.GetString("feedback")
	p.Corrected, _ = fs.GetBool("correct")

	if label == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return p, fmt.Errorf("read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return p, fmt.Errorf("--diagnosis is required (or pipe diagnose output)")
		}
		out := diagnoseOutput{Inputs: model.DefaultFacts()}
		if err := json.Unmarshal(data, &out); err != nil {
			return p, fmt.Errorf("parse diagnose output: %w", err)
		}
		if name == "" {
			name = out.Engine
		}
		label = out.Diagnosis.Label
		overlayFactFlags(cmd, &out.Inputs)
		b, _ := json.Marshal(out.Inputs)
		p.Inputs = string(b)
	} else {
		facts, err := readFacts(cmd, stdin)
		if err != nil {
			return p, err
		}
		b, _ := json.Marshal(facts)
		p.Inputs = string(b)
	}

	if name == "" {
		name = cfg.DefaultEngine
	}
	id, err := reg.Resolve(name)
	if err != nil {
		return p, err
	}
	p.SystemUsed = id
	p.Diagnosis = label
	return p, nil
}
