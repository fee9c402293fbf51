package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the learning log as JSON",
		Long:  "Export every learning-log record, oldest first. Filter by engine with -e.",
		Run:   runExport,
	}

	cmd.Flags().StringP("engine", "e", "", "Filter by engine")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("engine")
	if name != "" {
		id, err := newRegistry().Resolve(name)
		if err != nil {
			exitErr("export", err)
		}
		name = id
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	logs, err := s.ExportAll(cmd.Context(), name)
	if err != nil {
		exitErr("export", err)
	}
	if logs == nil {
		logs = []model.LearningLog{}
	}

	printJSON(os.Stdout, logs)
}
