package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show learning-log statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if textOutput() {
		printStats(stats)
		return
	}
	printJSON(os.Stdout, stats)
}

func printStats(st *store.Stats) {
	bold := color.New(color.Bold)
	_, _ = bold.Printf("%d records", st.TotalLogs)
	fmt.Printf(" (%d confirmed, %d rejected) in %s, %d bytes\n", st.Confirmed, st.Rejected, st.DBPath, st.DBSizeBytes)
	for _, es := range st.Engines {
		fmt.Printf("  %-12s %4d records  %4d confirmed  %4d rejected\n", es.Engine, es.Count, es.Confirmed, es.Count-es.Confirmed)
	}
}
