package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/model"
	"github.com/rcliao/expert-dx/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history [query]",
		Short: "List recent feedback records",
		Long:  "List learning-log records newest first. A query matches diagnosis or feedback text.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runHistory,
	}

	cmd.Flags().StringP("engine", "e", "", "Filter by engine")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("confirmed", false, "Only records marked correct")
	cmd.Flags().Bool("rejected", false, "Only records marked incorrect")
	cmd.MarkFlagsMutuallyExclusive("confirmed", "rejected")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	name, _ := cmd.Flags().GetString("engine")
	limit, _ := cmd.Flags().GetInt("limit")
	confirmed, _ := cmd.Flags().GetBool("confirmed")
	rejected, _ := cmd.Flags().GetBool("rejected")

	if name != "" {
		id, err := newRegistry().Resolve(name)
		if err != nil {
			exitErr("history", err)
		}
		name = id
	}

	p := store.SearchParams{SystemUsed: name, Limit: limit}
	if len(args) > 0 {
		p.Query = args[0]
	}
	if confirmed || rejected {
		p.Corrected = &confirmed
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var logs []model.LearningLog
	if p.Query == "" && p.Corrected == nil {
		logs, err = s.List(cmd.Context(), store.ListParams{SystemUsed: p.SystemUsed, Limit: p.Limit})
	} else {
		logs, err = s.Search(cmd.Context(), p)
	}
	if err != nil {
		exitErr("history", err)
	}
	if logs == nil {
		logs = []model.LearningLog{}
	}

	if textOutput() {
		green := color.New(color.FgGreen)
		red := color.New(color.FgRed)
		for _, l := range logs {
			mark := red.Sprint("✗")
			if l.Corrected {
				mark = green.Sprint("✓")
			}
			fmt.Printf("%s %s %-10s %s", mark, l.Timestamp.Local().Format("2006-01-02 15:04"), l.SystemUsed, l.Diagnosis)
			if l.UserFeedback != "" {
				fmt.Printf("  %q", l.UserFeedback)
			}
			fmt.Println()
		}
		return
	}
	printJSON(os.Stdout, logs)
}
