package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rcliao/expert-dx/internal/engine"
)

type engineInfo struct {
	ID      string   `json:"id"`
	Aliases []string `json:"aliases,omitempty"`
}

func init() {
	cmd := &cobra.Command{
		Use:   "engines",
		Short: "List available engines",
		Args:  cobra.NoArgs,
		Run:   runEngines,
	}

	RootCmd.AddCommand(cmd)
}

func runEngines(cmd *cobra.Command, args []string) {
	var out []engineInfo
	for _, id := range newRegistry().Names() {
		out = append(out, engineInfo{ID: id, Aliases: engine.Aliases(id)})
	}

	if textOutput() {
		for _, e := range out {
			if len(e.Aliases) > 0 {
				fmt.Printf("%s (%s)\n", e.ID, strings.Join(e.Aliases, ", "))
			} else {
				fmt.Println(e.ID)
			}
		}
		return
	}
	printJSON(os.Stdout, out)
}
