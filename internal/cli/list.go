package cli

import (
	"strings"

	"github.com/marmotdev/marmot/internal/memtools"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Summarize memory by scope and type",
		Run:   runList,
	}
	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	sum, err := s.Summarize()
	if err != nil {
		exitErr("list", err)
	}

	output(sum, strings.TrimRight(memtools.FormatSummary(sum), "\n"))
}
