package cli

import (
	"strings"

	"github.com/marmotdev/marmot/internal/memtools"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "recall [query]",
		Short: "Search memories",
		Run:   runRecall,
	}

	cmd.Flags().StringP("scope", "s", "", "Scope filter (exact or substring)")
	cmd.Flags().StringP("type", "t", "", "Type filter (exact)")
	cmd.Flags().IntP("limit", "l", 0, "Result cap (default from settings)")

	RootCmd.AddCommand(cmd)
}

func runRecall(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	typ, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	res, err := s.Recall(strings.Join(args, " "), scope, typ, limit)
	if err != nil {
		exitErr("recall", err)
	}

	output(res, strings.TrimRight(memtools.FormatRecall(res), "\n"))
}
