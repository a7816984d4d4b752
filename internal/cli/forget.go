package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "forget",
		Short: "Delete memories by scope and type",
		Long:  "Delete every memory matching scope and type, from all day files. Deleted records are kept in the audit trail.",
		Run:   runForget,
	}

	cmd.Flags().StringP("scope", "s", "", "Scope of the records (required)")
	cmd.Flags().StringP("type", "t", "", "Type of the records (required)")
	cmd.Flags().StringP("reason", "r", "", "Why the records are deleted (required)")

	cmd.MarkFlagRequired("scope")
	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("reason")

	RootCmd.AddCommand(cmd)
}

func runForget(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	typ, _ := cmd.Flags().GetString("type")
	reason, _ := cmd.Flags().GetString("reason")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	n, err := s.DeleteMatching(scope, typ, reason)
	if err != nil {
		exitErr("forget", err)
	}

	if n == 0 {
		output(map[string]int{"deleted": 0}, fmt.Sprintf("no %s records found in scope %q", typ, scope))
		return
	}
	output(map[string]int{"deleted": n}, fmt.Sprintf("deleted %d record(s) from scope %q", n, scope))
}
