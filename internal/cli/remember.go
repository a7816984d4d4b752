package cli

import (
	"fmt"
	"strings"

	"github.com/marmotdev/marmot/internal/record"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "remember [content]",
		Short: "Store a memory",
		Args:  cobra.MinimumNArgs(1),
		Run:   runRemember,
	}

	cmd.Flags().StringP("type", "t", "", "Record type: "+strings.Join(record.Types, ", "))
	cmd.Flags().StringP("scope", "s", "", "Scope (required)")
	cmd.Flags().String("issue", "", "Issue/ticket reference")
	cmd.Flags().String("tags", "", "Comma-separated tags")

	cmd.MarkFlagRequired("type")
	cmd.MarkFlagRequired("scope")

	RootCmd.AddCommand(cmd)
}

func runRemember(cmd *cobra.Command, args []string) {
	typ, _ := cmd.Flags().GetString("type")
	scope, _ := cmd.Flags().GetString("scope")
	issue, _ := cmd.Flags().GetString("issue")
	tagsStr, _ := cmd.Flags().GetString("tags")

	if !record.ValidType(typ) {
		exitErr("remember", fmt.Errorf("invalid type %q (want one of: %s)", typ, strings.Join(record.Types, ", ")))
	}

	var tags []string
	for _, t := range strings.Split(tagsStr, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	rec := record.Record{
		Type:    typ,
		Scope:   scope,
		Content: strings.Join(args, " "),
		Issue:   issue,
		Tags:    tags,
	}
	if err := s.Append(rec); err != nil {
		exitErr("remember", err)
	}

	output(rec, fmt.Sprintf("remembered [%s] in scope %q", typ, scope))
}
