package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/marmotdev/marmot/internal/memory"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update [content]",
		Short: "Replace an existing memory's content",
		Long:  "Replace the single memory matching scope and type. The superseded version is archived in the audit trail.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runUpdate,
	}

	cmd.Flags().StringP("scope", "s", "", "Scope of the record (required)")
	cmd.Flags().StringP("type", "t", "", "Type of the record (required)")
	cmd.Flags().StringP("query", "q", "", "Disambiguation query when several records match")
	cmd.Flags().String("issue", "", "New issue reference (default: inherit)")
	cmd.Flags().String("tags", "", "New comma-separated tags (default: inherit)")

	cmd.MarkFlagRequired("scope")
	cmd.MarkFlagRequired("type")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	scope, _ := cmd.Flags().GetString("scope")
	typ, _ := cmd.Flags().GetString("type")
	query, _ := cmd.Flags().GetString("query")

	p := memory.UpdateParams{
		Scope:   scope,
		Type:    typ,
		Content: strings.Join(args, " "),
		Query:   query,
	}
	if cmd.Flags().Changed("issue") {
		issue, _ := cmd.Flags().GetString("issue")
		p.Issue = &issue
	}
	if cmd.Flags().Changed("tags") {
		raw, _ := cmd.Flags().GetString("tags")
		var tags []string
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		p.Tags = &tags
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}

	updated, err := s.UpdateMatching(p)
	if err != nil {
		var notFound *memory.NotFoundError
		var ambiguous *memory.AmbiguousError
		switch {
		case errors.As(err, &notFound):
			fmt.Printf("no %s record found in scope %q — nothing updated\n", typ, scope)
			return
		case errors.As(err, &ambiguous):
			fmt.Printf("%d %s records match scope %q — re-run with --query\n", ambiguous.Count, typ, scope)
			return
		default:
			exitErr("update", err)
		}
	}

	output(updated, fmt.Sprintf("updated [%s] in scope %q — previous version archived", updated.Type, updated.Scope))
}
