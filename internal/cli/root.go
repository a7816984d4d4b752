// Package cli implements the marmot CLI commands.
//
// The same operations the MCP tools expose are available for direct
// shell and hook use: remember, recall, update, forget, list, log, plus
// serve for the stdio MCP transport.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"github.com/marmotdev/marmot/internal/config"
	"github.com/marmotdev/marmot/internal/memory"
	"github.com/spf13/cobra"
)

var (
	projectFlag string
	rootFlag    string
	formatFlag  string
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "marmot",
	Short: "Persistent memory for AI coding sessions",
	Long:  "A file-backed memory store and session event log for AI coding assistants. Plain-text records, single binary.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectFlag, "project", "p", "", "Project directory holding .marmot.yaml (default: cwd)")
	RootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "Storage root override (default from settings)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// loadSettings resolves layered settings with the CLI overrides applied.
func loadSettings() (config.Settings, error) {
	project := projectFlag
	if project == "" {
		project, _ = os.Getwd()
	}
	var override config.Overlay
	if rootFlag != "" {
		override.StorageRoot = &rootFlag
	}
	return config.Load(project, override)
}

// openStore builds the memory store from resolved settings.
func openStore() (*memory.Store, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	globs, err := settings.CompileScopeFilters()
	if err != nil {
		return nil, err
	}
	return newStore(settings.StorageRoot, settings.RecallLimit, globs)
}

func newStore(root string, recallLimit int, globs []glob.Glob) (*memory.Store, error) {
	return memory.New(memory.Config{
		RootDir:          root,
		MaxRecallResults: recallLimit,
		ScopeFilters:     globs,
	})
}

// output prints v as JSON when --format=json, otherwise the text form.
func output(v any, text string) {
	if formatFlag == "json" {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			exitErr("encode output", err)
		}
		fmt.Println(string(data))
		return
	}
	fmt.Println(text)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
