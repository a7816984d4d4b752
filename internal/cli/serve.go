package cli

import (
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	marmotserver "github.com/marmotdev/marmot/internal/server"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server (stdio transport)",
		Long:  "Serve the marmot tools over MCP stdio. Diagnostics go to stderr; stdout belongs to the transport.",
		Run:   runServe,
	}
	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	settings, err := loadSettings()
	if err != nil {
		exitErr("load settings", err)
	}

	s, err := marmotserver.New(settings, nil)
	if err != nil {
		exitErr("creating server", err)
	}

	// ServeStdio returns when stdin closes; an interrupt just exits.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		os.Exit(0)
	}()

	if err := mcpserver.ServeStdio(s); err != nil {
		exitErr("serve", err)
	}
}
