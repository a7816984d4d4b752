package cli

import (
	"encoding/json"
	"fmt"

	"github.com/marmotdev/marmot/internal/eventlog"
	"github.com/marmotdev/marmot/internal/session"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "log <event>",
		Short: "Append a raw event to a session's event log",
		Long:  "Append one JSON event line to the per-session log tree. Intended for host lifecycle hooks; a no-op when event logging is disabled.",
		Args:  cobra.ExactArgs(1),
		Run:   runLog,
	}

	cmd.Flags().String("session", "", "Session id (required)")
	cmd.Flags().String("task", "", "Task id")
	cmd.Flags().String("agent", "", "Agent name, for sub-agent chat messages")
	cmd.Flags().String("payload", "", "JSON object with additional event fields")

	cmd.MarkFlagRequired("session")

	RootCmd.AddCommand(cmd)
}

func runLog(cmd *cobra.Command, args []string) {
	sessionID, _ := cmd.Flags().GetString("session")
	taskID, _ := cmd.Flags().GetString("task")
	agent, _ := cmd.Flags().GetString("agent")
	rawPayload, _ := cmd.Flags().GetString("payload")

	settings, err := loadSettings()
	if err != nil {
		exitErr("load settings", err)
	}

	payload := map[string]any{}
	if rawPayload != "" {
		if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
			exitErr("parse payload", err)
		}
	}
	if agent != "" {
		payload["agent"] = agent
	}

	// Each CLI invocation is its own process: no host connection exists,
	// so sessions resolve degraded (raw id as slug). The MCP server path
	// is the one that sees real session metadata.
	resolver := session.NewResolver(nil)
	agents := session.NewAgentTracker()
	writer := eventlog.NewWriter(settings.StorageRoot, settings.LoggingEnabled, resolver, agents)

	err = writer.Append(eventlog.Event{
		SessionID: sessionID,
		Name:      args[0],
		TaskID:    taskID,
		Payload:   payload,
	})
	if err != nil {
		exitErr("log", err)
	}

	if !settings.LoggingEnabled {
		fmt.Println("event logging is disabled — event discarded")
		return
	}
	fmt.Printf("logged %q for session %s\n", args[0], sessionID)
}
