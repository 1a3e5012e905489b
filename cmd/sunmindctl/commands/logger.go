package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sunmind/sunmind/pkg/client"
)

// getLoggerFromCmd returns the slog.Logger from the root command context
func getLoggerFromCmd(cmd *cobra.Command) *slog.Logger {
	if root := cmd.Root(); root != nil && root.Context() != nil {
		if logger, ok := root.Context().Value(loggerContextKey{}).(*slog.Logger); ok && logger != nil {
			return logger
		}
	}
	return slog.Default()
}

// getClient returns the agent client stored in the command context.
func getClient(cmd *cobra.Command) (client.ClientInterface, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(ClientContextKey).(client.ClientInterface); ok {
			return c, nil
		}
	}
	return nil, fmt.Errorf("client not found in context")
}
