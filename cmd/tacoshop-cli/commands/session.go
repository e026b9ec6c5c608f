package commands

import (
	"log/slog"

	"tacorder-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Performs the upstream handshake and persists the resulting session.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		service := createService()

		err := service.EnsureSession(ctx, *sessionId)
		if err != nil {
			serviceutil.Fatal("handshake failed", err)
		}
		slog.Info("session ready", "id", *sessionId)
	},
}
