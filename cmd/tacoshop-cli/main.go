package main

import (
	"context"
	"log/slog"
	"os"

	"tacorder-backend/cmd/tacoshop-cli/commands"
	"tacorder-backend/lib/serviceutil"
	"tacorder-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	_, err := telemetry.SetupFromEnv(context.Background(), "tacoshop-cli")
	if err != nil && !os.IsNotExist(err) {
		slog.Warn("telemetry setup failed", "err", err)
	}
	telemetry.InitSlog(true)

	commands.ExecuteContext(ctx)
}
