package main

import (
	"trailforks-scraper/cmd/trailforks-cli/commands"
	"trailforks-scraper/lib/serviceutil"
	"trailforks-scraper/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()

	shutdown := telemetry.SetupOrWarn(ctx, "trailforks-cli")
	err := commands.ExecuteContext(ctx)
	shutdown()
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
