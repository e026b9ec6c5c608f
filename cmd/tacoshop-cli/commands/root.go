package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"tacorder-backend/lib/configutil"
	"tacorder-backend/lib/restyutil"
	"tacorder-backend/lib/scrapers/tacoshop"
	"tacorder-backend/lib/serviceutil"
	"tacorder-backend/services/ordering"
	"tacorder-backend/services/sessions"

	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "tacoshop-cli",
	Short: "tacoshop-cli is a CLI for driving and validating storefront scraping.",
}

var (
	sessionDb  *string
	sessionId  *string
	debugDumps *bool
)

func init() {
	sessionDb = rootCmd.PersistentFlags().String(
		"db", "sessions.db",
		"The database to persist upstream sessions to.",
	)
	sessionId = rootCmd.PersistentFlags().String(
		"session", "cli",
		"The session id to operate under.",
	)
	debugDumps = rootCmd.PersistentFlags().Bool(
		"debug-dumps", false,
		"Write every HTTP exchange to .dev/resty/tacoshop for inspection.",
	)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type Config struct {
	BaseUrl string `json:"base_url"`
}

func createService() ordering.Service {
	config, err := configutil.ReadRecursively[Config]("tacoshop.json5")
	if err != nil {
		serviceutil.Fatal("failed to read tacoshop.json5", err)
	}

	var debug restyutil.InstrumentOutput
	if *debugDumps {
		debug = restyutil.NewFilesystemOutput(".dev/resty/tacoshop")
	}

	client, err := tacoshop.NewClient(tacoshop.ClientOptions{
		BaseUrl: config.BaseUrl,
		Debug:   debug,
	})
	if err != nil {
		serviceutil.Fatal("failed to initialize upstream client", err)
	}

	db, err := sql.Open("sqlite", *sessionDb)
	if err != nil {
		serviceutil.Fatal("failed to open session db", err)
	}
	store, err := sessions.NewSqliteStore(db)
	if err != nil {
		serviceutil.Fatal("failed to initialize session store", err)
	}

	return ordering.NewService(client, store)
}
