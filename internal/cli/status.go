package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stateofclarity/refinery/internal/core/config"
	"github.com/stateofclarity/refinery/internal/infra/storage/postgres"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current status of recent briefs",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	rows, err := db.QueryContext(ctx,
		"SELECT id, topic, status, score, attempts FROM briefs ORDER BY updated_at DESC LIMIT 50")
	if err != nil {
		slog.Error("Failed to query briefs", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = rows.Close()
	}()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "ID\tTOPIC\tSTATUS\tSCORE\tATTEMPTS")

	for rows.Next() {
		var id, topic, status string
		var score float64
		var attempts int
		if err := rows.Scan(&id, &topic, &status, &score, &attempts); err != nil {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\n", id, topic, status, score, attempts)
	}
	_ = w.Flush()
}
