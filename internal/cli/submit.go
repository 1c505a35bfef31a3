package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/stateofclarity/refinery/internal/core/config"
	"github.com/stateofclarity/refinery/internal/infra/storage/postgres"
)

var submitCmd = &cobra.Command{
	Use:   "submit [topic] [content_file]",
	Short: "Enqueue a draft brief for refinement",
	Args:  cobra.ExactArgs(2),
	Run:   runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
}

func runSubmit(cmd *cobra.Command, args []string) {
	topic := args[0]
	content, err := os.ReadFile(args[1])
	if err != nil {
		fmt.Printf("Failed to read content file: %v\n", err)
		os.Exit(1)
	}

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

	// Direct SQL keeps the CLI free of the worker's claim semantics.
	id := uuid.NewString()
	query := `INSERT INTO briefs (id, topic, content, status, score, attempts, created_at, updated_at)
		VALUES ($1, $2, $3, 'draft', 0, 0, now(), now())`
	if _, err := db.ExecContext(ctx, query, id, topic, string(content)); err != nil {
		slog.Error("Failed to insert brief", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Submitted brief %s (%s)\n", id, topic)
}
