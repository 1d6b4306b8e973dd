package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maarif-labs/maarif/internal/watcher"
)

var watchDir string

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a drop directory and mirror it into the knowledge base",
	Long: `Watches a hot folder laid out as <department>/<category>/<file>.
New and changed files are ingested once they settle; removed files are
deleted from the knowledge base. Runs until interrupted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	dir := engineConfig.Watcher.Dir
	if len(args) > 0 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no watch directory: pass one or set watcher.dir in the config")
	}

	w, err := watcher.New(contentService, dir,
		watcher.WithSettleDelay(engineConfig.Watcher.SettleDelay),
		watcher.WithDefaultLanguage(engineConfig.Org.DefaultLanguage),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", dir)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	return nil
}
