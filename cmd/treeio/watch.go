package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchFlags struct {
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch FILE",
	Short: "Print a summary of a tree file every time it changes",
	Long: `Follow a tree file that is still being written, such as the sample file
of a running MCMC analysis, and print the stats header line after each
change. The file is re-read from scratch with the current burn-in options.

Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 500*time.Millisecond, "quiet time after a change before re-reading")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	out := cmd.OutOrStdout()
	summarize := func() {
		in, err := openInput(path, cfg)
		if err != nil {
			// A file caught mid-write often ends inside a tree.
			logger().Warningf("%s", err)
			return
		}
		defer in.Close()
		fmt.Fprintf(out, "%s: %s, %d taxa, %d of %d trees\n",
			time.Now().Format(time.TimeOnly), path, in.Labels.NumLabels(), in.Retained, in.Total)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	summarize()
	return watchFile(ctx, path, watchFlags.debounce, summarize)
}

// watchFile calls onChange once path has been written or replaced and then
// left alone for debounce. The parent directory is watched so that editors
// and programs that replace the file are followed. It returns when ctx is
// done.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", path, err)
	}
	logger().Infof("watching %s", abs)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				logger().Debugf("%s: %s", event.Op, event.Name)
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			logger().Errorf("file watcher: %s", err)
		case <-timer.C:
			onChange()
		}
	}
}
