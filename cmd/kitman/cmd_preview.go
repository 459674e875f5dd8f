// Package main implements the preview CLI command for kitman.
// This file renders markup outside the console, including watch mode.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kitman/internal/markup"
	"kitman/internal/preview"
	"kitman/internal/watch"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// PREVIEW COMMAND
// =============================================================================

var (
	previewFile  string
	previewWatch bool
	previewWidth int
	previewLines int
	previewPlain bool
	previewTree  bool
)

// previewCmd renders markup the way the game client will
var previewCmd = &cobra.Command{
	Use:   "preview [text]",
	Short: "Render announcement markup the way the game client will",
	Long: `Renders markup text to the terminal with the same parsing rules the
game client applies: named or hex colors, <b>, <i>, the \n line break, and
silent recovery from unknown or unterminated tags.

  kitman preview "<color=red>Restarting in <b>5</b> minutes</color>"
  kitman preview --file motd.txt
  kitman preview --file motd.txt --watch    # re-render on every save
  kitman preview --tree "<b>nested <i>tags</i></b>"`,
	RunE: runPreview,
}

func runPreview(cmd *cobra.Command, args []string) error {
	if previewWatch && previewFile == "" {
		return fmt.Errorf("--watch needs --file; there is nothing to watch in argument text")
	}

	body, err := previewBody(args)
	if err != nil {
		return err
	}

	if !previewWatch {
		fmt.Println(renderPreview(body))
		return nil
	}
	return runPreviewWatch(cmd, body)
}

// previewBody resolves the markup source: --file wins over arguments.
func previewBody(args []string) (string, error) {
	if previewFile != "" {
		data, err := os.ReadFile(previewFile)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", previewFile, err)
		}
		return string(data), nil
	}
	if len(args) == 0 {
		return "", fmt.Errorf("provide markup text or --file")
	}
	return strings.Join(args, " "), nil
}

// renderPreview runs one body through the pipeline, honoring output flags.
func renderPreview(body string) string {
	nodes := parseMarkup(body)

	if previewTree {
		return strings.TrimRight(preview.Tree(nodes), "\n")
	}
	if previewPlain {
		return preview.Plain(markup.Flatten(nodes))
	}
	if previewLines > 0 || previewWidth > 0 {
		lines := previewLines
		if lines <= 0 {
			// Width clamp only: keep every line.
			lines = len(preview.SplitLines(markup.Flatten(nodes)))
		}
		return preview.Snippet(nodes, lines, previewWidth)
	}
	return preview.Live(nodes)
}

// runPreviewWatch re-renders the file on every save until interrupted.
func runPreviewWatch(cmd *cobra.Command, initial string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printRender := func(body string) {
		fmt.Printf("── %s ── %s\n", previewFile, time.Now().Format("15:04:05"))
		fmt.Println(renderPreview(body))
	}

	printRender(initial)
	fmt.Println("Watching for changes. Ctrl+C to stop.")

	// The watcher hands settled bodies to the render goroutine through a
	// channel, so a slow terminal never backs up filesystem events.
	g, gctx := errgroup.WithContext(ctx)
	bodies := make(chan string, 1)

	w, err := watch.NewPreviewWatcher(previewFile, cfg.GetWatchDebounce(), func(body string) {
		select {
		case bodies <- body:
		case <-gctx.Done():
		}
	})
	if err != nil {
		return err
	}

	g.Go(func() error {
		return w.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case body := <-bodies:
				printRender(body)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	fmt.Println("\nStopped.")
	return nil
}

func init() {
	previewCmd.Flags().StringVarP(&previewFile, "file", "f", "", "Read markup from a file instead of arguments")
	previewCmd.Flags().BoolVarP(&previewWatch, "watch", "w", false, "Re-render whenever --file changes")
	previewCmd.Flags().IntVar(&previewWidth, "width", 0, "Clamp lines to this display width (0 = no clamp)")
	previewCmd.Flags().IntVar(&previewLines, "lines", 0, "Clamp output to this many lines (0 = no clamp)")
	previewCmd.Flags().BoolVar(&previewPlain, "plain", false, "Strip styling and print plain text")
	previewCmd.Flags().BoolVar(&previewTree, "tree", false, "Dump the parsed node structure instead of rendering")
}
