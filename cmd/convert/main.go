// Command convert builds a scoring-app configuration bundle from a directory
// of game definition files and writes it as a zip, without needing a running
// server.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coyotecrew/camporee-collator/designer"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	gamesDir := flag.String("games", "games", "directory containing game definition files")
	title := flag.String("title", "Camporee", "event title embedded in the bundle")
	out := flag.String("out", "", "output zip path (default CamporeeConfig-<timestamp>.zip)")
	flag.Parse()

	now := time.Now().UTC()
	bundle, err := designer.Convert(*gamesDir, *title, now)
	if err != nil {
		logger.Error("conversion failed", slog.Any("error", err))
		os.Exit(1)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("CamporeeConfig-%s.zip", now.Format("20060102-150405"))
	}

	f, err := os.Create(path)
	if err != nil {
		logger.Error("failed to create output file", slog.Any("error", err))
		os.Exit(1)
	}

	if err := bundle.WriteZip(f); err != nil {
		f.Close()
		logger.Error("failed to write bundle", slog.Any("error", err))
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		logger.Error("failed to close output file", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("bundle written",
		slog.String("path", path),
		slog.Int("games", len(bundle.Games)),
	)
}
