package usecase

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"DiscussionScanner/internal/export"
	"DiscussionScanner/internal/visualize"
)

// Plotter renders chart pages from an export file.
type Plotter struct {
	Renderer visualize.Renderer
	OutDir   string
	Logger   *slog.Logger
}

// Plot reads csvPath and writes {OutDir}/{kind}.html, returning the page path.
// An export without rows logs "no articles" and writes nothing.
func (p Plotter) Plot(csvPath string, kind visualize.Kind) (string, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		return "", fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	rows, err := export.ReadCSV(f)
	if err != nil {
		return "", fmt.Errorf("read export %s: %w", csvPath, err)
	}

	var page bytes.Buffer
	if err := p.Renderer.Render(kind, rows, &page); err != nil {
		if errors.Is(err, visualize.ErrNoArticles) {
			p.logger().Info("no articles", "csv", csvPath)
			return "", nil
		}
		return "", fmt.Errorf("render %s: %w", kind, err)
	}

	if err := os.MkdirAll(p.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create chart dir: %w", err)
	}
	out := filepath.Join(p.OutDir, string(kind)+".html")
	if err := os.WriteFile(out, page.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	p.logger().Info("chart written", "kind", kind, "path", out, "articles", len(rows))
	return out, nil
}

func (p Plotter) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}
