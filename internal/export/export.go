// Package export renders a document once into a standalone HTML file.
package export

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/starford/meow/internal/apperr"
	"github.com/starford/meow/internal/markup"
	"github.com/starford/meow/internal/storage"
	"github.com/starford/meow/internal/web"
)

// Once resolves path, renders it and writes the export page to output.
func Once(reg *markup.Registry, path, filetype, output string, logger *slog.Logger) error {
	doc, err := markup.Resolve(reg, path, filetype)
	if err != nil {
		return err
	}
	return Document(doc, output, logger)
}

// Document writes the export page of an already resolved document.
func Document(doc *markup.Document, output string, logger *slog.Logger) error {
	res, err := doc.Render()
	if err != nil {
		return err
	}

	logger.Debug("rendering exported html", slog.String("source", doc.Path()), slog.String("output", output))

	var buf bytes.Buffer
	if err := web.RenderExport(&buf, web.Page{
		Title:     res.Title,
		HTML:      res.HTML,
		Timestamp: res.Timestamp,
	}); err != nil {
		return fmt.Errorf("export template: %w", err)
	}

	if err := storage.WriteAtomic(output, buf.Bytes(), 0o644); err != nil {
		return &apperr.ExportWriteError{Path: output, Err: err}
	}

	logger.Info("exported", slog.String("source", doc.Path()), slog.String("output", output), slog.Int("bytes", buf.Len()))
	return nil
}
