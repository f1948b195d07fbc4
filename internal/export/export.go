// Package export renders a task listing in a shareable format.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"todo/internal/codec"
	"todo/internal/service"
)

// Supported export formats beyond the storage codecs.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

// Formats lists every accepted format name.
var Formats = []string{string(codec.JSON), string(codec.YAML), string(codec.TOML), FormatCSV, FormatPDF}

var csvHeader = []string{"position", "title", "description", "created_at", "completed"}

// Render encodes listing in the named format.
func Render(format string, listing service.Listing) ([]byte, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case FormatCSV:
		return renderCSV(listing)
	case FormatPDF:
		return renderPDF(listing)
	default:
		cf, err := codec.ParseFormat(f)
		if err != nil {
			return nil, fmt.Errorf("unknown export format: %s", format)
		}
		return codec.Encode(cf, listing.Tasks())
	}
}

func renderCSV(listing service.Listing) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for e := range listing.All() {
		record := []string{
			strconv.Itoa(e.Position),
			e.Task.Title,
			e.Task.Description,
			e.Task.CreatedAt,
			strconv.FormatBool(e.Task.Completed),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderPDF(listing service.Listing) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252; translate so accented titles survive.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Tasks")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 10)

	if listing.Empty() {
		pdf.MultiCell(0, 6, "No tasks available.", "0", "L", false)
	}
	for e := range listing.All() {
		line := fmt.Sprintf("%d. [%s] %s", e.Position, e.Status(), e.Task.Title)
		if e.Task.Description != "" {
			line += " - " + e.Task.Description
		}
		line += " (Created: " + e.Task.CreatedAt + ")"
		pdf.MultiCell(0, 6, tr(line), "0", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
