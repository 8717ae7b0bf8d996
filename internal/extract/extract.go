package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	FormatPDF     = "pdf"
	FormatUnknown = "unknown"
)

// UnsupportedText is the fixed text carried by documents in formats we do not parse.
const UnsupportedText = "[unsupported resume format]"

var pdfMagic = []byte("%PDF-")

var (
	// ErrInvalidFormat means the payload does not carry the PDF signature.
	ErrInvalidFormat = errors.New("invalid document format")
	// ErrParse means the payload looked like a PDF but text could not be read from it.
	ErrParse = errors.New("document parse failed")
)

// Document is the result of an extraction attempt.
// Supported is false for formats outside PDF; Text then holds UnsupportedText.
type Document struct {
	Text      string
	Format    string
	Supported bool
	Pages     int
}

// FromBytes extracts linear text from an in-memory payload. name is the file
// name or URL the bytes came from and is only used for its extension.
// Libraries used: github.com/ledongthuc/pdf.
func FromBytes(ctx context.Context, data []byte, name string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}

	ext := extension(name)
	switch ext {
	case "", ".pdf":
	default:
		return Document{Text: UnsupportedText, Format: strings.TrimPrefix(ext, "."), Supported: false}, nil
	}

	if !bytes.HasPrefix(data, pdfMagic) {
		return Document{}, fmt.Errorf("%w: missing %%PDF- signature (%d bytes)", ErrInvalidFormat, len(data))
	}

	text, pages, err := extractPDF(data)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return Document{Text: text, Format: FormatPDF, Supported: true, Pages: pages}, nil
}

func extractPDF(data []byte) (text string, pages int, err error) {
	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf reader panic: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, err
	}

	pages = reader.NumPage()
	fonts := make(map[string]*pdf.Font)
	parts := make([]string, 0, pages)
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		pageText, err := page.GetPlainText(fonts)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if trimmed := strings.TrimSpace(pageText); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n"), pages, nil
}

// extension returns the lowercase extension of a file name or URL path.
func extension(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	if u, err := url.Parse(name); err == nil && u.Scheme != "" {
		name = u.Path
	}
	return strings.ToLower(path.Ext(name))
}
