package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexanderramin/prdchat/internal/domain"
)

const defaultTitle = "Product Requirements Document"

var (
	// ErrUnsupportedFormat is returned for unknown export formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")

	// ErrNothingToExport is returned when the drafting chat has no reply yet.
	ErrNothingToExport = errors.New("no draft to export")
)

// Format names an export format.
type Format string

const (
	FormatMarkdown Format = "md"
	FormatPDF      Format = "pdf"
)

// Document is a PRD draft together with the company profile it was written for.
type Document struct {
	Title       string
	Profile     map[string]string
	Body        string
	GeneratedAt time.Time
}

// FromDraft builds a Document from the latest assistant reply of session.
func FromDraft(session *domain.DraftSession, now time.Time) (Document, error) {
	if session == nil {
		return Document{}, ErrNothingToExport
	}
	body, ok := session.LatestReply()
	if !ok || strings.TrimSpace(body) == "" {
		return Document{}, ErrNothingToExport
	}
	return Document{
		Title:       defaultTitle,
		Profile:     domain.CopyFields(session.Context),
		Body:        body,
		GeneratedAt: now.UTC(),
	}, nil
}

// Formatter renders a Document into a file format.
type Formatter interface {
	Format(doc Document) ([]byte, error)
	ContentType() string
	FileExtension() string
}

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(format Format) (Formatter, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatMarkdown, "markdown", "":
		return NewMarkdownFormatter(), nil
	case FormatPDF:
		return NewPDFFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// ForPath picks a formatter from the file extension of path.
func (f *Factory) ForPath(path string) (Formatter, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, path)
	}
	return f.Create(Format(ext))
}

// WriteFile renders doc in the format implied by path and writes it there.
func (f *Factory) WriteFile(path string, doc Document) error {
	formatter, err := f.ForPath(path)
	if err != nil {
		return err
	}
	data, err := formatter.Format(doc)
	if err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
