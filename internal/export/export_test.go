package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/prdchat/internal/domain"
)

func sampleDoc() Document {
	return Document{
		Title:       "Product Requirements Document",
		Profile:     map[string]string{"company_name": "Acme", "tech_stack": "Go, React"},
		Body:        "# Onboarding PRD\n\n## Goals\n- Faster **activation**",
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFromDraft(t *testing.T) {
	session := domain.NewDraftSession(map[string]string{"company_name": "Acme"})

	_, err := FromDraft(session, time.Now())
	assert.ErrorIs(t, err, ErrNothingToExport)

	session.Append("draft it", "# PRD")
	doc, err := FromDraft(session, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "# PRD", doc.Body)
	assert.Equal(t, "Acme", doc.Profile["company_name"])

	_, err = FromDraft(nil, time.Now())
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestMarkdownFormatter_FrontMatter(t *testing.T) {
	out, err := NewMarkdownFormatter().Format(sampleDoc())
	require.NoError(t, err)

	text := string(out)
	require.True(t, strings.HasPrefix(text, "---\n"))
	parts := strings.SplitN(text, "---\n", 3)
	require.Len(t, parts, 3)

	var meta frontMatter
	require.NoError(t, yaml.Unmarshal([]byte(parts[1]), &meta))
	assert.Equal(t, "Product Requirements Document", meta.Title)
	assert.Equal(t, "2026-03-01T12:00:00Z", meta.GeneratedAt)
	assert.Equal(t, "Acme", meta.Company["company_name"])

	assert.Contains(t, parts[2], "- **company_name**: Acme\n- **tech_stack**: Go, React")
	assert.Contains(t, parts[2], "## Goals")
}

func TestPDFFormatter_ProducesPDF(t *testing.T) {
	doc := sampleDoc()
	doc.Body += "\n\nCafé naïve résumé"

	out, err := NewPDFFormatter().Format(doc)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"))
}

func TestFactory_Create(t *testing.T) {
	f := NewFactory()

	md, err := f.Create(FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, ".md", md.FileExtension())

	pdf, err := f.Create("PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType())

	_, err = f.Create("docx")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFactory_WriteFile(t *testing.T) {
	dir := t.TempDir()
	f := NewFactory()

	mdPath := filepath.Join(dir, "prd.md")
	require.NoError(t, f.WriteFile(mdPath, sampleDoc()))
	data, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Onboarding PRD")

	pdfPath := filepath.Join(dir, "prd.pdf")
	require.NoError(t, f.WriteFile(pdfPath, sampleDoc()))

	err = f.WriteFile(filepath.Join(dir, "prd"), sampleDoc())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
