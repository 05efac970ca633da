package export

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/alexanderramin/prdchat/internal/domain"
)

const (
	markdownContentType   = "text/markdown; charset=utf-8"
	markdownFileExtension = ".md"
)

// frontMatter is the YAML header of an exported Markdown file.
type frontMatter struct {
	Title       string            `yaml:"title"`
	GeneratedAt string            `yaml:"generated_at"`
	Company     map[string]string `yaml:"company,omitempty"`
}

type MarkdownFormatter struct{}

func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

func (mf *MarkdownFormatter) Format(doc Document) ([]byte, error) {
	meta, err := yaml.Marshal(frontMatter{
		Title:       doc.Title,
		GeneratedAt: doc.GeneratedAt.Format(time.RFC3339),
		Company:     doc.Profile,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal front matter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(meta)
	buf.WriteString("---\n\n")
	fmt.Fprintf(&buf, "# %s\n\n", doc.Title)

	if len(doc.Profile) > 0 {
		buf.WriteString("## Company profile\n\n")
		for _, k := range domain.SortedKeys(doc.Profile) {
			fmt.Fprintf(&buf, "- **%s**: %s\n", k, doc.Profile[k])
		}
		buf.WriteString("\n")
	}

	buf.WriteString(doc.Body)
	buf.WriteString("\n")
	return buf.Bytes(), nil
}

func (mf *MarkdownFormatter) ContentType() string {
	return markdownContentType
}

func (mf *MarkdownFormatter) FileExtension() string {
	return markdownFileExtension
}
