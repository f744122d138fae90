package renderer

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/joern1811/wanotebook/internal/domain"
)

// HTMLRenderer renders a month group as a standalone HTML preview by
// converting the markdown document through goldmark. Useful for checking
// what a month looks like before uploading the markdown files.
type HTMLRenderer struct {
	markdown MarkdownRenderer
	engine   goldmark.Markdown
}

func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{
		// Raw HTML stays disabled: chat bodies are untrusted and the
		// generated markdown never needs HTML passthrough.
		engine: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

func (r *HTMLRenderer) FileName(key domain.MonthKey) string {
	return strings.TrimSuffix(r.markdown.FileName(key), ".md") + ".html"
}

func (r *HTMLRenderer) Render(w io.Writer, group *domain.MonthGroup) error {
	var md bytes.Buffer
	if err := r.markdown.Render(&md, group); err != nil {
		return err
	}

	var body bytes.Buffer
	if err := r.engine.Convert(md.Bytes(), &body); err != nil {
		return fmt.Errorf("converting markdown to HTML: %w", err)
	}

	title := "Unknown Date"
	if !group.Key.Unknown() {
		title = fmt.Sprintf("%s %d", group.Key.Month.String(), group.Key.Year)
	}

	if _, err := fmt.Fprintf(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>WhatsApp Chat - %s</title>\n</head>\n<body>\n", title); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	_, err := io.WriteString(w, "</body>\n</html>\n")
	return err
}
