package renderer

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joern1811/wanotebook/internal/domain"
)

// MarkdownRenderer serializes one month group into a single markdown
// document suitable for NotebookLM upload: images embedded as base64 data
// URIs, everything else as reference notices.
type MarkdownRenderer struct{}

var mimeTypes = map[string]string{
	".jpg": "image/jpeg", ".jpeg": "image/jpeg",
	".png": "image/png", ".gif": "image/gif",
	".bmp": "image/bmp", ".webp": "image/webp",
}

func (r *MarkdownRenderer) FileName(key domain.MonthKey) string {
	if key.Unknown() {
		return "WhatsApp_Chat_Unknown_Date.md"
	}
	return fmt.Sprintf("WhatsApp_Chat_%s_%d.md", key.Month.String(), key.Year)
}

func (r *MarkdownRenderer) Render(w io.Writer, group *domain.MonthGroup) error {
	title := "Unknown Date"
	if !group.Key.Unknown() {
		title = fmt.Sprintf("%s %d", group.Key.Month.String(), group.Key.Year)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# WhatsApp Chat - %s\n\n", title)
	b.WriteString("*Generated from WhatsApp export*\n\n")
	fmt.Fprintf(&b, "**Period:** %s\n\n", title)
	b.WriteString("---\n\n")

	for i := range group.Messages {
		r.writeMessage(&b, &group.Messages[i])
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *MarkdownRenderer) writeMessage(b *strings.Builder, msg *domain.Message) {
	b.WriteString(messageHeader(msg))
	b.WriteString("\n\n")

	if msg.Body != "" {
		for _, line := range strings.Split(msg.Body, "\n") {
			b.WriteString(escapeMarkdown(line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if msg.Attachment != nil {
		b.WriteString(renderAttachment(msg.Attachment))
		b.WriteString("\n\n")
	}
}

func messageHeader(msg *domain.Message) string {
	ts := "*unknown date*"
	if !msg.Undated() {
		ts = msg.Timestamp.Format("02.01.2006 15:04:05")
	}

	if msg.System() {
		return fmt.Sprintf("*System* — %s", ts)
	}
	return fmt.Sprintf("**%s** — %s", escapeMarkdown(msg.Sender), ts)
}

func renderAttachment(att *domain.MediaItem) string {
	switch att.Policy {
	case domain.PolicyEmbed:
		return renderImage(att)
	case domain.PolicyReference:
		return fmt.Sprintf("**%s %s: %s** *(not uploaded)*",
			categoryIcon(att.Category), att.Category, att.Filename)
	default:
		return fmt.Sprintf("**📎 File: %s (unsupported format)**", att.Filename)
	}
}

// renderImage inlines the image as a base64 data URI. A missing or
// unreadable file degrades to a placeholder instead of failing the month.
func renderImage(att *domain.MediaItem) string {
	if !att.Found() {
		return fmt.Sprintf("![Image not found: %s]", att.Filename)
	}

	data, err := os.ReadFile(att.Path)
	if err != nil {
		return fmt.Sprintf("![Error loading image: %s]", att.Filename)
	}

	mime, ok := mimeTypes[strings.ToLower(filepath.Ext(att.Filename))]
	if !ok {
		mime = "image/jpeg"
	}
	encoded := base64.StdEncoding.EncodeToString(data)

	return fmt.Sprintf("![%s](data:%s;base64,%s)\n\n*Image: %s*",
		att.Filename, mime, encoded, att.Filename)
}

func categoryIcon(cat domain.MediaCategory) string {
	switch cat {
	case domain.CategoryVideo:
		return "🎥"
	case domain.CategoryAudio:
		return "🎵"
	case domain.CategoryDocument:
		return "📄"
	default:
		return "📎"
	}
}

// escapeMarkdown neutralizes characters that would break document
// structure when they appear in chat text.
func escapeMarkdown(s string) string {
	return strings.NewReplacer(
		"*", `\*`,
		"_", `\_`,
		"#", `\#`,
		"`", "\\`",
	).Replace(s)
}
