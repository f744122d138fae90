package renderer

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joern1811/wanotebook/internal/domain"
)

func renderToString(t *testing.T, r domain.GroupRenderer, group *domain.MonthGroup) string {
	t.Helper()
	var b strings.Builder
	if err := r.Render(&b, group); err != nil {
		t.Fatalf("Render: %v", err)
	}
	return b.String()
}

func TestMarkdownFileName(t *testing.T) {
	r := &MarkdownRenderer{}

	if got := r.FileName(domain.MonthKey{Year: 2024, Month: time.January}); got != "WhatsApp_Chat_January_2024.md" {
		t.Errorf("FileName = %q", got)
	}
	if got := r.FileName(domain.MonthKey{}); got != "WhatsApp_Chat_Unknown_Date.md" {
		t.Errorf("unknown FileName = %q", got)
	}
}

func TestRenderTextMessage(t *testing.T) {
	group := &domain.MonthGroup{
		Key: domain.MonthKey{Year: 2024, Month: time.January},
		Messages: []domain.Message{{
			Timestamp: time.Date(2024, 1, 15, 14, 32, 7, 0, time.UTC),
			Sender:    "Alice",
			Body:      "Hello!\nsecond line",
		}},
	}

	out := renderToString(t, &MarkdownRenderer{}, group)

	for _, want := range []string{
		"# WhatsApp Chat - January 2024",
		"**Period:** January 2024",
		"**Alice** — 15.01.2024 14:32:07",
		"Hello!\nsecond line\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRenderEmbedsImage(t *testing.T) {
	dir := t.TempDir()
	imgData := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 1, 2, 3}
	imgPath := filepath.Join(dir, "IMG-20240115-WA0001.png")
	if err := os.WriteFile(imgPath, imgData, 0o600); err != nil {
		t.Fatal(err)
	}

	group := &domain.MonthGroup{
		Key: domain.MonthKey{Year: 2024, Month: time.January},
		Messages: []domain.Message{{
			Timestamp: time.Date(2024, 1, 15, 14, 33, 0, 0, time.UTC),
			Sender:    "Bob",
			Attachment: &domain.MediaItem{
				Filename: "IMG-20240115-WA0001.png",
				Path:     imgPath,
				Category: domain.CategoryImage,
				Policy:   domain.PolicyEmbed,
			},
		}},
	}

	out := renderToString(t, &MarkdownRenderer{}, group)

	wantURI := "![IMG-20240115-WA0001.png](data:image/png;base64," + base64.StdEncoding.EncodeToString(imgData) + ")"
	if !strings.Contains(out, wantURI) {
		t.Errorf("output missing inline image data URI\n%s", out)
	}
	if !strings.Contains(out, "*Image: IMG-20240115-WA0001.png*") {
		t.Error("output missing image caption")
	}
}

func TestRenderMissingMediaDegrades(t *testing.T) {
	group := &domain.MonthGroup{
		Key: domain.MonthKey{Year: 2024, Month: time.January},
		Messages: []domain.Message{
			{
				Timestamp: time.Date(2024, 1, 15, 14, 34, 0, 0, time.UTC),
				Sender:    "Bob",
				Attachment: &domain.MediaItem{
					Filename: "video.mp4",
					Category: domain.CategoryVideo,
					Policy:   domain.PolicyReference,
				},
			},
			{
				Timestamp: time.Date(2024, 1, 15, 14, 35, 0, 0, time.UTC),
				Sender:    "Bob",
				Attachment: &domain.MediaItem{
					Filename: "missing.jpg",
					Category: domain.CategoryImage,
					Policy:   domain.PolicyEmbed,
				},
			},
			{
				Timestamp: time.Date(2024, 1, 15, 14, 36, 0, 0, time.UTC),
				Sender:    "Bob",
				Attachment: &domain.MediaItem{
					Filename: "archive.xyz",
					Category: domain.CategoryUnknown,
					Policy:   domain.PolicyUnsupported,
				},
			},
		},
	}

	out := renderToString(t, &MarkdownRenderer{}, group)

	if !strings.Contains(out, "🎥 Video: video.mp4") || !strings.Contains(out, "(not uploaded)") {
		t.Errorf("output missing video reference notice\n%s", out)
	}
	if !strings.Contains(out, "![Image not found: missing.jpg]") {
		t.Errorf("output missing placeholder for absent image\n%s", out)
	}
	if !strings.Contains(out, "📎 File: archive.xyz (unsupported format)") {
		t.Errorf("output missing unsupported notice\n%s", out)
	}
}

func TestRenderSystemAndUndatedMessages(t *testing.T) {
	group := &domain.MonthGroup{
		Messages: []domain.Message{
			{Body: "orphan line before first header"},
			{
				Timestamp: time.Date(2024, 1, 15, 14, 35, 0, 0, time.UTC),
				Body:      "Messages and calls are end-to-end encrypted.",
			},
		},
	}

	out := renderToString(t, &MarkdownRenderer{}, group)

	if !strings.Contains(out, "# WhatsApp Chat - Unknown Date") {
		t.Errorf("output missing unknown-date title\n%s", out)
	}
	if !strings.Contains(out, "*System* — *unknown date*") {
		t.Errorf("output missing neutral marker for undated system message\n%s", out)
	}
	if !strings.Contains(out, "*System* — 15.01.2024 14:35:00") {
		t.Errorf("output missing dated system header\n%s", out)
	}
}

func TestRenderEscapesMarkdown(t *testing.T) {
	group := &domain.MonthGroup{
		Key: domain.MonthKey{Year: 2024, Month: time.January},
		Messages: []domain.Message{{
			Timestamp: time.Date(2024, 1, 15, 14, 32, 0, 0, time.UTC),
			Sender:    "Alice",
			Body:      "# not a heading ```fence``` *stars* _under_",
		}},
	}

	out := renderToString(t, &MarkdownRenderer{}, group)

	for _, want := range []string{`\#`, "\\`", `\*stars\*`, `\_under\_`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing escaped %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "```") {
		t.Error("backtick fence survived escaping")
	}
}
