package app_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/joern1811/wanotebook/internal/adapter/parser"
	"github.com/joern1811/wanotebook/internal/adapter/renderer"
	"github.com/joern1811/wanotebook/internal/app"
)

func writeExport(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestProcessWritesOneFilePerMonth(t *testing.T) {
	chat := "[30/12/23, 10:00:00] Alice: last of december\n" +
		"[02/01/24, 09:00:00] Bob: first of january\n" +
		"[15/01/24, 14:33:00] Bob: IMG-20240115-WA0001.jpg (file attached)\n" +
		"[15/01/24, 14:34:00] Bob: video.mp4 (file attached)\n"

	exportDir := writeExport(t, map[string]string{
		"WhatsApp Chat with Bob.txt": chat,
		"IMG-20240115-WA0001.jpg":    "fake image bytes",
	})
	outputDir := filepath.Join(t.TempDir(), "out")

	svc := app.NewConvertService(&parser.WhatsAppParser{}, nil, &renderer.MarkdownRenderer{})
	if err := svc.Process(context.Background(), exportDir, outputDir, app.Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	dec := readOutput(t, outputDir, "WhatsApp_Chat_December_2023.md")
	jan := readOutput(t, outputDir, "WhatsApp_Chat_January_2024.md")

	if !strings.Contains(dec, "last of december") || strings.Contains(dec, "first of january") {
		t.Errorf("december file has wrong content:\n%s", dec)
	}
	if !strings.Contains(jan, "first of january") || strings.Contains(jan, "last of december") {
		t.Errorf("january file has wrong content:\n%s", jan)
	}

	// resolved image embedded, missing video degraded to a notice
	if !strings.Contains(jan, "data:image/jpeg;base64,") {
		t.Error("january file missing embedded image")
	}
	if !strings.Contains(jan, "🎥 Video: video.mp4") {
		t.Error("january file missing video reference notice")
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("got %d output files, want 2", len(entries))
	}
}

func TestProcessKeepsAllMessagesOfInterleavedMonths(t *testing.T) {
	chat := "[05/01/24, 10:00:00] Alice: first january run\n" +
		"[05/02/24, 10:00:00] Bob: february message\n" +
		"[06/01/24, 11:00:00] Alice: second january run\n"

	exportDir := writeExport(t, map[string]string{"chat.txt": chat})
	outputDir := filepath.Join(t.TempDir(), "out")

	svc := app.NewConvertService(&parser.WhatsAppParser{}, nil, &renderer.MarkdownRenderer{})
	if err := svc.Process(context.Background(), exportDir, outputDir, app.Options{}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d output files, want 2", len(entries))
	}

	jan := readOutput(t, outputDir, "WhatsApp_Chat_January_2024.md")
	first := strings.Index(jan, "first january run")
	second := strings.Index(jan, "second january run")
	if first < 0 {
		t.Error("first january run was lost")
	}
	if second < 0 {
		t.Error("second january run was lost")
	}
	if first >= 0 && second >= 0 && first > second {
		t.Error("january runs out of input order")
	}
	if strings.Contains(jan, "february message") {
		t.Error("february message leaked into the january file")
	}
}

func TestProcessAppliesDateFilter(t *testing.T) {
	chat := "[30/12/23, 10:00:00] Alice: december message\n" +
		"[02/01/24, 09:00:00] Bob: january message\n"

	exportDir := writeExport(t, map[string]string{"chat.txt": chat})
	outputDir := filepath.Join(t.TempDir(), "out")

	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := app.NewConvertService(&parser.WhatsAppParser{}, nil, &renderer.MarkdownRenderer{})
	if err := svc.Process(context.Background(), exportDir, outputDir, app.Options{From: &from}); err != nil {
		t.Fatalf("Process: %v", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "WhatsApp_Chat_January_2024.md" {
		t.Errorf("filtered run should produce only the january file, got %v", entries)
	}
}

func TestProcessMissingChatFileFails(t *testing.T) {
	exportDir := writeExport(t, map[string]string{"IMG-1.jpg": "not a transcript"})

	svc := app.NewConvertService(&parser.WhatsAppParser{}, nil, &renderer.MarkdownRenderer{})
	err := svc.Process(context.Background(), exportDir, t.TempDir(), app.Options{})
	if err == nil {
		t.Fatal("expected error for export without chat file")
	}
}

func readOutput(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("reading %s: %v", name, err)
	}
	return string(data)
}
