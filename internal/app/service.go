package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joern1811/wanotebook/internal/domain"
)

const ApplicationName = "wanotebook"

// Options controls one conversion run.
type Options struct {
	// From/To restrict the converted date range; nil means unbounded.
	From, To *time.Time
	// Transcribe enables Whisper transcription of resolved voice notes.
	Transcribe bool
}

// ConvertService orchestrates the conversion pipeline:
// parse → filter → transcribe → partition → render one file per month.
type ConvertService struct {
	parser      domain.ChatParser
	transcriber domain.Transcriber
	renderer    domain.GroupRenderer
}

func NewConvertService(parser domain.ChatParser, transcriber domain.Transcriber, renderer domain.GroupRenderer) *ConvertService {
	return &ConvertService{
		parser:      parser,
		transcriber: transcriber,
		renderer:    renderer,
	}
}

// Process converts one export into monthly documents under outputDir.
// Each month's file is independent: a write failure aborts the run but
// already-written months stay in place.
func (s *ConvertService) Process(ctx context.Context, exportPath, outputDir string, opts Options) error {
	chat, err := s.parser.Parse(exportPath)
	if err != nil {
		return fmt.Errorf("parsing export: %w", err)
	}

	if opts.From != nil || opts.To != nil {
		chat = chat.Filter(opts.From, opts.To)
	}

	s.logMissingMedia(chat)

	if opts.Transcribe && s.transcriber != nil {
		s.transcribeVoiceNotes(ctx, chat)
	}

	// Coalescing repeated keys keeps every message of a month in that
	// month's single file even when the export interleaves months.
	groups := domain.CoalesceByKey(domain.PartitionByMonth(chat.Messages))
	slog.Info("partitioned chat", "messages", len(chat.Messages), "months", len(groups))

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}

	for i := range groups {
		if err := s.writeGroup(outputDir, &groups[i]); err != nil {
			return err
		}
	}

	return nil
}

func (s *ConvertService) writeGroup(outputDir string, group *domain.MonthGroup) error {
	name := s.renderer.FileName(group.Key)
	path := filepath.Join(outputDir, name)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	defer f.Close()

	if err := s.renderer.Render(f, group); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}

	slog.Info("wrote month file", "file", name, "messages", len(group.Messages))
	return nil
}

// logMissingMedia reports referenced files absent from the export folder.
// Informational only: rendering degrades to a reference notice.
func (s *ConvertService) logMissingMedia(chat *domain.Chat) {
	for i := range chat.Messages {
		att := chat.Messages[i].Attachment
		if att != nil && !att.Found() {
			slog.Info("referenced media file not found", "file", att.Filename)
		}
	}
}

// transcribeVoiceNotes replaces the body of resolved voice-note messages
// with the Whisper transcript. Failures degrade to the plain notice.
func (s *ConvertService) transcribeVoiceNotes(ctx context.Context, chat *domain.Chat) {
	for i := range chat.Messages {
		msg := &chat.Messages[i]
		att := msg.Attachment
		if att == nil || att.Category != domain.CategoryAudio || !att.Found() {
			continue
		}

		text, err := s.transcriber.Transcribe(ctx, att.Path)
		if err != nil {
			slog.Warn("transcription failed", "file", att.Filename, "error", err)
			continue
		}
		msg.Body = text
	}
}
