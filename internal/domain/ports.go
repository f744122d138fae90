package domain

import (
	"context"
	"io"
)

// ChatParser parses a WhatsApp export (folder or .zip) into a Chat.
type ChatParser interface {
	Parse(exportPath string) (*Chat, error)
	// MediaDir returns the folder holding the export's media files,
	// valid after Parse.
	MediaDir() string
}

// Transcriber transcribes an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// GroupRenderer renders one month group into a complete output document.
type GroupRenderer interface {
	Render(w io.Writer, group *MonthGroup) error
	// FileName returns the deterministic output name for a month key.
	FileName(key MonthKey) string
}
