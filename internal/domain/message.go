package domain

import "time"

// MediaCategory classifies an attachment by its file extension.
type MediaCategory int

const (
	CategoryImage MediaCategory = iota
	CategoryVideo
	CategoryAudio
	CategoryDocument
	CategoryUnknown
)

func (c MediaCategory) String() string {
	switch c {
	case CategoryImage:
		return "Image"
	case CategoryVideo:
		return "Video"
	case CategoryAudio:
		return "Audio"
	case CategoryDocument:
		return "Document"
	default:
		return "File"
	}
}

// MediaPolicy decides how an attachment appears in the output document.
type MediaPolicy int

const (
	// PolicyEmbed inlines the file content (images, as base64 data URIs).
	PolicyEmbed MediaPolicy = iota
	// PolicyReference names the file in the text without embedding it.
	PolicyReference
	// PolicyUnsupported gets a generic reference-style notice.
	PolicyUnsupported
)

// MediaItem is an attachment reference extracted from a message body.
type MediaItem struct {
	Filename string
	Path     string // full path in the export folder; empty if the file is missing
	Category MediaCategory
	Policy   MediaPolicy
}

// Found reports whether the referenced file exists in the export folder.
func (m *MediaItem) Found() bool {
	return m.Path != ""
}

type Message struct {
	Timestamp  time.Time
	Sender     string // empty for system/event messages
	Body       string // message lines joined with "\n"; empty for pure attachment messages
	Attachment *MediaItem
}

// System reports whether the message has no sender (WhatsApp event lines
// like "Messages and calls are end-to-end encrypted").
func (m *Message) System() bool {
	return m.Sender == ""
}

// Undated reports whether the message carries no usable timestamp. This
// happens only for continuation lines appearing before the first header.
func (m *Message) Undated() bool {
	return m.Timestamp.IsZero()
}
