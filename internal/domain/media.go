package domain

import (
	"path/filepath"
	"strings"
)

// Extension table driving attachment classification. Images are the only
// category NotebookLM accepts inline, so everything else degrades to a
// textual reference.
var mediaExtensions = map[string]MediaCategory{
	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage,
	"gif": CategoryImage, "bmp": CategoryImage, "webp": CategoryImage,

	"mp4": CategoryVideo, "avi": CategoryVideo, "mov": CategoryVideo,
	"3gp": CategoryVideo, "mpeg": CategoryVideo,

	"mp3": CategoryAudio, "aac": CategoryAudio, "wav": CategoryAudio,
	"m4a": CategoryAudio, "ogg": CategoryAudio, "amr": CategoryAudio,
	"opus": CategoryAudio,

	"pdf": CategoryDocument, "txt": CategoryDocument, "md": CategoryDocument,
}

// ClassifyExtension maps a file extension (with or without leading dot) to
// its media category. Unknown extensions map to CategoryUnknown.
func ClassifyExtension(ext string) MediaCategory {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if cat, ok := mediaExtensions[ext]; ok {
		return cat
	}
	return CategoryUnknown
}

// PolicyFor returns the upload policy for a media category.
func PolicyFor(cat MediaCategory) MediaPolicy {
	switch cat {
	case CategoryImage:
		return PolicyEmbed
	case CategoryVideo, CategoryAudio, CategoryDocument:
		return PolicyReference
	default:
		return PolicyUnsupported
	}
}

// NewMediaItem builds an unresolved MediaItem from a referenced filename.
func NewMediaItem(filename string) *MediaItem {
	cat := ClassifyExtension(filepath.Ext(filename))
	return &MediaItem{
		Filename: filename,
		Category: cat,
		Policy:   PolicyFor(cat),
	}
}

// KnownMediaExtension reports whether ext belongs to one of the recognized
// media categories. Used to tell a bare attachment filename apart from
// ordinary text that merely ends in a dot-suffixed word.
func KnownMediaExtension(ext string) bool {
	return ClassifyExtension(ext) != CategoryUnknown
}
