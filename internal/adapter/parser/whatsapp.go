package parser

import (
	"archive/zip"
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joern1811/wanotebook/internal/adapter/media"
	"github.com/joern1811/wanotebook/internal/domain"
)

// DateOrder resolves ambiguous numeric dates like 01/02/24. WhatsApp
// exports carry no locale metadata, so the ordering is a configuration
// choice rather than something the parser can infer.
type DateOrder string

const (
	DayFirst   DateOrder = "day-first"
	MonthFirst DateOrder = "month-first"
)

// WhatsAppParser parses WhatsApp chat exports, either an export folder or
// the .zip straight from the app.
type WhatsAppParser struct {
	// DateOrder controls day/month interpretation of ambiguous dates.
	// Defaults to DayFirst.
	DateOrder DateOrder

	// TempDir holds the path to extracted zip contents (set after Parse
	// when the export was a .zip).
	TempDir string

	exportDir string
}

// Header variants, tried in priority order. Each captures (date, time,
// rest); sender extraction and attachment detection happen on rest.
//
// Covered shapes:
//   - iOS:        [DD.MM.YY, HH:MM:SS] Sender: Text  (also slash dates,
//     4-digit years, optional AM/PM)
//   - Android:    DD.MM.YY, HH:MM - Sender: Text  (also slash dates)
//   - ISO:        YYYY-MM-DD, HH:MM - Sender: Text
type headerVariant struct {
	name string
	re   *regexp.Regexp
}

var headerVariants = []headerVariant{
	{"ios-bracket", regexp.MustCompile(`^\[(\d{1,2}[./]\d{1,2}[./]\d{2,4}),\s*(\d{1,2}:\d{2}(?::\d{2})?(?: ?[APap][Mm])?)\]\s?(.*)$`)},
	{"android-dash", regexp.MustCompile(`^(\d{1,2}[./]\d{1,2}[./]\d{2,4}),\s*(\d{1,2}:\d{2}(?::\d{2})?(?: ?[APap][Mm])?) - (.*)$`)},
	{"iso-dash", regexp.MustCompile(`^(\d{4}-\d{1,2}-\d{1,2}),?\s*(\d{1,2}:\d{2}(?::\d{2})?) - (.*)$`)},
}

var (
	senderRe = regexp.MustCompile(`^([^:]+): (.*)$`)

	// Attachment markers
	// <Anhang: filename> / <attached: filename> / <Media omitted: filename>
	anhangRe = regexp.MustCompile(`^<(?:Anhang|attached|Media omitted):\s*(.+)>$`)
	// trailing (file attached) / (Datei angehängt)
	attachedRe = regexp.MustCompile(`\s*\((?:file attached|Datei angehängt)\)\s*$`)
)

func (p *WhatsAppParser) Parse(exportPath string) (*domain.Chat, error) {
	dir, err := p.locateExportDir(exportPath)
	if err != nil {
		return nil, err
	}
	p.exportDir = dir

	txtFile, err := findChatFile(dir)
	if err != nil {
		return nil, fmt.Errorf("finding chat file: %w", err)
	}

	messages, err := p.parseTextFile(txtFile)
	if err != nil {
		return nil, fmt.Errorf("parsing chat file: %w", err)
	}

	if err := resolveAttachments(messages, dir, filepath.Base(txtFile)); err != nil {
		return nil, err
	}

	return &domain.Chat{Messages: messages}, nil
}

// MediaDir returns the folder holding the export's media files.
func (p *WhatsAppParser) MediaDir() string {
	return p.exportDir
}

// Cleanup removes the temporary extraction directory, if any.
func (p *WhatsAppParser) Cleanup() {
	if p.TempDir != "" {
		_ = os.RemoveAll(p.TempDir)
	}
}

func (p *WhatsAppParser) locateExportDir(exportPath string) (string, error) {
	info, err := os.Stat(exportPath)
	if err != nil {
		return "", fmt.Errorf("reading export path: %w", err)
	}

	if info.IsDir() {
		return exportPath, nil
	}

	if strings.EqualFold(filepath.Ext(exportPath), ".zip") {
		tempDir, err := os.MkdirTemp("", "wanotebook-*")
		if err != nil {
			return "", fmt.Errorf("creating temp dir: %w", err)
		}
		p.TempDir = tempDir
		if err := extractZip(exportPath, tempDir); err != nil {
			return "", fmt.Errorf("extracting zip: %w", err)
		}
		return tempDir, nil
	}

	return "", fmt.Errorf("export path %s is neither a folder nor a .zip", exportPath)
}

// resolveAttachments looks every referenced filename up in a one-time
// index of the media folder. Missing files keep an empty Path and degrade
// to a reference notice at render time.
func resolveAttachments(messages []domain.Message, dir, chatFileName string) error {
	idx, err := media.NewIndex(dir, chatFileName)
	if err != nil {
		return err
	}
	for i := range messages {
		att := messages[i].Attachment
		if att == nil {
			continue
		}
		if path, ok := idx.Resolve(att.Filename); ok {
			att.Path = path
		}
	}
	return nil
}

// findChatFile picks the chat transcript: the largest .txt file in the
// export, since media-rich exports may contain attached .txt documents.
func findChatFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var best string
	var bestSize int64 = -1
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".txt") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.Size() > bestSize {
			best = filepath.Join(dir, e.Name())
			bestSize = info.Size()
		}
	}
	if best == "" {
		return "", fmt.Errorf("no .txt chat file found in export")
	}
	return best, nil
}

// stripInvisible removes Unicode control characters (LTR mark, zero-width
// spaces, etc.) and normalizes the narrow no-break space iOS puts before
// AM/PM to a plain space.
func stripInvisible(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\u200e' || r == '\u200f': // LTR / RTL mark
			return -1
		case r == '\u200b' || r == '\u200c' || r == '\u200d': // zero-width spaces
			return -1
		case r == '\ufeff': // BOM
			return -1
		case r == '\u00a0' || r == '\u202f': // (narrow) no-break space
			return ' '
		default:
			return r
		}
	}, s)
}

func (p *WhatsAppParser) parseTextFile(path string) ([]domain.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var messages []domain.Message
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := stripInvisible(scanner.Text())

		if msg, ok := p.parseMessageLine(line); ok {
			messages = append(messages, msg)
			continue
		}

		// Continuation: append to the previous message's body,
		// preserving the line break. Lines before the first header
		// start a synthetic senderless message at the zero time.
		if len(messages) == 0 {
			messages = append(messages, domain.Message{Body: line})
			continue
		}
		last := &messages[len(messages)-1]
		if last.Body == "" {
			last.Body = line
		} else {
			last.Body += "\n" + line
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return messages, nil
}

// parseMessageLine classifies a single line. It returns (message, true)
// when the line opens a new message; anything else is a continuation.
func (p *WhatsAppParser) parseMessageLine(line string) (domain.Message, bool) {
	ts, rest, ok := p.parseHeader(line)
	if !ok {
		return domain.Message{}, false
	}

	msg := domain.Message{Timestamp: ts}

	if m := senderRe.FindStringSubmatch(rest); m != nil {
		msg.Sender = m[1]
		body := m[2]
		if att, remaining := detectAttachment(body); att != nil {
			msg.Attachment = att
			msg.Body = remaining
		} else {
			msg.Body = body
		}
	} else {
		// System/event line: no sender, never an attachment.
		msg.Body = rest
	}

	return msg, true
}

// parseHeader tries each header variant in priority order and returns the
// first structural match with a valid timestamp. A matched shape with an
// invalid date (e.g. month 13 under both orderings) is not a header.
func (p *WhatsAppParser) parseHeader(line string) (time.Time, string, bool) {
	for _, v := range headerVariants {
		m := v.re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		ts, err := p.parseTimestamp(m[1], m[2])
		if err != nil {
			return time.Time{}, "", false
		}
		return ts, m[3], true
	}
	return time.Time{}, "", false
}

func (p *WhatsAppParser) parseTimestamp(datePart, timePart string) (time.Time, error) {
	year, month, day, err := p.parseDate(datePart)
	if err != nil {
		return time.Time{}, err
	}
	hour, min, sec, err := parseClock(timePart)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC), nil
}

func (p *WhatsAppParser) parseDate(s string) (year, month, day int, err error) {
	if strings.Contains(s, "-") {
		// ISO: unambiguous, ignores DateOrder
		parts := strings.Split(s, "-")
		year, _ = strconv.Atoi(parts[0])
		month, _ = strconv.Atoi(parts[1])
		day, _ = strconv.Atoi(parts[2])
		return validateDate(year, month, day)
	}

	sep := "/"
	if strings.Contains(s, ".") {
		sep = "."
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed date %q", s)
	}

	a, _ := strconv.Atoi(parts[0])
	b, _ := strconv.Atoi(parts[1])
	year, _ = strconv.Atoi(parts[2])
	if year < 100 {
		year += 2000
	}

	day, month = a, b
	if p.DateOrder == MonthFirst {
		day, month = b, a
	}
	// A field above 12 can only be the day; flip regardless of config.
	if month > 12 && day <= 12 {
		day, month = month, day
	}

	return validateDate(year, month, day)
}

func validateDate(year, month, day int) (int, int, int, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return 0, 0, 0, fmt.Errorf("invalid date %04d-%02d-%02d", year, month, day)
	}
	return year, month, day, nil
}

func parseClock(s string) (hour, min, sec int, err error) {
	s = strings.TrimSpace(s)

	meridiem := ""
	upper := strings.ToUpper(s)
	if strings.HasSuffix(upper, "AM") || strings.HasSuffix(upper, "PM") {
		meridiem = upper[len(upper)-2:]
		s = strings.TrimSpace(s[:len(s)-2])
	}

	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("malformed time %q", s)
	}
	hour, _ = strconv.Atoi(parts[0])
	min, _ = strconv.Atoi(parts[1])
	if len(parts) == 3 {
		sec, _ = strconv.Atoi(parts[2])
	}

	switch meridiem {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	}

	if hour > 23 || min > 59 || sec > 59 {
		return 0, 0, 0, fmt.Errorf("invalid time %q", s)
	}
	return hour, min, sec, nil
}

// detectAttachment checks whether a message body is an attachment marker.
// Only the marker line shapes count; a filename mentioned inside free text
// is not an attachment. Returns the media item and the remaining body text
// (empty for pure attachment messages).
func detectAttachment(body string) (*domain.MediaItem, string) {
	trimmed := strings.TrimSpace(body)

	// <attached: filename> and locale variants
	if m := anhangRe.FindStringSubmatch(trimmed); m != nil {
		return domain.NewMediaItem(strings.TrimSpace(m[1])), ""
	}

	// filename (file attached) and locale variants
	if cleaned := attachedRe.ReplaceAllString(trimmed, ""); cleaned != trimmed {
		return domain.NewMediaItem(strings.TrimSpace(cleaned)), ""
	}

	// Bare filename as the sole content, restricted to recognized media
	// extensions so ordinary dot-suffixed words don't false-positive.
	if trimmed != "" && !strings.ContainsAny(trimmed, " \t") {
		if domain.KnownMediaExtension(filepath.Ext(trimmed)) {
			return domain.NewMediaItem(trimmed), ""
		}
	}

	return nil, body
}

func extractZip(zipPath, destDir string) error {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		// Sanitize path to prevent zip slip (G305)
		name := filepath.Clean(f.Name)
		if strings.Contains(name, "..") {
			continue
		}
		destPath := filepath.Join(destDir, name)

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0o750); err != nil {
				return err
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(destPath), 0o750); err != nil {
			return err
		}

		if err := extractZipFile(f, destPath); err != nil {
			return err
		}
	}
	return nil
}

func extractZipFile(f *zip.File, destPath string) error {
	outFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer outFile.Close()

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	// Limit extraction size to 1 GB to prevent decompression bombs (G110)
	const maxSize = 1 << 30
	_, err = io.Copy(outFile, io.LimitReader(rc, maxSize))
	return err
}
