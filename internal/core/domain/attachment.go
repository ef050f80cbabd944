package domain

import (
	"regexp"
	"strings"
)

// Category is the closed classification of an attachment. It is derived
// locally from Attachment.Type and Attachment.Name and never stored remotely.
type Category int

const (
	// CategoryOther is the default for unrecognised attachments.
	CategoryOther Category = iota

	// CategoryMedia covers audio and video source files.
	CategoryMedia

	// CategoryTranscript covers transcription documents.
	CategoryTranscript

	// CategoryCaption covers caption/subtitle files.
	CategoryCaption
)

// String returns the lower-case category name.
func (c Category) String() string {
	switch c {
	case CategoryMedia:
		return "media"
	case CategoryTranscript:
		return "transcript"
	case CategoryCaption:
		return "caption"
	default:
		return "other"
	}
}

// Dir returns the export subdirectory for the category. Captions share the
// transcripts directory; classification affects format preference, not
// placement.
func (c Category) Dir() string {
	switch c {
	case CategoryMedia:
		return "media"
	case CategoryTranscript, CategoryCaption:
		return "transcripts"
	default:
		return "other"
	}
}

// Format is a requested content transfer format. The empty value means
// "server default" (no format suffix on the content endpoint).
type Format string

// Known transfer formats.
const (
	FormatNone Format = ""
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
	FormatSRT  Format = "srt"
)

// Classification keyword sets, checked against the lower-cased type and
// name fields in priority order.
var (
	transcriptKeywords = []string{"transcript", "transcription", "txt", "json", "docx"}
	captionKeywords    = []string{"caption", "srt", "vtt", "subtitle"}
	mediaKeywords      = []string{"media", "audio", "video", "mp3", "mp4", "wav", "m4a", "mov", "avi"}
)

// Classify maps an attachment to exactly one Category. It reads only the
// documented Type and Name fields and is total: unknown inputs yield
// CategoryOther, never an error.
func Classify(att Attachment) Category {
	attType := strings.ToLower(att.Type)
	name := strings.ToLower(att.Name)

	match := func(keywords []string) bool {
		for _, kw := range keywords {
			if strings.Contains(attType, kw) || strings.Contains(name, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case match(transcriptKeywords):
		return CategoryTranscript
	case match(captionKeywords):
		return CategoryCaption
	case match(mediaKeywords):
		return CategoryMedia
	default:
		return CategoryOther
	}
}

// PreferredFormats returns the transfer formats to request for a category,
// in preference order. Empty means the server default endpoint is used.
func PreferredFormats(c Category) []Format {
	switch c {
	case CategoryTranscript:
		return []Format{FormatJSON, FormatTXT}
	case CategoryCaption:
		return []Format{FormatSRT}
	default:
		return nil
	}
}

// nameExtRegex extracts a trailing extension from an attachment name.
var nameExtRegex = regexp.MustCompile(`(?i)\.([a-z0-9]+)$`)

// ResolveExtension determines the stored file extension (with leading dot).
// A requested format is authoritative even when the name implies a different
// native extension: a transcript named call.docx fetched as JSON is stored
// with a .json extension appended to the sanitised name. No content sniffing.
func ResolveExtension(att Attachment, c Category, format Format) string {
	if format != FormatNone {
		return "." + string(format)
	}

	if m := nameExtRegex.FindStringSubmatch(att.Name); m != nil {
		return "." + strings.ToLower(m[1])
	}

	switch c {
	case CategoryTranscript:
		return ".txt"
	case CategoryCaption:
		return ".srt"
	case CategoryMedia:
		return ".mp3"
	default:
		return ".bin"
	}
}

// unsafeFilenameChars are removed from attachment names before they join a
// filesystem path.
var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// maxFilenameLength bounds the sanitised name component.
const maxFilenameLength = 200

// SanitizeFilename makes an untrusted attachment name safe to use as a path
// component. Deterministic: the same input always yields the same output,
// which the on-disk naming scheme relies on.
func SanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, " .")
	if len(name) > maxFilenameLength {
		name = name[:maxFilenameLength]
	}
	if name == "" {
		return "attachment"
	}
	return name
}

// AttachmentFilename derives the deterministic stored filename for an
// attachment: <id>_<sanitised-name><ext>. File identity is derivable from
// metadata alone, without consulting the index, so an export tree survives
// index loss.
func AttachmentFilename(att Attachment, ext string) string {
	return att.ID + "_" + SanitizeFilename(att.Name) + ext
}
