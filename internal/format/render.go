package format

import (
	"fmt"
	"strings"
)

// Column widths for the fixed-width table
const (
	ResolutionWidth = 14
	BitrateWidth    = 9
	SizeWidth       = 8
)

// DefaultMaxLines caps the rendered table. One row is about 50 characters
// and the downstream message limit is 4096, so 80 rows fit with the
// caption on top. Only the trailing rows survive truncation: the list is
// sorted worst-to-best and the best options matter most.
const DefaultMaxLines = 80

// Placeholder strings for absent values
const (
	DashShort = "-"
	DashLong  = "---"
)

// Renderer renders a normalized format catalog as fixed-width text
type Renderer struct {
	MaxLines   int
	EscapeHTML bool // escape markup-significant characters in the output
}

// NewRenderer creates a renderer with the default line cap
func NewRenderer() *Renderer {
	return &Renderer{MaxLines: DefaultMaxLines}
}

// Render produces the table: a header row, an optional truncation marker,
// and one line per record. Records beyond MaxLines are dropped from the
// front, keeping the highest-quality trailing rows.
func (r *Renderer) Render(records []Record) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s %s %s %s\n",
		center("Resolution", ResolutionWidth),
		center("Bitrate", BitrateWidth),
		center("Size", SizeWidth),
		"Codecs"))

	maxLines := r.MaxLines
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	if len(records) > maxLines {
		b.WriteString(fmt.Sprintf("  <...over %d lines - truncated...>\n", maxLines))
		records = records[len(records)-maxLines:]
	}

	for _, rec := range records {
		b.WriteString(fmt.Sprintf("%-*s %-*s %*s %s\n",
			ResolutionWidth, resolutionColumn(rec),
			BitrateWidth, bitrateColumn(rec),
			SizeWidth, sizeColumn(rec),
			codecsColumn(rec)))
	}

	if r.EscapeHTML {
		return EscapeMarkup(b.String())
	}
	return b.String()
}

// resolutionColumn shows WxH with an fps suffix for video rows, or the
// audio sample rate for audio-only rows
func resolutionColumn(r Record) string {
	if r.VideoCodec != "" {
		fps := ""
		if r.FPS != nil {
			fps = fmt.Sprintf("%g", *r.FPS)
		}
		return fmt.Sprintf("%sx%sp%s", intOrDash(r.Width, DashShort), intOrDash(r.Height, DashShort), fps)
	}
	return intOrDash(r.SampleRate, DashLong)
}

// bitrateColumn shows video-bitrate:audio-bitrate truncated to integers
func bitrateColumn(r Record) string {
	return floatOrDash(r.VideoBR) + ":" + floatOrDash(r.Bitrate)
}

// sizeColumn shows parenthesized megabytes, or blank parentheses when the
// engine did not report a size
func sizeColumn(r Record) string {
	if r.FilesizeMB != nil && *r.FilesizeMB != 0 {
		return fmt.Sprintf("(%d MB)", *r.FilesizeMB)
	}
	return "(      )"
}

// codecsColumn shows video:audio codec families
func codecsColumn(r Record) string {
	video := r.VideoCodec
	if video == "" {
		video = DashLong
	}
	audio := r.AudioCodec
	if audio == "" {
		audio = DashLong
	}
	return video + ":" + audio
}

func intOrDash(v *int, dash string) string {
	if v == nil || *v == 0 {
		return dash
	}
	return fmt.Sprintf("%d", *v)
}

func floatOrDash(v *float64) string {
	if v == nil || *v == 0 {
		return DashLong
	}
	return fmt.Sprintf("%d", int(*v))
}

// center pads a string to width with spaces on both sides
func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	left := (width - len(s)) / 2
	right := width - len(s) - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// markupEscaper covers the characters the chat transport treats as HTML
// markup when a parse mode is set
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeMarkup escapes markup-significant characters so literal text
// survives transports that apply HTML rendering on top of it
func EscapeMarkup(s string) string {
	return markupEscaper.Replace(s)
}
