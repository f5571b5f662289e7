package engine

import "strings"

// Kind classifies an engine failure into a handling policy
type Kind string

const (
	// KindUnsupported means the URL does not point to extractable media.
	// These links are skipped silently.
	KindUnsupported Kind = "unsupported"

	// KindExtraction means extraction failed for a valid media link,
	// including "no format matches the selector". Triggers the
	// format-listing follow-up.
	KindExtraction Kind = "extraction"

	// KindOther covers everything else (network, I/O, engine internal).
	// Surfaced with its literal message.
	KindOther Kind = "other"
)

// Error is an engine failure with its classification already resolved
type Error struct {
	Kind    Kind
	Message string
}

// Error returns the literal engine error message
func (e *Error) Error() string {
	return e.Message
}

// unsupportedMarker is the message yt-dlp emits for URLs no extractor
// claims. It is a specialization of an extraction failure, so it must be
// matched before the generic extraction markers.
const unsupportedMarker = "Unsupported URL"

// extractionMarkers identify extraction-stage failures worth a format
// listing in response
var extractionMarkers = []string{
	"Requested format is not available",
	"No video formats found",
	"Unable to extract",
	"Video unavailable",
}

// classify maps raw engine output to a Kind. Matching order matters: the
// unsupported marker would also match as an extraction failure, so it is
// tested first and each message maps to exactly one kind.
func classify(output string) Kind {
	if strings.Contains(output, unsupportedMarker) {
		return KindUnsupported
	}
	for _, marker := range extractionMarkers {
		if strings.Contains(output, marker) {
			return KindExtraction
		}
	}
	return KindOther
}
