package model

// OutcomeKind represents the terminal result of one link task
type OutcomeKind string

const (
	// OutcomeSucceeded means a media file was produced and is ready to post
	OutcomeSucceeded OutcomeKind = "Succeeded"

	// OutcomePlaylistSkipped means the link resolved to a playlist and was
	// skipped without a download attempt
	OutcomePlaylistSkipped OutcomeKind = "PlaylistSkipped"

	// OutcomeUnsupported means the link does not point to extractable media
	OutcomeUnsupported OutcomeKind = "Unsupported"

	// OutcomeFormatUnavailable means the media exists but no encoding
	// satisfies the configured format selector
	OutcomeFormatUnavailable OutcomeKind = "FormatUnavailable"

	// OutcomeOtherFailure means any other engine failure, surfaced verbatim
	OutcomeOtherFailure OutcomeKind = "OtherFailure"
)

// String returns the string representation of OutcomeKind
func (k OutcomeKind) String() string {
	return string(k)
}

// IsFailure returns true if the outcome should be reported to someone
func (k OutcomeKind) IsFailure() bool {
	return k == OutcomeFormatUnavailable || k == OutcomeOtherFailure
}

// Outcome is the single terminal result of one LinkTask. Exactly one is
// produced per task; which fields are set depends on Kind.
type Outcome struct {
	Kind OutcomeKind

	// Succeeded
	FilePath string // path to the downloaded file, empty on anomaly with no file
	Title    string // fulltitle reported by the engine, may be empty

	// FormatUnavailable
	Err        error       // the classified engine error
	Formats    []RawFormat // raw format list from the follow-up query
	FormatsErr error       // set when the follow-up format listing itself failed

	// Anomaly carries a warning about produced-file bookkeeping (wrong file
	// count, missing file). Processing continues best-effort.
	Anomaly string
}
