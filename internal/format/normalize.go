package format

import (
	"sort"
	"strings"

	"github.com/ytget/tg-mediabot/internal/model"
)

// Size conversion constants
const (
	BytesPerMB = 1048576
)

// Codec sentinel used by the engine for "no stream of this kind"
const (
	CodecNone = "none"
)

// Record is the normalized view of one encoding option. Pointer fields
// are nil when the engine did not report a value.
type Record struct {
	FilesizeMB *int64   // whole megabytes, floor of the raw byte count
	Width      *int
	Height     *int
	FPS        *float64
	VideoCodec string // codec family, empty when absent
	AudioCodec string // codec family, empty when absent
	SampleRate *int
	Bitrate    *float64 // audio bitrate, falls back to total bitrate
	VideoBR    *float64
}

// Normalize converts raw engine format descriptors into a clean, sorted
// catalog. Records that carry neither a video nor an audio codec are
// dropped; they tell the reader nothing.
func Normalize(raw []model.RawFormat) []Record {
	result := make([]Record, 0, len(raw))

	for _, f := range raw {
		video := normalizeCodec(f.VCodec)
		audio := normalizeCodec(f.ACodec)
		if video == "" && audio == "" {
			continue
		}

		bitrate := f.ABR
		if bitrate == nil {
			bitrate = f.TBR
		}

		r := Record{
			Width:      f.Width,
			Height:     f.Height,
			FPS:        f.FPS,
			VideoCodec: video,
			AudioCodec: audio,
			SampleRate: f.SampleRate,
			Bitrate:    bitrate,
			VideoBR:    f.VBR,
		}
		if f.Filesize != nil {
			mb := *f.Filesize / BytesPerMB
			r.FilesizeMB = &mb
		}

		result = append(result, r)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return less(result[i].sortKey(), result[j].sortKey())
	})

	return result
}

// normalizeCodec maps the "none" sentinel to absent and collapses a
// detailed codec tag to its family (drops everything after the first dot)
func normalizeCodec(codec string) string {
	if codec == "" || codec == CodecNone {
		return ""
	}
	if idx := strings.Index(codec, "."); idx >= 0 {
		return codec[:idx]
	}
	return codec
}

// sortKey orders worst options first: video records by the larger screen
// dimension, then fps, then video bitrate; audio-only records by bitrate.
// Absent values compare as the lowest possible value.
func (r Record) sortKey() [3]float64 {
	if r.VideoCodec != "" {
		return [3]float64{
			max(floatOfInt(r.Width), floatOfInt(r.Height)),
			floatOf(r.FPS),
			floatOf(r.VideoBR),
		}
	}
	return [3]float64{floatOf(r.Bitrate), 0, floatOf(r.Bitrate)}
}

func less(a, b [3]float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func floatOf(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func floatOfInt(v *int) float64 {
	if v == nil {
		return 0
	}
	return float64(*v)
}
