package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/tg-mediabot/internal/model"
)

// Engine retry defaults. Fragment-level retries are the engine's own
// concern; the orchestrator never retries them itself.
const (
	DefaultRetries             = 10
	DefaultFragmentRetries     = 10
	DefaultConcurrentFragments = 10
)

// DefaultSubtitleLang is embedded into downloads when available
const DefaultSubtitleLang = "en"

// FormatSortOrder prefers widely playable codecs over exotic ones
const FormatSortOrder = "codec:h265:h264:h263,acodec:aac:opus:mp3,ext:m4a"

// Options is the load-time-fixed engine configuration
type Options struct {
	Format      string // declarative format selector expression
	Proxy       string // primary transport, empty for direct
	MaxFilesize int64  // bytes, candidates above this are rejected outright
}

// Engine invokes yt-dlp for probing, downloading and format listing
type Engine struct {
	opts Options
}

// New creates an engine with the given options
func New(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Install ensures the yt-dlp binary is available, downloading it on first
// run if necessary
func Install(ctx context.Context) {
	ytdlp.MustInstall(ctx, nil)
}

// Probe runs a flat, download-free query to cheaply detect playlists.
// Flat extraction does not resolve playlist entries individually, so a
// playlist of deleted videos still probes cleanly.
func (e *Engine) Probe(ctx context.Context, url, outputTemplate string) (*model.Metadata, error) {
	// The format selector stays applied: a probe can already fail with
	// "requested format not available", which is a valid classified outcome
	cmd := e.base(outputTemplate, e.opts.Proxy, e.opts.Format).
		FlatPlaylist().
		SkipDownload()

	return e.run(ctx, cmd, url)
}

// Download runs a full non-flat download using the given proxy as the
// network transport. An empty proxy means a direct connection.
func (e *Engine) Download(ctx context.Context, url, outputTemplate, proxy string) (*model.Metadata, error) {
	cmd := e.base(outputTemplate, proxy, e.opts.Format).
		NoSimulate().
		ForceOverwrites().
		WriteSubs().
		SubLangs(DefaultSubtitleLang).
		EmbedSubs().
		EmbedMetadata()

	if e.opts.MaxFilesize > 0 {
		cmd = cmd.MaxFileSize(strconv.FormatInt(e.opts.MaxFilesize, 10))
	}

	return e.run(ctx, cmd, url)
}

// ListFormats runs a non-flat, download-free query whose metadata carries
// the full format catalog for rendering. The configured selector is NOT
// applied here: this query runs precisely because nothing satisfied it.
func (e *Engine) ListFormats(ctx context.Context, url, outputTemplate string) (*model.Metadata, error) {
	cmd := e.base(outputTemplate, e.opts.Proxy, "").
		SkipDownload()

	return e.run(ctx, cmd, url)
}

// base builds the command options shared by every invocation
func (e *Engine) base(outputTemplate, proxy, format string) *ytdlp.Command {
	cmd := ytdlp.New().
		DumpSingleJSON().
		Output(outputTemplate).
		FormatSort(FormatSortOrder).
		Retries(strconv.Itoa(DefaultRetries)).
		FragmentRetries(strconv.Itoa(DefaultFragmentRetries)).
		ConcurrentFragments(DefaultConcurrentFragments)

	if format != "" {
		cmd = cmd.Format(format)
	}
	if proxy != "" {
		cmd = cmd.Proxy(proxy)
	}
	return cmd
}

// run executes the command for one URL and parses the single-JSON dump.
// Failures come back as *Error with the classification resolved from the
// engine's own output.
func (e *Engine) run(ctx context.Context, cmd *ytdlp.Command, url string) (*model.Metadata, error) {
	res, err := cmd.Run(ctx, url)
	if err != nil {
		output := err.Error()
		if res != nil && res.Stderr != "" {
			output = res.Stderr
		}
		return nil, &Error{Kind: classify(output), Message: errorLine(output)}
	}

	var meta model.Metadata
	if err := json.Unmarshal([]byte(res.Stdout), &meta); err != nil {
		return nil, &Error{Kind: KindOther, Message: fmt.Sprintf("cannot parse engine metadata: %v", err)}
	}
	return &meta, nil
}

// errorLine extracts the last ERROR line from engine output, which is the
// message a human wants to see; full output is kept only when no such
// line exists
func errorLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], "ERROR:") {
			return strings.TrimSpace(lines[i])
		}
	}
	return strings.TrimSpace(output)
}
