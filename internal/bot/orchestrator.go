package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ytget/tg-mediabot/internal/engine"
	"github.com/ytget/tg-mediabot/internal/model"
)

// Orchestrator drives the probe → download → retry → classify sequence
// for one link task and produces exactly one Outcome per task
type Orchestrator struct {
	engine        MediaEngine
	primaryProxy  string
	fallbackProxy string
	log           *slog.Logger
}

// NewOrchestrator creates an orchestrator using the given transports.
// The fallback proxy is tried exactly once after a failed download; it
// may be empty, which retries over a direct connection.
func NewOrchestrator(eng MediaEngine, primaryProxy, fallbackProxy string, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		engine:        eng,
		primaryProxy:  primaryProxy,
		fallbackProxy: fallbackProxy,
		log:           log,
	}
}

// Process resolves one link task to its terminal outcome. Engine-internal
// transient errors (fragments, rate limits) are retried by the engine
// itself; this level retries only the transport dimension, once, and only
// after a failed download, never after a failed probe.
func (o *Orchestrator) Process(ctx context.Context, task *model.LinkTask) model.Outcome {
	o.log.Debug("probing link", "task", task.ID, "url", task.URL)

	meta, err := o.engine.Probe(ctx, task.URL, task.OutputTemplate)
	if err == nil {
		// Downloading a playlist non-flatly fails with per-entry errors
		// that must never reach the user as a generic failure, so
		// playlists are skipped before any download attempt.
		if meta.IsPlaylist() {
			o.log.Debug("link is a playlist, skipping", "task", task.ID)
			return model.Outcome{Kind: model.OutcomePlaylistSkipped}
		}

		meta, err = o.download(ctx, task)
	}

	if err != nil {
		return o.classified(ctx, task, err)
	}
	return o.succeeded(task, meta)
}

// download attempts the primary transport, then retries once over the
// fallback transport. When the retry fails too, the retry's error is the
// one that gets classified.
func (o *Orchestrator) download(ctx context.Context, task *model.LinkTask) (*model.Metadata, error) {
	o.log.Debug("downloading", "task", task.ID)

	meta, err := o.engine.Download(ctx, task.URL, task.OutputTemplate, o.primaryProxy)
	if err == nil {
		return meta, nil
	}

	o.log.Debug("download failed, retrying over fallback transport", "task", task.ID, "error", err)
	return o.engine.Download(ctx, task.URL, task.OutputTemplate, o.fallbackProxy)
}

// classified maps the final engine error to a terminal outcome. An
// extraction failure triggers the format-listing follow-up so the user
// sees what encodings actually exist.
func (o *Orchestrator) classified(ctx context.Context, task *model.LinkTask, err error) model.Outcome {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		switch engErr.Kind {
		case engine.KindUnsupported:
			// Not a media link, move on quietly
			return model.Outcome{Kind: model.OutcomeUnsupported}

		case engine.KindExtraction:
			out := model.Outcome{Kind: model.OutcomeFormatUnavailable, Err: err}
			meta, listErr := o.engine.ListFormats(ctx, task.URL, task.OutputTemplate)
			if listErr != nil {
				out.FormatsErr = listErr
			} else {
				out.Formats = meta.Formats
			}
			return out
		}
	}
	return model.Outcome{Kind: model.OutcomeOtherFailure, Err: err}
}

// succeeded validates the produced-file bookkeeping. A wrong descriptor
// count or a missing file is a warning, not a failure: whatever file is
// available is still used.
func (o *Orchestrator) succeeded(task *model.LinkTask, meta *model.Metadata) model.Outcome {
	out := model.Outcome{Kind: model.OutcomeSucceeded, Title: meta.Fulltitle}

	files := meta.RequestedDownloads
	if len(files) != 1 {
		out.Anomaly = fmt.Sprintf("WARNING: Got %d downloaded files for some reason!", len(files))
	}
	if len(files) == 0 {
		return out
	}

	out.FilePath = files[0].Filepath
	if _, err := os.Stat(out.FilePath); err != nil {
		out.Anomaly = fmt.Sprintf("WARNING: File not found: %s", out.FilePath)
		out.FilePath = ""
	}
	return out
}
