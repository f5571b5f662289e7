package bot

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/ytget/tg-mediabot/internal/config"
	"github.com/ytget/tg-mediabot/internal/engine"
	"github.com/ytget/tg-mediabot/internal/model"
)

// engineResult is one scripted engine answer
type engineResult struct {
	meta *model.Metadata
	err  error
}

// scriptedEngine answers per URL, for messages carrying several links
type scriptedEngine struct {
	probe    map[string]engineResult
	download map[string]engineResult
	list     map[string]engineResult
}

func (s *scriptedEngine) Probe(ctx context.Context, url, tmpl string) (*model.Metadata, error) {
	r := s.probe[url]
	return r.meta, r.err
}

func (s *scriptedEngine) Download(ctx context.Context, url, tmpl, proxy string) (*model.Metadata, error) {
	r := s.download[url]
	return r.meta, r.err
}

func (s *scriptedEngine) ListFormats(ctx context.Context, url, tmpl string) (*model.Metadata, error) {
	r := s.list[url]
	return r.meta, r.err
}

func newTestHandler(t *testing.T, eng MediaEngine, tr Transport) *Handler {
	t.Helper()
	orch := NewOrchestrator(eng, "", "", testLogger())
	disp := NewDispatcher(tr, 0, false, testLogger())
	return NewHandler(orch, disp, tr, regexp.MustCompile(config.DefaultLinkPattern), t.TempDir(), testLogger())
}

func TestHandleMessageWithoutLinks(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(t, &scriptedEngine{}, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: "just chatting"})

	if len(tr.calls) != 0 {
		t.Errorf("Expected no transport activity for a linkless message, got %v", tr.calls)
	}
}

func TestHandleMessagePlaylistLink(t *testing.T) {
	// Scenario: the only link resolves to a playlist
	url := "https://example.com/v1"
	eng := &scriptedEngine{
		probe: map[string]engineResult{
			url: {meta: &model.Metadata{Entries: []model.PlaylistEntry{{ID: "e1"}}}},
		},
	}
	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{
		ChatID: 1001, MessageID: 42,
		Text: "check this https://example.com/v1 out",
	})

	if len(tr.calls) != 0 {
		t.Errorf("A playlist is skipped quietly: no media, no messages, got %v", tr.calls)
	}
}

func TestHandleMessageSuccessThenUnsupported(t *testing.T) {
	// Scenario: two links, the first succeeds, the second is not media
	first := "https://example.com/ok"
	second := "https://example.com/nope"

	path := t.TempDir() + "/1001-42-1.mp4"
	if err := os.WriteFile(path, []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := &scriptedEngine{
		probe: map[string]engineResult{
			first:  {meta: &model.Metadata{}},
			second: {err: &engine.Error{Kind: engine.KindUnsupported, Message: "ERROR: Unsupported URL"}},
		},
		download: map[string]engineResult{
			first: {meta: &model.Metadata{
				Fulltitle:          "First Video",
				RequestedDownloads: []model.RequestedDownload{{Filepath: path}},
			}},
		},
	}
	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	text := "look: " + first + " and " + second
	h.HandleMessage(context.Background(), IncomingMessage{
		ChatID: 1001, MessageID: 42, Text: text, Username: "annie",
	})

	videos := tr.byMethod("SendVideo")
	if len(videos) != 1 {
		t.Fatalf("Expected exactly one posted video, got %d", len(videos))
	}

	caption := videos[0].text
	if !strings.Contains(caption, "<b>First Video</b>") {
		t.Errorf("Caption should carry the bold title, got %q", caption)
	}
	if !strings.Contains(caption, text) {
		t.Errorf("First video caption should repeat the original message, got %q", caption)
	}
	if !strings.Contains(caption, "@annie") {
		t.Errorf("Group captions tag the sender, got %q", caption)
	}

	if len(tr.byMethod("DeleteMessage")) != 1 {
		t.Error("The original message is deleted after a successful post")
	}

	// The unsupported second link produces no notification at all
	if n := len(tr.byMethod("Reply")) + len(tr.byMethod("SendText")); n != 0 {
		t.Errorf("Expected no notifications, got %d", n)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("The temp file must be removed after posting")
	}
}

func TestHandleMessageFollowUpCaptionIsBareLink(t *testing.T) {
	first := "https://example.com/a"
	second := "https://example.com/b"

	dir := t.TempDir()
	paths := map[string]string{first: dir + "/a.mp4", second: dir + "/b.mp4"}
	eng := &scriptedEngine{probe: map[string]engineResult{}, download: map[string]engineResult{}}
	for url, p := range paths {
		if err := os.WriteFile(p, []byte("v"), 0o644); err != nil {
			t.Fatal(err)
		}
		eng.probe[url] = engineResult{meta: &model.Metadata{}}
		eng.download[url] = engineResult{meta: &model.Metadata{
			RequestedDownloads: []model.RequestedDownload{{Filepath: p}},
		}}
	}

	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{
		ChatID: 1, MessageID: 2, Text: first + " " + second, Private: true,
	})

	videos := tr.byMethod("SendVideo")
	if len(videos) != 2 {
		t.Fatalf("Expected two posted videos, got %d", len(videos))
	}

	if !strings.Contains(videos[0].text, second) {
		// first caption repeats the whole message, which includes both links
		t.Errorf("First caption should carry the original message, got %q", videos[0].text)
	}
	if videos[1].text != second {
		t.Errorf("Follow-up caption should be the bare link, got %q", videos[1].text)
	}
}

func TestHandleMessageFormatUnavailable(t *testing.T) {
	// Scenario: a valid media link none of whose encodings satisfies the
	// selector; the user gets the error and the catalog of what exists
	url := "https://example.com/too-big"
	eng := &scriptedEngine{
		probe: map[string]engineResult{url: {meta: &model.Metadata{}}},
		download: map[string]engineResult{
			url: {err: &engine.Error{Kind: engine.KindExtraction, Message: "ERROR: Requested format is not available"}},
		},
		list: map[string]engineResult{
			url: {meta: &model.Metadata{Formats: []model.RawFormat{
				{VCodec: "avc1.64001F", Width: intp2(1920), Height: intp2(1080)},
				{ACodec: "opus", ABR: f64p2(160)},
			}}},
		},
	}
	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: url})

	replies := tr.byMethod("Reply")
	if len(replies) != 1 {
		t.Fatalf("Expected one error notification, got %d", len(replies))
	}
	if !strings.Contains(replies[0].text, "Requested format is not available") {
		t.Errorf("Expected the engine error text, got %q", replies[0].text)
	}
	if !strings.Contains(replies[0].text, url) {
		t.Errorf("Expected the offending URL, got %q", replies[0].text)
	}

	sends := tr.byMethod("SendText")
	if len(sends) != 1 {
		t.Fatalf("Expected the rendered table as a follow-up, got %d sends", len(sends))
	}
	table := sends[0].text
	if !strings.Contains(table, "Formats available:") {
		t.Errorf("Expected the format table, got %q", table)
	}
	if !strings.Contains(table, "1920x1080") || !strings.Contains(table, "avc1:---") {
		t.Errorf("Expected normalized rows in the table, got %q", table)
	}

	if len(tr.byMethod("DeleteMessage")) != 0 {
		t.Error("With zero successes the original message stays in place")
	}
}

func TestHandleMessageFormatListingFailed(t *testing.T) {
	url := "https://example.com/v"
	eng := &scriptedEngine{
		probe: map[string]engineResult{
			url: {err: &engine.Error{Kind: engine.KindExtraction, Message: "ERROR: Unable to extract"}},
		},
		list: map[string]engineResult{
			url: {err: &engine.Error{Kind: engine.KindOther, Message: "ERROR: timeout"}},
		},
	}
	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: url})

	replies := tr.byMethod("Reply")
	if len(replies) != 1 {
		t.Fatalf("Expected a single notification, got %v", tr.calls)
	}
	if !strings.Contains(replies[0].text, "Formats available: FAILED to extract!") {
		t.Errorf("Expected the listing-failure note, got %q", replies[0].text)
	}
	if len(tr.byMethod("SendText")) != 0 {
		t.Error("No table should be sent when listing failed")
	}
}

func TestHandleMessagePostingFailure(t *testing.T) {
	url := "https://example.com/v"
	path := t.TempDir() + "/v.mp4"
	if err := os.WriteFile(path, []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := &scriptedEngine{
		probe: map[string]engineResult{url: {meta: &model.Metadata{}}},
		download: map[string]engineResult{
			url: {meta: &model.Metadata{RequestedDownloads: []model.RequestedDownload{{Filepath: path}}}},
		},
	}
	tr := &fakeTransport{videoErrs: []error{errors.New("Request Entity Too Large")}}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: url})

	if len(tr.byMethod("Reply")) != 1 {
		t.Error("A posting failure is reported")
	}
	if len(tr.byMethod("DeleteMessage")) != 0 {
		t.Error("Nothing succeeded, so the original message stays")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("The temp file is removed even when posting fails")
	}
}

func TestHandleMessageDeleteFailureReported(t *testing.T) {
	url := "https://example.com/v"
	path := t.TempDir() + "/v.mp4"
	if err := os.WriteFile(path, []byte("v"), 0o644); err != nil {
		t.Fatal(err)
	}

	eng := &scriptedEngine{
		probe: map[string]engineResult{url: {meta: &model.Metadata{}}},
		download: map[string]engineResult{
			url: {meta: &model.Metadata{RequestedDownloads: []model.RequestedDownload{{Filepath: path}}}},
		},
	}
	tr := &fakeTransport{deleteErr: errors.New("not enough rights")}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: url})

	if len(tr.byMethod("DeleteMessage")) != 1 {
		t.Fatal("Expected a delete attempt")
	}
	replies := tr.byMethod("Reply")
	if len(replies) != 1 || !strings.Contains(replies[0].text, "not enough rights") {
		t.Errorf("Deletion failure should be reported, got %v", replies)
	}
}

func TestHandleMessageAnomalyReported(t *testing.T) {
	url := "https://example.com/v"
	eng := &scriptedEngine{
		probe:    map[string]engineResult{url: {meta: &model.Metadata{}}},
		download: map[string]engineResult{url: {meta: &model.Metadata{}}}, // zero produced files
	}
	tr := &fakeTransport{}
	h := newTestHandler(t, eng, tr)

	h.HandleMessage(context.Background(), IncomingMessage{ChatID: 1, MessageID: 2, Text: url})

	replies := tr.byMethod("Reply")
	if len(replies) != 1 || !strings.Contains(replies[0].text, "WARNING") {
		t.Errorf("Expected a warning notification, got %v", tr.calls)
	}
	if len(tr.byMethod("SendVideo")) != 0 {
		t.Error("Nothing to post when no file was produced")
	}
}

func TestWelcome(t *testing.T) {
	tr := &fakeTransport{}
	h := newTestHandler(t, &scriptedEngine{}, tr)

	h.Welcome(IncomingMessage{ChatID: 5, MessageID: 6})

	replies := tr.byMethod("Reply")
	if len(replies) != 1 {
		t.Fatalf("Expected one reply, got %v", tr.calls)
	}
	if replies[0].text != WelcomeText {
		t.Errorf("Expected the welcome text, got %q", replies[0].text)
	}
}

func intp2(v int) *int         { return &v }
func f64p2(v float64) *float64 { return &v }
