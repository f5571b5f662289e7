package bot

import (
	"context"
	"io"
	"log/slog"

	"github.com/ytget/tg-mediabot/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEngine scripts the engine's answers. The first Download call gets
// the primary result, the second the retry result.
type fakeEngine struct {
	probeMeta    *model.Metadata
	probeErr     error
	downloadMeta *model.Metadata
	downloadErr  error
	retryMeta    *model.Metadata
	retryErr     error
	listMeta     *model.Metadata
	listErr      error

	downloadProxies []string
	listCalls       int
}

func (f *fakeEngine) Probe(ctx context.Context, url, tmpl string) (*model.Metadata, error) {
	return f.probeMeta, f.probeErr
}

func (f *fakeEngine) Download(ctx context.Context, url, tmpl, proxy string) (*model.Metadata, error) {
	f.downloadProxies = append(f.downloadProxies, proxy)
	if len(f.downloadProxies) == 1 {
		return f.downloadMeta, f.downloadErr
	}
	return f.retryMeta, f.retryErr
}

func (f *fakeEngine) ListFormats(ctx context.Context, url, tmpl string) (*model.Metadata, error) {
	f.listCalls++
	return f.listMeta, f.listErr
}

// transportCall records one Transport invocation
type transportCall struct {
	method    string
	chatID    int64
	messageID int
	text      string
	parseMode string
	filePath  string
}

// fakeTransport records calls and fails on demand. Errors in sendErrs and
// videoErrs are consumed in order; nil means success.
type fakeTransport struct {
	calls     []transportCall
	sendErrs  []error
	videoErrs []error
	deleteErr error
}

func (f *fakeTransport) popErr(errs *[]error) error {
	if len(*errs) == 0 {
		return nil
	}
	err := (*errs)[0]
	*errs = (*errs)[1:]
	return err
}

func (f *fakeTransport) SendText(chatID int64, text, parseMode string) error {
	f.calls = append(f.calls, transportCall{method: "SendText", chatID: chatID, text: text, parseMode: parseMode})
	return f.popErr(&f.sendErrs)
}

func (f *fakeTransport) Reply(chatID int64, messageID int, text string) error {
	f.calls = append(f.calls, transportCall{method: "Reply", chatID: chatID, messageID: messageID, text: text})
	return f.popErr(&f.sendErrs)
}

func (f *fakeTransport) SendVideo(chatID int64, filePath, caption, parseMode string) error {
	f.calls = append(f.calls, transportCall{method: "SendVideo", chatID: chatID, filePath: filePath, text: caption, parseMode: parseMode})
	return f.popErr(&f.videoErrs)
}

func (f *fakeTransport) DeleteMessage(chatID int64, messageID int) error {
	f.calls = append(f.calls, transportCall{method: "DeleteMessage", chatID: chatID, messageID: messageID})
	return f.deleteErr
}

// byMethod filters recorded calls
func (f *fakeTransport) byMethod(method string) []transportCall {
	var out []transportCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}
