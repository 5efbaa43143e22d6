package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/botwire/botwire/internal/botapi"
	"github.com/botwire/botwire/internal/wire"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// apiRecorder is a fake Bot API server that records every call and answers
// from a per-method table.
type apiRecorder struct {
	mu      sync.Mutex
	calls   []apiCall
	replies map[string]string // method -> raw response body
}

type apiCall struct {
	Method string // Bot API method name
	Body   string
}

func (r *apiRecorder) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		t.Helper()
		body, _ := io.ReadAll(req.Body)
		method := req.URL.Path[strings.LastIndex(req.URL.Path, "/")+1:]

		r.mu.Lock()
		r.calls = append(r.calls, apiCall{Method: method, Body: string(body)})
		reply, ok := r.replies[method]
		r.mu.Unlock()

		if !ok {
			reply = `{"ok":true,"result":true}`
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reply))
	}
}

func (r *apiRecorder) recorded() []apiCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]apiCall(nil), r.calls...)
}

func newTestBot(t *testing.T, rec *apiRecorder, opts Options) *Bot {
	t.Helper()
	srv := httptest.NewServer(rec.handler(t))
	t.Cleanup(srv.Close)
	client := botapi.NewClient("TOKEN", srv.URL, nil)
	return New(client, discardLogger(), opts)
}

func TestEvaluateNothingIsSilent(t *testing.T) {
	rec := &apiRecorder{}
	b := newTestBot(t, rec, Options{})

	if err := b.Evaluate(context.Background(), Nothing{}); err != nil {
		t.Fatalf("Evaluate(Nothing) error: %v", err)
	}
	if calls := rec.recorded(); len(calls) != 0 {
		t.Errorf("Nothing issued %d calls, want 0", len(calls))
	}
}

func TestEvaluateChainNothingEquivalence(t *testing.T) {
	// Chain(Nothing, a) must evaluate identically to a alone.
	run := func(a Action) []apiCall {
		rec := &apiRecorder{}
		b := newTestBot(t, rec, Options{})
		if err := b.Evaluate(context.Background(), a); err != nil {
			t.Fatalf("Evaluate() error: %v", err)
		}
		return rec.recorded()
	}

	plain := run(SendMessage{ChatID: 42, Text: "pong"})
	chained := run(Chain{First: Nothing{}, Second: SendMessage{ChatID: 42, Text: "pong"}})

	if len(plain) != 1 || len(chained) != 1 {
		t.Fatalf("calls = %d and %d, want 1 and 1", len(plain), len(chained))
	}
	if plain[0] != chained[0] {
		t.Errorf("chained call %+v differs from plain call %+v", chained[0], plain[0])
	}
}

func TestEvaluateChainOrder(t *testing.T) {
	rec := &apiRecorder{}
	b := newTestBot(t, rec, Options{})

	action := Chain{
		First:  SendChatAction{ChatID: 1, Action: "typing"},
		Second: SendMessage{ChatID: 1, Text: "done"},
	}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	calls := rec.recorded()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if calls[0].Method != "sendChatAction" || calls[1].Method != "sendMessage" {
		t.Errorf("order = %s, %s; want sendChatAction, sendMessage", calls[0].Method, calls[1].Method)
	}
}

func TestEvaluateSendMessageBody(t *testing.T) {
	rec := &apiRecorder{}
	b := newTestBot(t, rec, Options{})

	reply := 7
	action := SendMessage{ChatID: 42, Text: "pong", DisablePreview: true, ReplyTo: &reply}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	calls := rec.recorded()
	if len(calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(calls))
	}
	want := `{"chat_id":42,"text":"pong","disable_web_page_preview":true,"reply_to_message_id":7}`
	if calls[0].Body != want {
		t.Errorf("body = %s, want %s", calls[0].Body, want)
	}
}

func TestEvaluateSendMessageOmitsAbsentOptions(t *testing.T) {
	rec := &apiRecorder{}
	b := newTestBot(t, rec, Options{})

	if err := b.Evaluate(context.Background(), SendMessage{ChatID: 42, Text: "pong"}); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if body := rec.recorded()[0].Body; body != `{"chat_id":42,"text":"pong"}` {
		t.Errorf("body = %s: absent optionals must contribute no key", body)
	}
}

func TestEvaluateGetMeContinuation(t *testing.T) {
	rec := &apiRecorder{replies: map[string]string{
		"getMe": `{"ok":true,"result":{"id":9,"is_bot":true,"first_name":"Bot","username":"my_bot"}}`,
	}}
	b := newTestBot(t, rec, Options{})

	action := GetMe{Then: func(res wire.Result[botapi.User]) Action {
		if !res.OK() {
			return SendMessage{ChatID: 1, Text: "error: " + res.Description()}
		}
		return SendMessage{ChatID: 1, Text: "I am @" + res.Value().Username}
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	calls := rec.recorded()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2 (getMe then sendMessage)", len(calls))
	}
	if !strings.Contains(calls[1].Body, "I am @my_bot") {
		t.Errorf("continuation body = %s", calls[1].Body)
	}
}

func TestEvaluateFailureReachesContinuation(t *testing.T) {
	rec := &apiRecorder{replies: map[string]string{
		"getMe": `{"ok":false,"description":"Unauthorized"}`,
	}}
	b := newTestBot(t, rec, Options{})

	var got wire.Result[botapi.User]
	action := GetMe{Then: func(res wire.Result[botapi.User]) Action {
		got = res
		return Nothing{} // the branch issues no further call
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if got.OK() {
		t.Fatal("continuation received success, want failure")
	}
	if got.Description() != "Unauthorized" {
		t.Errorf("Description = %q, want %q", got.Description(), "Unauthorized")
	}
	if calls := rec.recorded(); len(calls) != 1 {
		t.Errorf("calls = %d, want 1: failed branch must not call again", len(calls))
	}
}

func TestEvaluateDecodeFailureReachesContinuation(t *testing.T) {
	rec := &apiRecorder{replies: map[string]string{
		"getMe": `{"ok":true,"result":"not a user object"}`,
	}}
	b := newTestBot(t, rec, Options{})

	var got wire.Result[botapi.User]
	action := GetMe{Then: func(res wire.Result[botapi.User]) Action {
		got = res
		return nil
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if got.OK() {
		t.Fatal("continuation received success, want decode failure")
	}
	var decErr *wire.DecodeError
	if !errors.As(got.Err(), &decErr) {
		t.Errorf("error = %T, want *wire.DecodeError", got.Err())
	}
}

func TestEvaluateProfilePhotosBranching(t *testing.T) {
	rec := &apiRecorder{replies: map[string]string{
		"getUserProfilePhotos": `{"ok":true,"result":{"total_count":3,"photos":[]}}`,
	}}
	b := newTestBot(t, rec, Options{})

	// "Get profile photos, then report the count, or the error" as pure data.
	action := GetUserProfilePhotos{UserID: 5, Then: func(res wire.Result[botapi.UserProfilePhotos]) Action {
		if !res.OK() {
			return SendMessage{ChatID: 1, Text: res.Description()}
		}
		return SendMessage{ChatID: 1, Text: fmt.Sprintf("%d photos", res.Value().TotalCount)}
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	calls := rec.recorded()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2", len(calls))
	}
	if !strings.Contains(calls[1].Body, "3 photos") {
		t.Errorf("report body = %s", calls[1].Body)
	}
}

func TestEvaluateGetFileDataDownloads(t *testing.T) {
	var downloaded bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/getFile"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"F","file_path":"photos/x.jpg"}}`))
		case strings.HasPrefix(r.URL.Path, "/file/botTOKEN/"):
			downloaded = true
			_, _ = w.Write([]byte("bytes!"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	b := New(botapi.NewClient("TOKEN", srv.URL, nil), discardLogger(), Options{})

	var data []byte
	var ok bool
	action := GetFileData{FileID: "F", Then: func(d []byte, o bool) Action {
		data, ok = d, o
		return nil
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if !ok || string(data) != "bytes!" {
		t.Errorf("got (%q, %v), want (bytes!, true)", data, ok)
	}
	if !downloaded {
		t.Error("no download request was made")
	}
}

func TestEvaluateGetFileDataNoPath(t *testing.T) {
	rec := &apiRecorder{replies: map[string]string{
		"getFile": `{"ok":true,"result":{"file_id":"F"}}`,
	}}
	b := newTestBot(t, rec, Options{})

	called := false
	action := GetFileData{FileID: "F", Then: func(d []byte, ok bool) Action {
		called = true
		if ok || d != nil {
			t.Errorf("got (%q, %v), want (nil, false)", d, ok)
		}
		return nil
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if !called {
		t.Fatal("continuation never ran")
	}
	// Absence of a path must yield no download attempt.
	if calls := rec.recorded(); len(calls) != 1 {
		t.Errorf("calls = %d, want 1 (getFile only)", len(calls))
	}
}

func TestEvaluateUploadFileID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cat.png")
	if err := os.WriteFile(path, []byte("png"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	rec := &apiRecorder{replies: map[string]string{
		"sendPhoto": `{"ok":true,"result":{"message_id":5,"chat":{"id":42,"type":"private"},"photo":[{"file_id":"small"},{"file_id":"BIG"}]}}`,
	}}
	b := newTestBot(t, rec, Options{})

	var fileID string
	action := SendPhoto{ChatID: 42, Path: path, Then: func(res wire.Result[string]) Action {
		if !res.OK() {
			t.Errorf("upload failed: %v", res.Err())
			return nil
		}
		fileID = res.Value()
		return ResendPhoto{ChatID: 42, FileID: fileID}
	}}
	if err := b.Evaluate(context.Background(), action); err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if fileID != "BIG" {
		t.Errorf("fileID = %q, want BIG (largest size last)", fileID)
	}
	calls := rec.recorded()
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2 (upload then resend)", len(calls))
	}
	if !strings.Contains(calls[1].Body, `"photo":"BIG"`) {
		t.Errorf("resend body = %s", calls[1].Body)
	}
}

func TestEvaluateUploadUnreadableFile(t *testing.T) {
	rec := &apiRecorder{}
	b := newTestBot(t, rec, Options{})

	action := SendPhoto{ChatID: 42, Path: filepath.Join(t.TempDir(), "missing.png")}
	if err := b.Evaluate(context.Background(), action); err == nil {
		t.Fatal("expected I/O error for unreadable file")
	}
	if calls := rec.recorded(); len(calls) != 0 {
		t.Errorf("calls = %d, want 0: encoder failure must precede any request", len(calls))
	}
}

func TestEvaluateTransportFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	b := New(botapi.NewClient("TOKEN", srv.URL, nil), discardLogger(), Options{})
	err := b.Evaluate(context.Background(), SendMessage{ChatID: 1, Text: "x"})
	if err == nil {
		t.Fatal("expected transport error")
	}
}
