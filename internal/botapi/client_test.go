package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/botwire/botwire/internal/wire"
)

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestInvoke(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTEST_TOKEN/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != `{"chat_id":42,"text":"hello"}` {
			t.Errorf("body = %s", body)
		}
		writeJSON(t, w, map[string]any{"ok": true, "result": map[string]any{"message_id": 99}})
	}))
	defer srv.Close()

	client := NewClient("TEST_TOKEN", srv.URL, nil)
	body, err := wire.Object(wire.Req("chat_id", int64(42)), wire.Req("text", "hello"))
	if err != nil {
		t.Fatalf("Object() error: %v", err)
	}

	res, err := client.Invoke(context.Background(), "sendMessage", body)
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	msg := wire.DecodeAs[Message](res)
	if !msg.OK() {
		t.Fatalf("decode failed: %v", msg.Err())
	}
	if msg.Value().MessageID != 99 {
		t.Errorf("MessageID = %d, want 99", msg.Value().MessageID)
	}
}

func TestInvokeEnvelopeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, map[string]any{"ok": false, "description": "Unauthorized"})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, nil)
	res, err := client.Invoke(context.Background(), "getMe", nil)
	if err != nil {
		t.Fatalf("Invoke() transport error: %v", err)
	}
	if res.OK() {
		t.Fatal("expected envelope failure")
	}
	if res.Description() != "Unauthorized" {
		t.Errorf("Description = %q, want %q", res.Description(), "Unauthorized")
	}
}

func TestInvokeTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused

	client := NewClient("SECRET_TOKEN", srv.URL, nil)
	_, err := client.Invoke(context.Background(), "getMe", nil)
	if err == nil {
		t.Fatal("expected transport error")
	}
	if !strings.Contains(err.Error(), "getMe") {
		t.Errorf("error %q does not name the method", err)
	}
	if strings.Contains(err.Error(), "SECRET_TOKEN") {
		t.Errorf("error %q leaks the token", err)
	}
}

func TestTransportCapsResponseSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		chunk := bytes.Repeat([]byte("x"), 1<<20)
		for range 11 {
			_, _ = w.Write(chunk)
		}
	}))
	defer srv.Close()

	tr := NewHTTPTransport()
	data, err := tr.Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if len(data) != maxResponseBytes {
		t.Errorf("len(data) = %d, want capped at %d", len(data), maxResponseBytes)
	}
}

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/botTOKEN/getMe" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeJSON(t, w, map[string]any{"ok": true, "result": map[string]any{
			"id": 123, "is_bot": true, "first_name": "TestBot", "username": "test_bot",
		}})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, nil)
	res, err := client.Get(context.Background(), "getMe")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	user := wire.DecodeAs[User](res)
	if !user.OK() {
		t.Fatalf("decode failed: %v", user.Err())
	}
	if user.Value().Username != "test_bot" {
		t.Errorf("Username = %q, want %q", user.Value().Username, "test_bot")
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/botTOKEN/photos/pic.jpg" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte("raw-bytes"))
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, nil)
	data, err := client.Download(context.Background(), "photos/pic.jpg")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if string(data) != "raw-bytes" {
		t.Errorf("data = %q, want %q", data, "raw-bytes")
	}
}

func TestFileURL(t *testing.T) {
	client := NewClient("TOKEN", "https://api.telegram.org", nil)
	got := client.FileURL("documents/file_123.pdf")
	want := "https://api.telegram.org/file/botTOKEN/documents/file_123.pdf"
	if got != want {
		t.Errorf("FileURL() = %q, want %q", got, want)
	}
}

func TestInvokeMultipartContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "multipart/form-data; boundary=B" {
			t.Errorf("Content-Type = %q", ct)
		}
		writeJSON(t, w, map[string]any{"ok": true, "result": true})
	}))
	defer srv.Close()

	client := NewClient("TOKEN", srv.URL, nil)
	res, err := client.InvokeMultipart(context.Background(), "sendPhoto", "B", []byte("--B--"))
	if err != nil {
		t.Fatalf("InvokeMultipart() error: %v", err)
	}
	if !res.OK() {
		t.Fatalf("envelope failure: %v", res.Err())
	}
}
