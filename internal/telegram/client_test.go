package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestSendTextPostsForm(t *testing.T) {
	var gotPath string
	var gotForm url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Token: "123:abc", BaseURL: server.URL})
	if err := client.SendText(context.Background(), 42, "hello"); err != nil {
		t.Fatalf("SendText returned error: %v", err)
	}
	if gotPath != "/bot123:abc/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotForm.Get("chat_id") != "42" || gotForm.Get("text") != "hello" {
		t.Fatalf("form = %v", gotForm)
	}
}

func TestSendVideoIncludesCaption(t *testing.T) {
	var gotForm url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		gotForm = r.PostForm
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Token: "t", BaseURL: server.URL})
	err := client.SendVideo(context.Background(), 7, "https://cdn.example.com/v.mp4", "here you go")
	if err != nil {
		t.Fatalf("SendVideo returned error: %v", err)
	}
	if gotForm.Get("video") != "https://cdn.example.com/v.mp4" {
		t.Fatalf("video = %q", gotForm.Get("video"))
	}
	if gotForm.Get("caption") != "here you go" {
		t.Fatalf("caption = %q", gotForm.Get("caption"))
	}
}

func TestCallSurfacesAPIDescription(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Token: "t", BaseURL: server.URL})
	err := client.SendText(context.Background(), 1, "x")
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Fatalf("error = %v, want description surfaced", err)
	}
}

func TestGetUpdatesParsesMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		if got := r.PostForm.Get("offset"); got != "10" {
			t.Errorf("offset = %q, want 10", got)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":10,"message":{"message_id":1,"from":{"id":5,"language_code":"ru"},"chat":{"id":42},"text":"hi"}}]}`))
	}))
	defer server.Close()

	client := NewClient(ClientOptions{Token: "t", BaseURL: server.URL})
	updates, err := client.GetUpdates(context.Background(), 10, 30*time.Second)
	if err != nil {
		t.Fatalf("GetUpdates returned error: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("updates = %d, want 1", len(updates))
	}
	msg := updates[0].Message
	if msg == nil || msg.Chat.ID != 42 || msg.Text != "hi" {
		t.Fatalf("message = %+v", msg)
	}
	if msg.From.LanguageCode != "ru" {
		t.Fatalf("language_code = %q", msg.From.LanguageCode)
	}
}

func TestDownloadFileResolvesPath(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/bott/getFile", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_path":"photos/file_0.jpg"}}`))
	})
	mux.HandleFunc("/file/bott/photos/file_0.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg-bytes"))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(ClientOptions{Token: "t", BaseURL: server.URL})
	data, err := client.DownloadFile(context.Background(), "f1")
	if err != nil {
		t.Fatalf("DownloadFile returned error: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("data = %q", data)
	}
}
