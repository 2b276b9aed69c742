package bot

import (
	"strings"
	"testing"

	"videobot/internal/kling"
)

func TestCatalogMatchesRussianLocale(t *testing.T) {
	catalog := NewCatalog()
	got := catalog.Text("ru-RU", MsgNeedImage)
	if !strings.Contains(got, "фото") {
		t.Fatalf("Text(ru-RU) = %q, want Russian variant", got)
	}
}

func TestCatalogFallsBackToEnglish(t *testing.T) {
	catalog := NewCatalog()
	got := catalog.Text("fr", MsgNeedImage)
	if got != "Please send a photo first." {
		t.Fatalf("Text(fr) = %q, want English fallback", got)
	}
	if empty := catalog.Text("", MsgWelcome); empty == "" {
		t.Fatalf("empty locale should still render")
	}
}

func TestRenderErrorMapsKinds(t *testing.T) {
	catalog := NewCatalog()
	cases := []struct {
		err  error
		want MessageKey
	}{
		{kling.ErrTaskFailed, MsgJobFailed},
		{kling.ErrAwaitTimeout, MsgJobTimedOut},
		{&kling.PollError{StatusCode: 500, Body: "boom"}, MsgJobPollFailed},
		{&kling.SubmissionError{StatusCode: 400, Body: "bad"}, MsgSubmitFailed},
		{kling.ErrMissingTaskID, MsgSubmitFailed},
	}
	for _, tc := range cases {
		got := catalog.RenderError("en", tc.err)
		if want := catalog.Text("en", tc.want); got != want {
			t.Fatalf("RenderError(%v) = %q, want %q", tc.err, got, want)
		}
	}
}

func TestRenderErrorHidesDiagnostics(t *testing.T) {
	catalog := NewCatalog()
	err := &kling.SubmissionError{StatusCode: 500, Body: `{"secret":"internal detail"}`}
	got := catalog.RenderError("en", err)
	if strings.Contains(got, "internal detail") || strings.Contains(got, "500") {
		t.Fatalf("user message leaked diagnostics: %q", got)
	}
}
