package bot

import (
	"bytes"
	"testing"
)

func TestStoreInvariantImageIffAwaitingPrompt(t *testing.T) {
	store := NewStore()

	if store.State(1) != StateAwaitingImage {
		t.Fatalf("unknown session should await an image")
	}
	if _, ok := store.TakeImage(1); ok {
		t.Fatalf("unknown session should have no image")
	}

	store.PutImage(1, []byte{1, 2, 3})
	if store.State(1) != StateAwaitingPrompt {
		t.Fatalf("state after PutImage = %q, want awaiting_prompt", store.State(1))
	}

	image, ok := store.TakeImage(1)
	if !ok || !bytes.Equal(image, []byte{1, 2, 3}) {
		t.Fatalf("TakeImage = %v, %v", image, ok)
	}
	if store.State(1) != StateAwaitingImage {
		t.Fatalf("state after TakeImage = %q, want awaiting_image", store.State(1))
	}
	if _, ok := store.TakeImage(1); ok {
		t.Fatalf("image should be consumed exactly once")
	}
}

func TestStoreLastImageWins(t *testing.T) {
	store := NewStore()
	store.PutImage(7, []byte("first"))
	store.PutImage(7, []byte("second"))

	image, ok := store.TakeImage(7)
	if !ok {
		t.Fatalf("expected buffered image")
	}
	if string(image) != "second" {
		t.Fatalf("image = %q, want the replacement", image)
	}
}

func TestStoreCopiesCallerBuffer(t *testing.T) {
	store := NewStore()
	buf := []byte{1, 2, 3}
	store.PutImage(9, buf)
	buf[0] = 0xff

	image, _ := store.TakeImage(9)
	if image[0] != 1 {
		t.Fatalf("stored image aliases the caller's buffer")
	}
}

func TestStoreSessionsAreIndependent(t *testing.T) {
	store := NewStore()
	store.PutImage(1, []byte("one"))
	store.PutImage(2, []byte("two"))

	if image, _ := store.TakeImage(1); string(image) != "one" {
		t.Fatalf("chat 1 image = %q", image)
	}
	if store.State(2) != StateAwaitingPrompt {
		t.Fatalf("chat 2 should still be awaiting a prompt")
	}
	if image, _ := store.TakeImage(2); string(image) != "two" {
		t.Fatalf("chat 2 image = %q", image)
	}
}
