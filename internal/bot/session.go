package bot

import "sync"

// State enumerates per-session conversational states.
type State string

const (
	// StateAwaitingImage is the initial state and the default for unknown sessions.
	StateAwaitingImage State = "awaiting_image"
	// StateAwaitingPrompt means an image is buffered and a prompt is expected next.
	StateAwaitingPrompt State = "awaiting_prompt"
)

type session struct {
	state        State
	pendingImage []byte
}

// Store holds conversational sessions keyed by chat id. Sessions are created
// lazily on first image receipt and reset, never destroyed.
//
// Invariant: a session buffers an image if and only if it is awaiting a prompt.
// At most one image is buffered per session; a later image replaces it.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[int64]*session)}
}

// PutImage buffers image for chatID and moves the session to StateAwaitingPrompt.
// Any previously buffered image is replaced.
func (s *Store) PutImage(chatID int64, image []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		sess = &session{}
		s.sessions[chatID] = sess
	}
	sess.pendingImage = append([]byte(nil), image...)
	sess.state = StateAwaitingPrompt
}

// TakeImage removes and returns the buffered image for chatID, moving the
// session back to StateAwaitingImage. The second return reports whether an
// image was buffered.
func (s *Store) TakeImage(chatID int64) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok || len(sess.pendingImage) == 0 {
		return nil, false
	}
	image := sess.pendingImage
	sess.pendingImage = nil
	sess.state = StateAwaitingImage
	return image, true
}

// State returns the current state for chatID; unknown sessions are awaiting an image.
func (s *Store) State(chatID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[chatID]
	if !ok || sess.state == "" {
		return StateAwaitingImage
	}
	return sess.state
}
