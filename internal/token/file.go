package token

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// fileStore keeps the token pair in a 0600 JSON file so a session survives
// between CLI invocations. The in-memory copy is authoritative within a
// process; persistence is best effort and failures are logged, never
// surfaced, because losing durability must not break an active session.
type fileStore struct {
	mu      sync.Mutex
	path    string
	access  string
	refresh string
	gen     uint64
}

type fileState struct {
	AccessToken  string `json:"authToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// NewFileStore returns a durable Store backed by the given path. A missing
// or unreadable file starts an empty session.
func NewFileStore(path string) Store {
	s := &fileStore{path: path}
	raw, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var st fileState
	if err := json.Unmarshal(raw, &st); err != nil {
		slog.Warn("token file unreadable, starting empty session", "path", path, "error", err)
		return s
	}
	s.access = st.AccessToken
	s.refresh = st.RefreshToken
	return s
}

func (s *fileStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	s.gen++
	s.persist()
}

func (s *fileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *fileStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *fileStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.gen++
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove token file", "path", s.path, "error", err)
	}
}

func (s *fileStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *fileStore) SetIfCurrent(gen uint64, access, refresh string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	s.gen++
	s.persist()
	return true
}

// persist writes the current state; callers hold s.mu.
func (s *fileStore) persist() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		slog.Warn("failed to create token directory", "path", s.path, "error", err)
		return
	}
	raw, err := json.Marshal(fileState{AccessToken: s.access, RefreshToken: s.refresh})
	if err != nil {
		slog.Warn("failed to encode token file", "error", err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		slog.Warn("failed to write token file", "path", s.path, "error", err)
	}
}
