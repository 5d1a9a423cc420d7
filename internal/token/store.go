package token

import "sync"

// Store is the single source of truth for the session token pair. At most
// one access token is current at a time; callers must re-read the store for
// every operation rather than caching a value.
//
// Generation is a monotonic counter bumped by every mutation. A caller that
// performs a slow exchange (token refresh) captures the generation first and
// commits with SetIfCurrent, so a logout that lands mid-exchange cannot be
// undone by the late write.
type Store interface {
	// SetTokens stores the access token and, when non-empty, the refresh
	// token. Prior values are overwritten unconditionally.
	SetTokens(access, refresh string)

	// AccessToken returns the stored access token, or "" when absent.
	AccessToken() string

	// RefreshToken returns the stored refresh token, or "" when absent.
	RefreshToken() string

	// Clear removes both tokens. Used on logout and on an
	// authentication-failure response.
	Clear()

	// Generation returns the current mutation counter.
	Generation() uint64

	// SetIfCurrent stores the pair only if no mutation happened since gen
	// was read. Reports whether the write was applied.
	SetIfCurrent(gen uint64, access, refresh string) bool
}

type memoryStore struct {
	mu      sync.Mutex
	access  string
	refresh string
	gen     uint64
}

// NewMemoryStore returns a process-lifetime Store. Mock mode and tests use
// it; portalctl uses the file-backed variant.
func NewMemoryStore() Store {
	return &memoryStore{}
}

func (s *memoryStore) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = access
	if refresh != "" {
		s.refresh = refresh
	}
	s.gen++
}

func (s *memoryStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.access
}

func (s *memoryStore) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refresh
}

func (s *memoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = ""
	s.refresh = ""
	s.gen++
}

func (s *memoryStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *memoryStore) SetIfCurrent(gen uint64, access, refresh string) bool {
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
	return true
}
