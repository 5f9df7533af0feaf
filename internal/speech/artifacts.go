package speech

import "sync"

// ArtifactStore maps call ids to synthesized audio paths. Per-call paths
// replace the old single shared output file, so two in-flight calls can no
// longer clobber each other's playback. The most recent path is still
// tracked for the legacy audio route.
type ArtifactStore struct {
	mu       sync.RWMutex
	paths    map[string]string
	lastPath string
}

func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{paths: make(map[string]string)}
}

// Register records a call's artifact path and marks it most recent.
func (s *ArtifactStore) Register(callID, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callID != "" {
		s.paths[callID] = path
	}
	s.lastPath = path
}

// Lookup returns the artifact path for a call id.
func (s *ArtifactStore) Lookup(callID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.paths[callID]
	return p, ok
}

// Latest returns the most recently synthesized artifact path, empty when
// nothing has been synthesized yet.
func (s *ArtifactStore) Latest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPath
}
