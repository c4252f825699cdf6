package groups

import (
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrGroupOutOfRange = errors.New("group out of range")

const (
	sessionCookie = "groups_session"
	sessionTTL    = 30 * 24 * time.Hour
	// maxSessions bounds the selections kept per blueprint
	maxSessions = 10000
)

type selection struct {
	group   int
	touched time.Time
}

// SelectionStore holds the currently selected group of every browser
// session. All components of a blueprint read and write the same store.
// Selections expire with the session cookie; when the store is full the
// least recently changed one is dropped.
type SelectionStore struct {
	mu       sync.RWMutex
	initial  int
	nGroups  int
	limit    int
	now      func() time.Time
	selected map[string]selection
}

// NewSelectionStore creates a store where every session starts on group
// initial.
func NewSelectionStore(nGroups, initial int) *SelectionStore {
	return &SelectionStore{
		initial:  initial,
		nGroups:  nGroups,
		limit:    maxSessions,
		now:      time.Now,
		selected: make(map[string]selection),
	}
}

// Get returns the selected group for a session
func (s *SelectionStore) Get(session string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sel, ok := s.selected[session]; ok && s.now().Sub(sel.touched) < sessionTTL {
		return sel.group
	}
	return s.initial
}

// Set selects a group for a session
func (s *SelectionStore) Set(session string, group int) error {
	if group < 0 || group >= s.nGroups {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrGroupOutOfRange, group, s.nGroups)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if _, ok := s.selected[session]; !ok && len(s.selected) >= s.limit {
		s.evict(now)
	}
	s.selected[session] = selection{group: group, touched: now}
	return nil
}

// evict drops expired selections, or the oldest one if none has expired.
// Callers hold the write lock.
func (s *SelectionStore) evict(now time.Time) {
	var (
		oldest     string
		oldestTime time.Time
	)
	for id, sel := range s.selected {
		if now.Sub(sel.touched) >= sessionTTL {
			delete(s.selected, id)
			continue
		}
		if oldest == "" || sel.touched.Before(oldestTime) {
			oldest, oldestTime = id, sel.touched
		}
	}
	if len(s.selected) >= s.limit {
		delete(s.selected, oldest)
	}
}

// NumGroups returns the number of selectable groups
func (s *SelectionStore) NumGroups() int {
	return s.nGroups
}

// sessionID finds the ID of the client, issuing a new one if needed
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
