package editor

import (
	"sync"
	"time"

	"github.com/debemdeboas/the-press/internal/model"
	"github.com/google/uuid"
)

type Repository interface {
	Create(owner model.UserID, post model.Post) (*Session, error)
	Get(id DraftID) (*Session, error)
	Delete(id DraftID) error
}

// MemoryRepository keeps editing sessions in process memory. Sessions are lost on restart,
// which only loses unsaved edits.
type MemoryRepository struct {
	sessions sync.Map
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(owner model.UserID, post model.Post) (*Session, error) {
	id := DraftID(uuid.New().String())
	s := NewSession(id, owner, post, NewBufferWidget(post.Content))
	m.sessions.Store(id, s)

	editorLogger.Debug().Str("draft_id", string(id)).Str("post_id", string(post.ID)).Msg("Editing session created")
	return s, nil
}

func (m *MemoryRepository) Get(id DraftID) (*Session, error) {
	if s, ok := m.sessions.Load(id); ok {
		return s.(*Session), nil
	}
	return nil, ErrDraftNotFound
}

// Delete closes and forgets the session. Deleting an unknown id is not an error.
func (m *MemoryRepository) Delete(id DraftID) error {
	if s, ok := m.sessions.LoadAndDelete(id); ok {
		s.(*Session).Close()
	}
	return nil
}

// Sweep closes sessions idle for longer than maxIdle and returns how many were removed.
func (m *MemoryRepository) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	m.sessions.Range(func(key, value any) bool {
		s := value.(*Session)
		if len(s.Busy()) == 0 && s.LastSeen().Before(cutoff) {
			m.sessions.Delete(key)
			s.Close()
			removed++
		}
		return true
	})
	if removed > 0 {
		editorLogger.Info().Int("removed", removed).Msg("Idle editing sessions swept")
	}
	return removed
}
