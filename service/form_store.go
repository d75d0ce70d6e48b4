package service

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/AnTengye/qualitytrack/config"
)

// FormStore keeps live form instances in memory. Forms are working state,
// not records: nothing here outlives the process.
type FormStore struct {
	forms    map[string]*Form
	mu       sync.RWMutex
	maxForms int // Maximum forms to keep, 0 = unlimited
}

func NewFormStore(cfg *config.StoreConfig) *FormStore {
	maxForms := cfg.MaxForms
	if maxForms < 0 {
		maxForms = 0
	}
	slog.Info("form store initialized", "max_forms", maxForms)
	return &FormStore{
		forms:    make(map[string]*Form),
		maxForms: maxForms,
	}
}

func (s *FormStore) Save(form *Form) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.forms[form.ID] = form
	s.cleanupIfNeeded(form.ID)
}

func (s *FormStore) Get(id string) *Form {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forms[id]
}

func (s *FormStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.forms[id]; !ok {
		return false
	}
	delete(s.forms, id)
	return true
}

// Count returns the number of forms in the store
func (s *FormStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.forms)
}

// cleanupIfNeeded evicts the least recently touched forms once the store
// is over capacity. The form just saved and forms with a submission in
// flight are never evicted.
// Must be called with lock held
func (s *FormStore) cleanupIfNeeded(keep string) {
	if s.maxForms <= 0 || len(s.forms) <= s.maxForms {
		return
	}

	candidates := make([]*Form, 0, len(s.forms))
	for id, f := range s.forms {
		if id == keep || f.State() == StateSubmitting {
			continue
		}
		candidates = append(candidates, f)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].UpdatedAt().Before(candidates[j].UpdatedAt())
	})

	removeCount := len(s.forms) - s.maxForms
	for i := 0; i < removeCount && i < len(candidates); i++ {
		slog.Info("evicting idle form",
			"form_id", candidates[i].ID,
			"kind", candidates[i].Kind(),
			"updated_at", candidates[i].UpdatedAt(),
		)
		delete(s.forms, candidates[i].ID)
	}
}
