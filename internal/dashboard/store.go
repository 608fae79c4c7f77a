// internal/dashboard/store.go
package dashboard

import (
	"log/slog"
	"sync"
)

// Store владеет текущим State. Каждый переход проходит через Reduce последовательно.
type Store struct {
	mu     sync.Mutex
	state  State
	issued [numCollections]uint64
}

func NewStore(initial State) *Store {
	return &Store{state: initial}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch применяет a и возвращает получившийся снимок.
func (s *Store) Dispatch(a Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch a := a.(type) {
	case FetchSucceeded:
		if s.state.Stale(a.Collection, a.Seq) {
			slog.Debug("dashboard: устаревший ответ отброшен", "collection", a.Collection.String(), "seq", a.Seq, "applied", s.state.MetaFor(a.Collection).Seq)
		}
	case FetchFailed:
		if s.state.Stale(a.Collection, a.Seq) {
			slog.Debug("dashboard: устаревшая ошибка отброшена", "collection", a.Collection.String(), "seq", a.Seq, "applied", s.state.MetaFor(a.Collection).Seq)
		}
	}

	s.state = Reduce(s.state, a)
	return s.state
}

// BeginFetch выдаёт следующий номер запроса для c и отмечает запрос.
func (s *Store) BeginFetch(c Collection, showLoading bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued[c]++
	seq := s.issued[c]
	s.state = Reduce(s.state, FetchStarted{Collection: c, Seq: seq, ShowLoading: showLoading})
	return seq
}

// claimRetry переводит неудачную операцию в running, чтобы шёл только один повтор.
func (s *Store) claimRetry(id string) (Operation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	op, ok := s.state.Operation(id)
	if !ok {
		return Operation{}, ErrOperationNotFound
	}
	if !op.Retryable() {
		return op, ErrNotRetryable
	}
	op.Status = OperationRunning
	op.Err = ""
	op.Attempts++
	s.state = Reduce(s.state, OperationUpdated{Operation: op})
	return op, nil
}
