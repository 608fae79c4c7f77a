// internal/dashboard/sync.go
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"restaurant-admin/internal/models"
)

// Source — читающая сторона API заказов.
type Source interface {
	OwnerOrders(ctx context.Context) ([]models.Order, error)
	AdminOrders(ctx context.Context) ([]models.Order, error)
	Menu(ctx context.Context) ([]models.MenuItem, error)
	Staff(ctx context.Context) ([]models.Staff, error)
	Feedback(ctx context.Context) ([]models.Feedback, error)
}

const DefaultPollInterval = 10 * time.Second

// polled перечитываются на каждом тике. Персонал и отзывы грузятся только при старте или по запросу.
var polled = []Collection{CollectionOrders, CollectionAllOrders, CollectionMenu}

// Synchronizer опросом держит Store в соответствии с API заказов.
type Synchronizer struct {
	store    *Store
	src      Source
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	ctx     context.Context
	wg      sync.WaitGroup
	stopped bool
}

func NewSynchronizer(store *Store, src Source, interval time.Duration) *Synchronizer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Synchronizer{store: store, src: src, interval: interval, now: time.Now}
}

// Start один раз загружает все коллекции и затем опрашивает до Stop или завершения ctx.
// Повторный вызов Start ничего не делает.
func (s *Synchronizer) Start(ctx context.Context) {
	s.mu.Lock()
	if s.ctx != nil || s.stopped {
		s.mu.Unlock()
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.spawn(CollectionOrders, true)
	s.spawn(CollectionAllOrders, false)
	s.spawn(CollectionMenu, true)
	s.spawn(CollectionStaff, true)
	s.spawn(CollectionFeedback, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.wg.Add(1)
	go s.loop(s.ctx)
}

func (s *Synchronizer) loop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// запросы прошлого тика не отменяются
			for _, c := range polled {
				s.spawn(c, false)
			}
		}
	}
}

// spawn выполняет одну фоновую загрузку. Ошибки попадают в метаданные коллекции и в лог.
func (s *Synchronizer) spawn(c Collection, showLoading bool) {
	s.mu.Lock()
	if s.stopped || s.ctx == nil {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if err := s.fetch(ctx, c, showLoading); err != nil && ctx.Err() == nil {
			slog.Error("dashboard: фоновое обновление не удалось", "collection", c.String(), "error", err)
		}
	}()
}

// Refresh сразу загружает c и применяет результат под новым номером запроса.
func (s *Synchronizer) Refresh(ctx context.Context, c Collection) error {
	if c < 0 || c >= numCollections {
		return fmt.Errorf("dashboard: unknown collection %d", int(c))
	}
	return s.fetch(ctx, c, false)
}

func (s *Synchronizer) fetch(ctx context.Context, c Collection, showLoading bool) error {
	seq := s.store.BeginFetch(c, showLoading)
	result := FetchSucceeded{Collection: c, Seq: seq}

	var err error
	switch c {
	case CollectionOrders:
		result.Orders, err = s.src.OwnerOrders(ctx)
	case CollectionAllOrders:
		result.Orders, err = s.src.AdminOrders(ctx)
	case CollectionMenu:
		result.Menu, err = s.src.Menu(ctx)
	case CollectionStaff:
		result.Staff, err = s.src.Staff(ctx)
	case CollectionFeedback:
		result.Feedback, err = s.src.Feedback(ctx)
	}
	if err != nil {
		s.store.Dispatch(FetchFailed{Collection: c, Seq: seq, Err: err.Error()})
		return fmt.Errorf("fetch %s: %w", c, err)
	}

	result.At = s.now()
	s.store.Dispatch(result)
	return nil
}

// Stop отменяет текущие запросы и ждёт завершения всех горутин.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()
}
