// internal/dashboard/registry.go
package dashboard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// API — всё, что панели нужно от API заказов.
type API interface {
	Source
	Remote
}

type Options struct {
	PollInterval     time.Duration
	PageSize         int
	OperationHistory int
	IdleTimeout      time.Duration
}

// Dashboard объединяет состояние одной сессии администратора и компоненты, которые его ведут.
type Dashboard struct {
	ID      string
	Store   *Store
	Sync    *Synchronizer
	Actions *Dispatcher

	mu       sync.Mutex
	lastSeen time.Time
}

func (d *Dashboard) touch(now time.Time) {
	d.mu.Lock()
	d.lastSeen = now
	d.mu.Unlock()
}

func (d *Dashboard) idleSince(now time.Time) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return now.Sub(d.lastSeen)
}

// Registry хранит по одной Dashboard на вошедшую сессию.
type Registry struct {
	api      API
	kitchen  KitchenQueue
	recorder Recorder
	opts     Options
	now      func() time.Time

	// base живёт дольше запросов; Shutdown отменяет его
	base   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	boards map[string]*Dashboard
}

func NewRegistry(api API, kitchen KitchenQueue, recorder Recorder, opts Options) *Registry {
	if kitchen == nil {
		if kq, ok := api.(KitchenQueue); ok {
			kitchen = kq
		}
	}
	base, cancel := context.WithCancel(context.Background())
	return &Registry{
		api:      api,
		kitchen:  kitchen,
		recorder: recorder,
		opts:     opts,
		now:      time.Now,
		base:     base,
		cancel:   cancel,
		boards:   make(map[string]*Dashboard),
	}
}

// Create запускает новую панель под новым id.
func (r *Registry) Create() *Dashboard {
	d, _ := r.Ensure(uuid.NewString())
	return d
}

// Ensure возвращает панель для id и запускает её, если она не работает.
// Второй результат сообщает, была ли она создана.
func (r *Registry) Ensure(id string) (*Dashboard, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if d, ok := r.boards[id]; ok {
		d.touch(now)
		return d, false
	}

	store := NewStore(NewState(r.opts.PageSize, r.opts.OperationHistory))
	syncer := NewSynchronizer(store, r.api, r.opts.PollInterval)
	d := &Dashboard{
		ID:      id,
		Store:   store,
		Sync:    syncer,
		Actions: NewDispatcher(id, store, r.api, r.kitchen, syncer, r.recorder),
	}
	d.touch(now)
	r.boards[id] = d
	syncer.Start(r.base)

	slog.Info("dashboard: запущена", "dashboard", id, "active", len(r.boards))
	return d, true
}

func (r *Registry) Get(id string) (*Dashboard, bool) {
	r.mu.Lock()
	d, ok := r.boards[id]
	r.mu.Unlock()
	if ok {
		d.touch(r.now())
	}
	return d, ok
}

// Remove останавливает панель и забывает её.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	d, ok := r.boards[id]
	delete(r.boards, id)
	r.mu.Unlock()

	if ok {
		d.Sync.Stop()
		slog.Info("dashboard: остановлена", "dashboard", id)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}

// ReapIdle останавливает панели, простаивающие дольше idle timeout, и возвращает их число.
func (r *Registry) ReapIdle() int {
	if r.opts.IdleTimeout <= 0 {
		return 0
	}
	now := r.now()

	r.mu.Lock()
	var idle []*Dashboard
	for id, d := range r.boards {
		if d.idleSince(now) > r.opts.IdleTimeout {
			idle = append(idle, d)
			delete(r.boards, id)
		}
	}
	r.mu.Unlock()

	for _, d := range idle {
		d.Sync.Stop()
		slog.Info("dashboard: остановлена простаивающая панель", "dashboard", d.ID)
	}
	return len(idle)
}

// StartReaper вызывает ReapIdle каждые interval до завершения ctx.
func (r *Registry) StartReaper(ctx context.Context, interval time.Duration) {
	slog.Info("dashboard: сборщик простаивающих панелей запущен", "interval", interval.String(), "idle_timeout", r.opts.IdleTimeout.String())
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := r.ReapIdle(); n > 0 {
					slog.Info("dashboard: проход сборщика простаивающих панелей", "stopped", n)
				}
			}
		}
	}()
}

// Shutdown останавливает все панели.
func (r *Registry) Shutdown() {
	r.cancel()

	r.mu.Lock()
	boards := r.boards
	r.boards = make(map[string]*Dashboard)
	r.mu.Unlock()

	for _, d := range boards {
		d.Sync.Stop()
	}
}
