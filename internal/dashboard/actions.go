// internal/dashboard/actions.go
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"restaurant-admin/internal/models"
	"restaurant-admin/internal/validation"
)

// Remote — пишущая сторона API заказов.
type Remote interface {
	AcceptOrder(ctx context.Context, orderID string) error
	RejectOrder(ctx context.Context, orderID string) error
	DeleteOwnerOrder(ctx context.Context, orderID string) error
	AddMenu(ctx context.Context, item models.MenuItem) error
	DeleteMenu(ctx context.Context, title string) error
	AddStaff(ctx context.Context, name string) error
	SetStaffOnline(ctx context.Context, name string) error
	SetStaffOffline(ctx context.Context, name string) error
}

type KitchenQueue interface {
	SubmitKitchenOrder(ctx context.Context, ticket models.KitchenTicket) error
}

type Refresher interface {
	Refresh(ctx context.Context, c Collection) error
}

// Recorder сохраняет завершённые операции. Необязателен.
type Recorder interface {
	RecordOperation(ctx context.Context, dashboardID string, op Operation) error
}

// Dispatcher выполняет действия пользователя как цепочки шагов и отмечает прогресс в store.
type Dispatcher struct {
	dashboardID string
	store       *Store
	remote      Remote
	kitchen     KitchenQueue
	refresher   Refresher
	recorder    Recorder
	now         func() time.Time
}

func NewDispatcher(dashboardID string, store *Store, remote Remote, kitchen KitchenQueue, refresher Refresher, recorder Recorder) *Dispatcher {
	return &Dispatcher{
		dashboardID: dashboardID,
		store:       store,
		remote:      remote,
		kitchen:     kitchen,
		refresher:   refresher,
		recorder:    recorder,
		now:         time.Now,
	}
}

// ApproveOrder подтверждает заказ, отправляет тикет на кухню и убирает заказ из ожидающих.
// Заказ, которого нет среди ожидающих, отклоняется с ErrOrderNotFound до любого запроса.
func (d *Dispatcher) ApproveOrder(ctx context.Context, orderID string) (Operation, error) {
	order, ok := d.pendingOrder(orderID)
	if !ok {
		// страница могла устареть: перечитываем ожидающие заказы и проверяем ещё раз
		if err := d.refresher.Refresh(ctx, CollectionOrders); err != nil {
			return Operation{}, fmt.Errorf("dashboard: reload orders before approving %s: %w", orderID, err)
		}
		if order, ok = d.pendingOrder(orderID); !ok {
			return Operation{}, fmt.Errorf("%w: %s", ErrOrderNotFound, orderID)
		}
	}
	op := d.newOperation(KindApproveOrder, orderID)
	op.Order = &order
	return d.run(ctx, op)
}

func (d *Dispatcher) RejectOrder(ctx context.Context, orderID string) (Operation, error) {
	return d.run(ctx, d.newOperation(KindRejectOrder, orderID))
}

// AddMenu проверяет форму до любой отправки.
func (d *Dispatcher) AddMenu(ctx context.Context, form models.MenuForm) (Operation, error) {
	form.Title = strings.TrimSpace(form.Title)
	form.Desc = strings.TrimSpace(form.Desc)
	form.Price = strings.TrimSpace(form.Price)
	form.Image = strings.TrimSpace(form.Image)
	if errs := validation.ValidateStruct(form); errs != nil {
		return Operation{}, &ValidationError{Fields: errs}
	}
	item := form.Item()
	op := d.newOperation(KindAddMenu, item.Title)
	op.Item = &item
	return d.run(ctx, op)
}

// DeleteMenu ничего не отправляет без confirmed.
func (d *Dispatcher) DeleteMenu(ctx context.Context, title string, confirmed bool) (Operation, error) {
	if !confirmed {
		return Operation{}, ErrNotConfirmed
	}
	return d.run(ctx, d.newOperation(KindDeleteMenu, title))
}

func (d *Dispatcher) AddStaff(ctx context.Context, form models.StaffForm) (Operation, error) {
	form.Name = strings.TrimSpace(form.Name)
	if errs := validation.ValidateStruct(form); errs != nil {
		return Operation{}, &ValidationError{Fields: errs}
	}
	return d.run(ctx, d.newOperation(KindAddStaff, form.Name))
}

// SetStaffPresence делает один запрос статуса и одно перечитывание персонала.
func (d *Dispatcher) SetStaffPresence(ctx context.Context, name string, present bool) (Operation, error) {
	kind := KindStaffAbsent
	if present {
		kind = KindStaffPresent
	}
	return d.run(ctx, d.newOperation(kind, name))
}

// Retry продолжает неудачную операцию с первого невыполненного шага.
func (d *Dispatcher) Retry(ctx context.Context, id string) (Operation, error) {
	op, err := d.store.claimRetry(id)
	if err != nil {
		return op, err
	}
	slog.Info("dashboard: повтор операции", "operation", op.ID, "kind", op.Kind, "from_step", op.Steps[op.Done], "attempt", op.Attempts)
	return d.execute(ctx, op)
}

func (d *Dispatcher) newOperation(kind OperationKind, target string) Operation {
	now := d.now()
	return Operation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Steps:     kindSteps[kind],
		Status:    OperationPending,
		StartedAt: now,
		UpdatedAt: now,
	}
}

func (d *Dispatcher) run(ctx context.Context, op Operation) (Operation, error) {
	op.Status = OperationRunning
	op.Attempts = 1
	d.update(&op)
	return d.execute(ctx, op)
}

func (d *Dispatcher) execute(ctx context.Context, op Operation) (Operation, error) {
	for op.Done < len(op.Steps) {
		step := op.Steps[op.Done]
		if err := d.step(ctx, op, step); err != nil {
			op.Status = OperationFailed
			op.Err = err.Error()
			d.update(&op)

			// прошлые шаги уже изменили данные на сервере, перечитываем локальную копию
			if op.Done > 0 && step != StepRefresh {
				if rerr := d.refresher.Refresh(ctx, op.Collection()); rerr != nil {
					slog.Error("dashboard: обновление после неудачной операции", "operation", op.ID, "collection", op.Collection().String(), "error", rerr)
				}
			}
			slog.Error("dashboard: операция не удалась", "operation", op.ID, "kind", op.Kind, "target", op.Target, "step", step, "error", err)
			d.record(op)
			return op, &StepError{OperationID: op.ID, Kind: op.Kind, Step: step, Err: err}
		}
		op.Done++
		d.update(&op)
	}

	op.Status = OperationCommitted
	d.update(&op)
	slog.Info("dashboard: операция завершена", "operation", op.ID, "kind", op.Kind, "target", op.Target)
	d.record(op)
	return op, nil
}

func (d *Dispatcher) step(ctx context.Context, op Operation, step string) error {
	switch step {
	case StepAccept:
		return d.remote.AcceptOrder(ctx, op.Target)
	case StepReject:
		return d.remote.RejectOrder(ctx, op.Target)
	case StepKitchen:
		ticket := models.KitchenTicket{OrderID: op.Target}
		if op.Order != nil {
			ticket = op.Order.KitchenTicket()
		}
		return d.kitchen.SubmitKitchenOrder(ctx, ticket)
	case StepRemove:
		return d.remote.DeleteOwnerOrder(ctx, op.Target)
	case StepAddMenu:
		if op.Item == nil {
			return errors.New("missing menu item")
		}
		return d.remote.AddMenu(ctx, *op.Item)
	case StepDeleteMenu:
		return d.remote.DeleteMenu(ctx, op.Target)
	case StepAddStaff:
		return d.remote.AddStaff(ctx, op.Target)
	case StepStaffOnline:
		return d.remote.SetStaffOnline(ctx, op.Target)
	case StepStaffOffline:
		return d.remote.SetStaffOffline(ctx, op.Target)
	case StepRefresh:
		return d.refresher.Refresh(ctx, op.Collection())
	default:
		return fmt.Errorf("unknown step %q", step)
	}
}

func (d *Dispatcher) update(op *Operation) {
	op.UpdatedAt = d.now()
	d.store.Dispatch(OperationUpdated{Operation: *op})
}

func (d *Dispatcher) record(op Operation) {
	if d.recorder == nil {
		return
	}
	// контекст запроса может быть уже отменён
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.recorder.RecordOperation(ctx, d.dashboardID, op); err != nil {
		slog.Error("dashboard: не удалось записать операцию", "operation", op.ID, "error", err)
	}
}

func (d *Dispatcher) pendingOrder(id string) (models.Order, bool) {
	for _, o := range d.store.State().Orders {
		if o.OrderID == id {
			return o, true
		}
	}
	return models.Order{}, false
}
