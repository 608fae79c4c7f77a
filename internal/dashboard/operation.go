// internal/dashboard/operation.go
package dashboard

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"restaurant-admin/internal/models"
)

var (
	ErrNotConfirmed      = errors.New("dashboard: deletion was not confirmed")
	ErrOperationNotFound = errors.New("dashboard: operation not found")
	ErrNotRetryable      = errors.New("dashboard: operation cannot be retried")
	ErrOrderNotFound     = errors.New("dashboard: order is not pending")
)

type OperationKind string

const (
	KindApproveOrder OperationKind = "approve_order"
	KindRejectOrder  OperationKind = "reject_order"
	KindAddMenu      OperationKind = "add_menu"
	KindDeleteMenu   OperationKind = "delete_menu"
	KindAddStaff     OperationKind = "add_staff"
	KindStaffPresent OperationKind = "staff_present"
	KindStaffAbsent  OperationKind = "staff_absent"
)

type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationRunning   OperationStatus = "running"
	OperationCommitted OperationStatus = "committed"
	OperationFailed    OperationStatus = "failed"
)

// Имена шагов. StepRefresh всегда последний и перечитывает затронутую коллекцию.
const (
	StepAccept       = "accept"
	StepReject       = "reject"
	StepKitchen      = "kitchen"
	StepRemove       = "remove"
	StepAddMenu      = "add-menu"
	StepDeleteMenu   = "delete-menu"
	StepAddStaff     = "add-staff"
	StepStaffOnline  = "staff-online"
	StepStaffOffline = "staff-offline"
	StepRefresh      = "refresh"
)

var kindSteps = map[OperationKind][]string{
	KindApproveOrder: {StepAccept, StepKitchen, StepRemove, StepRefresh},
	KindRejectOrder:  {StepReject, StepRemove, StepRefresh},
	KindAddMenu:      {StepAddMenu, StepRefresh},
	KindDeleteMenu:   {StepDeleteMenu, StepRefresh},
	KindAddStaff:     {StepAddStaff, StepRefresh},
	KindStaffPresent: {StepStaffOnline, StepRefresh},
	KindStaffAbsent:  {StepStaffOffline, StepRefresh},
}

var kindCollection = map[OperationKind]Collection{
	KindApproveOrder: CollectionOrders,
	KindRejectOrder:  CollectionOrders,
	KindAddMenu:      CollectionMenu,
	KindDeleteMenu:   CollectionMenu,
	KindAddStaff:     CollectionStaff,
	KindStaffPresent: CollectionStaff,
	KindStaffAbsent:  CollectionStaff,
}

// Operation — один запуск диспетчера. Шаги Steps[:Done] выполнены.
type Operation struct {
	ID        string          `json:"id"`
	Kind      OperationKind   `json:"kind"`
	Target    string          `json:"target"`
	Steps     []string        `json:"steps"`
	Done      int             `json:"done"`
	Status    OperationStatus `json:"status"`
	Err       string          `json:"error,omitempty"`
	Attempts  int             `json:"attempts"`
	StartedAt time.Time       `json:"started_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	Order *models.Order    `json:"order,omitempty"`
	Item  *models.MenuItem `json:"item,omitempty"`
}

func (o Operation) Collection() Collection {
	return kindCollection[o.Kind]
}

// Phase — метка конечного автомата: pending, <step>-done, committed или failed.
func (o Operation) Phase() string {
	switch {
	case o.Status == OperationCommitted || o.Status == OperationFailed:
		return string(o.Status)
	case o.Done == 0:
		return string(OperationPending)
	default:
		return o.Steps[o.Done-1] + "-done"
	}
}

// FailedStep — шаг, на котором остановилась неудачная операция.
func (o Operation) FailedStep() string {
	if o.Status != OperationFailed || o.Done >= len(o.Steps) {
		return ""
	}
	return o.Steps[o.Done]
}

func (o Operation) Retryable() bool {
	return o.Status == OperationFailed && o.Done < len(o.Steps)
}

func (o Operation) Finished() bool {
	return o.Status == OperationCommitted || o.Status == OperationFailed
}

// StepError сообщает шаг, на котором остановилась операция.
type StepError struct {
	OperationID string
	Kind        OperationKind
	Step        string
	Err         error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("dashboard: %s %s failed at step %q: %v", e.Kind, e.OperationID, e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// ValidationError несёт сообщения по полям; запрос не отправлялся.
type ValidationError struct {
	Fields url.Values
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("dashboard: invalid input (%d fields)", len(e.Fields))
}
