package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bxcodec/faker/v3"

	"restaurant-admin/internal/models"
)

// fakeAPI records every call by name, e.g. "accept:o1" or "menu".
type fakeAPI struct {
	mu        sync.Mutex
	calls     []string
	fail      map[string]error
	hook      func(call string)
	orders    []models.Order
	allOrders []models.Order
	menu      []models.MenuItem
	staff     []models.Staff
	feedback  []models.Feedback
	tickets   []models.KitchenTicket
	added     []models.MenuItem
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{fail: map[string]error{}}
}

func (f *fakeAPI) record(call string) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	err := f.fail[call]
	hook := f.hook
	f.mu.Unlock()
	if hook != nil {
		hook(call)
	}
	return err
}

func (f *fakeAPI) setFail(call string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.fail, call)
		return
	}
	f.fail[call] = err
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeAPI) count(call string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeAPI) reset() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) OwnerOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	data := f.orders
	f.mu.Unlock()
	if err := f.record("orders"); err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

func (f *fakeAPI) AdminOrders(ctx context.Context) ([]models.Order, error) {
	f.mu.Lock()
	data := f.allOrders
	f.mu.Unlock()
	if err := f.record("all-orders"); err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

func (f *fakeAPI) Menu(ctx context.Context) ([]models.MenuItem, error) {
	f.mu.Lock()
	data := f.menu
	f.mu.Unlock()
	if err := f.record("menu"); err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

func (f *fakeAPI) Staff(ctx context.Context) ([]models.Staff, error) {
	f.mu.Lock()
	data := f.staff
	f.mu.Unlock()
	if err := f.record("staff"); err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

func (f *fakeAPI) Feedback(ctx context.Context) ([]models.Feedback, error) {
	f.mu.Lock()
	data := f.feedback
	f.mu.Unlock()
	if err := f.record("feedback"); err != nil {
		return nil, err
	}
	return data, ctx.Err()
}

func (f *fakeAPI) AcceptOrder(_ context.Context, id string) error { return f.record("accept:" + id) }
func (f *fakeAPI) RejectOrder(_ context.Context, id string) error { return f.record("reject:" + id) }
func (f *fakeAPI) DeleteOwnerOrder(_ context.Context, id string) error {
	return f.record("remove:" + id)
}
func (f *fakeAPI) DeleteMenu(_ context.Context, title string) error {
	return f.record("delete-menu:" + title)
}
func (f *fakeAPI) AddStaff(_ context.Context, name string) error { return f.record("add-staff:" + name) }
func (f *fakeAPI) SetStaffOnline(_ context.Context, name string) error {
	return f.record("online:" + name)
}
func (f *fakeAPI) SetStaffOffline(_ context.Context, name string) error {
	return f.record("offline:" + name)
}

func (f *fakeAPI) AddMenu(_ context.Context, item models.MenuItem) error {
	if err := f.record("add-menu:" + item.Title); err != nil {
		return err
	}
	f.mu.Lock()
	f.added = append(f.added, item)
	f.mu.Unlock()
	return nil
}

func (f *fakeAPI) SubmitKitchenOrder(_ context.Context, ticket models.KitchenTicket) error {
	if err := f.record("kitchen:" + ticket.OrderID); err != nil {
		return err
	}
	f.mu.Lock()
	f.tickets = append(f.tickets, ticket)
	f.mu.Unlock()
	return nil
}

func fakeOrder(createdAt string, total float64) models.Order {
	return models.Order{
		OrderID:         faker.UUIDHyphenated(),
		UserEmail:       faker.Email(),
		Name:            faker.Name(),
		Status:          models.OrderStatusPending,
		TableNo:         "4",
		ItemName:        faker.Word(),
		ItemDescription: faker.Sentence(),
		Price:           "10",
		Quantity:        2,
		Total:           models.NewAmount(total),
		LocationName:    faker.Word(),
		CreatedAt:       createdAt,
	}
}

func fakeOrders(n int) []models.Order {
	out := make([]models.Order, n)
	for i := range out {
		out[i] = fakeOrder("2024-03-01T10:00:00Z", float64(i+1))
	}
	return out
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
