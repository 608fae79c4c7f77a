package kitchen

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"restaurant-admin/internal/config"
	"restaurant-admin/internal/models"
)

type fakeChannel struct {
	published []amqp.Publishing
	keys      []string
	acks      chan amqp.Confirmation
	ack       bool
	err       error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, msg)
	f.keys = append(f.keys, exchange+"/"+key)
	f.acks <- amqp.Confirmation{DeliveryTag: uint64(len(f.published)), Ack: f.ack}
	return nil
}

func newFakePublisher(ack bool) (*Publisher, *fakeChannel) {
	ch := &fakeChannel{acks: make(chan amqp.Confirmation, 1), ack: ack}
	return &Publisher{pub: ch, acks: ch.acks, exchange: "orders_topic", routingKey: "kitchen.order"}, ch
}

func TestPublisherSendsPersistentTicket(t *testing.T) {
	p, ch := newFakePublisher(true)
	ticket := models.KitchenTicket{OrderID: "o1", UserEmail: "a@b.c", ItemName: "Momo", ItemQuantity: 2}

	if err := p.SubmitKitchenOrder(context.Background(), ticket); err != nil {
		t.Fatalf("SubmitKitchenOrder: %v", err)
	}
	if len(ch.published) != 1 {
		t.Fatalf("published %d messages", len(ch.published))
	}
	msg := ch.published[0]
	if msg.DeliveryMode != amqp.Persistent || msg.ContentType != "application/json" || msg.MessageId != "o1" {
		t.Errorf("unexpected publishing %+v", msg)
	}
	if ch.keys[0] != "orders_topic/kitchen.order" {
		t.Errorf("routed to %s", ch.keys[0])
	}
	var got models.KitchenTicket
	if err := json.Unmarshal(msg.Body, &got); err != nil || got != ticket {
		t.Errorf("body = %s (%v)", msg.Body, err)
	}
}

func TestPublisherNack(t *testing.T) {
	p, _ := newFakePublisher(false)
	if err := p.SubmitKitchenOrder(context.Background(), models.KitchenTicket{OrderID: "o1"}); !errors.Is(err, ErrNack) {
		t.Fatalf("expected ErrNack, got %v", err)
	}
}

func TestPublisherPublishError(t *testing.T) {
	p, ch := newFakePublisher(true)
	ch.err = amqp.ErrClosed
	if err := p.SubmitKitchenOrder(context.Background(), models.KitchenTicket{OrderID: "o1"}); !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestPublisherWaitsForConfirmUntilContextDone(t *testing.T) {
	p := &Publisher{pub: publishFunc(func() error { return nil }), acks: make(chan amqp.Confirmation), exchange: "x", routingKey: "k"}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := p.SubmitKitchenOrder(ctx, models.KitchenTicket{OrderID: "o1"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

type publishFunc func() error

func (f publishFunc) PublishWithContext(context.Context, string, string, bool, bool, amqp.Publishing) error {
	return f()
}

type recordingQueue struct{ tickets []models.KitchenTicket }

func (q *recordingQueue) SubmitKitchenOrder(_ context.Context, t models.KitchenTicket) error {
	q.tickets = append(q.tickets, t)
	return nil
}

func TestNewDefaultsToHTTPQueue(t *testing.T) {
	httpQueue := &recordingQueue{}
	q, closeFn, err := New(config.KitchenConfig{Transport: config.KitchenTransportHTTP}, httpQueue)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer closeFn()
	if q != Queue(httpQueue) {
		t.Fatal("expected the http queue to be returned")
	}
}
