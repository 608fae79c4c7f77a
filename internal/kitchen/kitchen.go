// Package kitchen передаёт подтверждённые позиции заказа в очередь кухни.
package kitchen

import (
	"context"
	"fmt"

	"restaurant-admin/internal/config"
	"restaurant-admin/internal/models"
)

// Queue принимает тикеты кухни. Клиент API заказов реализует его напрямую.
type Queue interface {
	SubmitKitchenOrder(ctx context.Context, ticket models.KitchenTicket) error
}

// New выбирает транспорт из конфигурации. Возвращаемая функция закрытия никогда не nil.
func New(cfg config.KitchenConfig, httpQueue Queue) (Queue, func(), error) {
	switch cfg.Transport {
	case config.KitchenTransportAMQP:
		p, err := DialPublisher(cfg.RabbitMQ)
		if err != nil {
			return nil, func() {}, fmt.Errorf("kitchen: connect rabbitmq: %w", err)
		}
		return p, p.Close, nil
	default:
		return httpQueue, func() {}, nil
	}
}
