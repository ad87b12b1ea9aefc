package rabbitmq

// ExchangeName обменник рассылки рилсов.
const ExchangeName = "reels"

// Имена очереди и ключа маршрутизации задач на доставку.
const (
	DeliveryQueue      = "reels.delivery"
	DeliveryRoutingKey = "delivery"
)

// QueueConfig описывает очередь и её ключ маршрутизации.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetDeliveryQueues возвращает очереди, которые объявляют планировщик и курьер.
func GetDeliveryQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: DeliveryQueue, RoutingKey: DeliveryRoutingKey},
	}
}
