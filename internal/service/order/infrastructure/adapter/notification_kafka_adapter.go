// internal/service/order/infrastructure/adapter/notification_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/domain"
)

// NotificationKafkaAdapter 实现了 port.NotificationProducer，
// 把订单状态变更事件发到 Kafka，投递是尽力而为的。
type NotificationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewNotificationKafkaAdapter(writer *kafka.Writer) *NotificationKafkaAdapter {
	return &NotificationKafkaAdapter{writer: writer}
}

func (a *NotificationKafkaAdapter) SendStatusChanged(ctx context.Context, event *domain.OrderStatusChanged) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return errors.Wrap(err, "failed to marshal order status event")
	}
	// mq.ProduceMessage 会自动注入追踪上下文到消息头
	return mq.ProduceMessage(ctx, a.writer, []byte(event.OrderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (a *NotificationKafkaAdapter) Close() error {
	return a.writer.Close()
}
