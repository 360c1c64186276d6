// internal/service/logistics/infrastructure/adapter/order_sync_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/logistics/domain"
)

// OrderSyncKafkaAdapter 实现了 port.OrderSyncProducer，
// 把配送终态同步命令发到订单侧消费的主题。
// 消息键是 orderID，同一订单的同步命令保持分区内有序。
type OrderSyncKafkaAdapter struct {
	writer *kafka.Writer
}

func NewOrderSyncKafkaAdapter(writer *kafka.Writer) *OrderSyncKafkaAdapter {
	return &OrderSyncKafkaAdapter{writer: writer}
}

func (a *OrderSyncKafkaAdapter) SendStatusSync(ctx context.Context, cmd *domain.DeliveryStatusSynced) error {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return errors.Wrap(err, "failed to marshal status sync command")
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(cmd.OrderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (a *OrderSyncKafkaAdapter) Close() error {
	return a.writer.Close()
}
