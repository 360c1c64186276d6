// internal/service/logistics/infrastructure/adapter/location_kafka_adapter.go
package adapter

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/logistics/domain"
)

// LocationKafkaAdapter 实现了 port.LocationPublisher，
// 把承运商位置事件发到推送网关订阅的主题。
type LocationKafkaAdapter struct {
	writer *kafka.Writer
}

func NewLocationKafkaAdapter(writer *kafka.Writer) *LocationKafkaAdapter {
	return &LocationKafkaAdapter{writer: writer}
}

func (a *LocationKafkaAdapter) PublishLocation(ctx context.Context, report *domain.LocationReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "failed to marshal location report")
	}
	return mq.ProduceMessage(ctx, a.writer, []byte(report.OrderID), payload)
}

// Close 关闭底层的 Kafka writer。
func (a *LocationKafkaAdapter) Close() error {
	return a.writer.Close()
}
