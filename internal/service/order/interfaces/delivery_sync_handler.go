// internal/service/order/interfaces/delivery_sync_handler.go
package interfaces

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/pkg/mq"
	"bazaar/internal/service/order/application"
	"bazaar/internal/service/order/domain"
)

// DeliverySyncConsumerAdapter 是一个驱动适配器，
// 监听物流侧的终态同步命令并驱动订单应用服务。
type DeliverySyncConsumerAdapter struct {
	reader  *kafka.Reader
	appSvc  *application.OrderApplicationService
	wg      sync.WaitGroup
	stopped atomic.Bool
}

// NewDeliverySyncConsumerAdapter 创建一个新的 Kafka 消费者适配器。
func NewDeliverySyncConsumerAdapter(reader *kafka.Reader, appSvc *application.OrderApplicationService) *DeliverySyncConsumerAdapter {
	return &DeliverySyncConsumerAdapter{reader: reader, appSvc: appSvc}
}

// Start 开始监听同步主题。这是一个长期运行的方法。
func (a *DeliverySyncConsumerAdapter) Start(ctx context.Context) error {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		logger.Ctx(ctx).Info().
			Str("topic", a.reader.Config().Topic).
			Msg("delivery sync consumer started")
		for {
			if a.stopped.Load() {
				return
			}
			msg, err := a.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					logger.Ctx(ctx).Info().Msg("delivery sync consumer shutting down")
					return
				}
				logger.Ctx(ctx).Error().Err(err).Msg("could not read sync message, retrying")
				time.Sleep(1 * time.Second)
				continue
			}

			propagator := otel.GetTextMapPropagator()
			headerCarrier := mq.KafkaHeaderCarrier(msg.Headers)
			newCtx := propagator.Extract(ctx, &headerCarrier)

			a.processMessage(newCtx, msg)

			if err := a.reader.CommitMessages(ctx, msg); err != nil {
				logger.Ctx(ctx).Error().Err(err).Msg("failed to commit sync messages")
			}
		}
	}()
	return nil
}

// Stop 优雅地停止消费者。
func (a *DeliverySyncConsumerAdapter) Stop(ctx context.Context) {
	a.stopped.Store(true)
	a.reader.Close()
	a.wg.Wait()
	logger.Ctx(ctx).Info().Msg("delivery sync consumer stopped")
}

// processMessage 反序列化同步命令并调用应用服务。
func (a *DeliverySyncConsumerAdapter) processMessage(ctx context.Context, msg kafka.Message) {
	var cmd domain.DeliveryStatusSynced
	if err := json.Unmarshal(msg.Value, &cmd); err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to unmarshal sync command, skipping message")
		return
	}

	if err := a.appSvc.HandleDeliveryStatusSync(ctx, &cmd); err != nil {
		// 同步失败留给物流侧重发或人工介入，这里不阻塞消费进度
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", cmd.OrderID).
			Str("delivery_id", cmd.DeliveryID).
			Str("status", cmd.Status).
			Msg("failed to apply delivery status sync")
	}
}
