// internal/service/logistics/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/logistics/domain"
	"bazaar/internal/service/logistics/domain/port"
)

// DeliveryCoordinator 是配送域的应用服务。
// 它创建配送单、指派承运商、推进配送状态，并在关键节点向订单侧发同步命令。
type DeliveryCoordinator struct {
	deliveries domain.DeliveryRepository
	carriers   domain.CarrierRepository
	locations  domain.LocationRepository
	syncer     port.OrderSyncProducer
	publisher  port.LocationPublisher // 可为 nil，位置推送是可选的
	tracer     trace.Tracer
}

func NewDeliveryCoordinator(
	deliveries domain.DeliveryRepository,
	carriers domain.CarrierRepository,
	locations domain.LocationRepository,
	syncer port.OrderSyncProducer,
	publisher port.LocationPublisher,
	tracer trace.Tracer,
) *DeliveryCoordinator {
	return &DeliveryCoordinator{
		deliveries: deliveries,
		carriers:   carriers,
		locations:  locations,
		syncer:     syncer,
		publisher:  publisher,
		tracer:     tracer,
	}
}

// CreateDelivery 为订单创建 PENDING 配送单。
// 同一订单重复请求返回已有配送单（1:1 约束下的幂等创建）。
func (s *DeliveryCoordinator) CreateDelivery(ctx context.Context, orderID string, pickup, dropoff domain.Address, currency string) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "logistics.CreateDelivery",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	existing, err := s.deliveries.FindByOrder(ctx, orderID)
	if err == nil {
		span.AddEvent("Delivery already exists for order, returning it.")
		return existing, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	delivery, err := domain.NewDelivery(orderID, pickup, dropoff, currency)
	if err != nil {
		return nil, err
	}
	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, errors.Wrap(err, "failed to save delivery")
	}

	deliveriesCreated.Inc()
	logger.Ctx(ctx).Info().
		Str("delivery_id", delivery.ID).
		Str("order_id", orderID).
		Msg("delivery created")
	return delivery, nil
}

// AssignCarrier 为 PENDING 配送单指派承运商。
// 承运商不存在或不可用时返回 ErrCarrierUnavailable。
func (s *DeliveryCoordinator) AssignCarrier(ctx context.Context, deliveryID, carrierID string, estimatedPickup, estimatedDelivery time.Time, cost float64) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "logistics.AssignCarrier",
		trace.WithAttributes(
			attribute.String("delivery.id", deliveryID),
			attribute.String("carrier.id", carrierID),
		))
	defer span.End()

	carrier, err := s.carriers.FindByID(ctx, carrierID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, errors.Wrapf(domain.ErrCarrierUnavailable, "carrier %s not registered", carrierID)
		}
		return nil, err
	}
	if !carrier.Available {
		return nil, errors.Wrapf(domain.ErrCarrierUnavailable, "carrier %s (%s)", carrier.ID, carrier.Name)
	}

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.AssignCarrier(carrierID, estimatedPickup, estimatedDelivery, cost); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, errors.Wrap(err, "failed to save delivery")
	}

	deliveriesAdvanced.WithLabelValues(string(domain.StatusAssigned)).Inc()
	logger.Ctx(ctx).Info().
		Str("delivery_id", delivery.ID).
		Str("carrier_id", carrierID).
		Msg("carrier assigned")
	return delivery, nil
}

// AdvanceStatus 沿序列推进配送状态，不允许跳步。
// 揽收（IN_TRANSIT）、送达和失败会向订单侧发同步命令。
func (s *DeliveryCoordinator) AdvanceStatus(ctx context.Context, deliveryID string, to domain.Status) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "logistics.AdvanceStatus",
		trace.WithAttributes(
			attribute.String("delivery.id", deliveryID),
			attribute.String("status.to", string(to)),
		))
	defer span.End()

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.Advance(to); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			advancesRejected.Inc()
		}
		span.RecordError(err)
		return nil, err
	}
	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, errors.Wrap(err, "failed to save delivery")
	}
	deliveriesAdvanced.WithLabelValues(string(to)).Inc()

	switch to {
	case domain.StatusInTransit:
		s.sendSync(ctx, span, delivery, domain.SyncPickedUp, "")
	case domain.StatusDelivered:
		s.sendSync(ctx, span, delivery, domain.SyncDelivered, "")
	case domain.StatusFailed:
		s.sendSync(ctx, span, delivery, domain.SyncFailed, delivery.Notes)
	}

	logger.Ctx(ctx).Info().
		Str("delivery_id", delivery.ID).
		Str("status", string(delivery.Status)).
		Msg("delivery advanced")
	return delivery, nil
}

// Fail 将配送单标记为失败并附上原因，向订单侧发 FAILED 同步。
func (s *DeliveryCoordinator) Fail(ctx context.Context, deliveryID, reason string) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "logistics.Fail",
		trace.WithAttributes(attribute.String("delivery.id", deliveryID)))
	defer span.End()

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.Advance(domain.StatusFailed); err != nil {
		span.RecordError(err)
		return nil, err
	}
	delivery.Notes = reason
	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, errors.Wrap(err, "failed to save delivery")
	}
	deliveriesAdvanced.WithLabelValues(string(domain.StatusFailed)).Inc()

	s.sendSync(ctx, span, delivery, domain.SyncFailed, reason)
	return delivery, nil
}

// CancelDelivery 取消配送单。orderCancelled 表示取消是由订单侧的取消级联
// 过来的——这种情况下不再回发同步命令，避免取消在两个域之间来回打转。
func (s *DeliveryCoordinator) CancelDelivery(ctx context.Context, deliveryID, reason string, orderCancelled bool) (*domain.Delivery, error) {
	ctx, span := s.tracer.Start(ctx, "logistics.CancelDelivery",
		trace.WithAttributes(attribute.String("delivery.id", deliveryID)))
	defer span.End()

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if err := delivery.Cancel(reason); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.deliveries.Save(ctx, delivery); err != nil {
		return nil, errors.Wrap(err, "failed to save delivery")
	}
	deliveriesAdvanced.WithLabelValues(string(domain.StatusCancelled)).Inc()

	if !orderCancelled {
		s.sendSync(ctx, span, delivery, domain.SyncCancelled, reason)
	}
	return delivery, nil
}

// ReportLocation 记录承运商位置并对外发布。只在配送进行中接受上报。
func (s *DeliveryCoordinator) ReportLocation(ctx context.Context, deliveryID string, latitude, longitude float64, note string) error {
	ctx, span := s.tracer.Start(ctx, "logistics.ReportLocation",
		trace.WithAttributes(attribute.String("delivery.id", deliveryID)))
	defer span.End()

	delivery, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return err
	}
	if delivery.Status.IsTerminal() || delivery.Status == domain.StatusPending {
		return errors.Wrapf(domain.ErrInvalidTransition,
			"delivery %s: location report in state %s", deliveryID, delivery.Status)
	}

	report := &domain.LocationReport{
		DeliveryID: delivery.ID,
		OrderID:    delivery.OrderID,
		Latitude:   latitude,
		Longitude:  longitude,
		Note:       note,
		ReportedAt: time.Now().Unix(),
	}
	if err := s.locations.Append(ctx, report); err != nil {
		return errors.Wrap(err, "failed to store location report")
	}
	locationReports.Inc()

	if s.publisher != nil {
		if err := s.publisher.PublishLocation(ctx, report); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("delivery_id", deliveryID).
				Msg("failed to publish location report")
		}
	}
	return nil
}

// GetDelivery 返回配送单。
func (s *DeliveryCoordinator) GetDelivery(ctx context.Context, deliveryID string) (*domain.Delivery, error) {
	return s.deliveries.FindByID(ctx, deliveryID)
}

// GetDeliveryByOrder 按订单返回配送单。
func (s *DeliveryCoordinator) GetDeliveryByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	return s.deliveries.FindByOrder(ctx, orderID)
}

// LocationHistory 返回一张配送单的位置上报历史。
func (s *DeliveryCoordinator) LocationHistory(ctx context.Context, deliveryID string) ([]*domain.LocationReport, error) {
	return s.locations.ListByDelivery(ctx, deliveryID)
}

// RegisterCarrier 向注册表加入一个承运商。
func (s *DeliveryCoordinator) RegisterCarrier(ctx context.Context, name, phone, vehicle string) (*domain.Carrier, error) {
	carrier := domain.NewCarrier(name, phone, vehicle)
	if err := s.carriers.Save(ctx, carrier); err != nil {
		return nil, errors.Wrap(err, "failed to save carrier")
	}
	return carrier, nil
}

// SetCarrierAvailability 上线/下线一个承运商。
func (s *DeliveryCoordinator) SetCarrierAvailability(ctx context.Context, carrierID string, available bool) error {
	carrier, err := s.carriers.FindByID(ctx, carrierID)
	if err != nil {
		return err
	}
	carrier.Available = available
	carrier.UpdatedAt = time.Now()
	return s.carriers.Save(ctx, carrier)
}

// ListCarriers 返回注册表中的全部承运商。
func (s *DeliveryCoordinator) ListCarriers(ctx context.Context) ([]*domain.Carrier, error) {
	return s.carriers.List(ctx)
}

// sendSync 发送状态同步命令。同步驱动订单状态机，失败必须可见。
func (s *DeliveryCoordinator) sendSync(ctx context.Context, span trace.Span, delivery *domain.Delivery, status, reason string) {
	cmd := domain.NewStatusSync(delivery, status, reason)
	cmd.TraceID = span.SpanContext().TraceID().String()
	if err := s.syncer.SendStatusSync(ctx, cmd); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "status sync send failed")
		logger.Ctx(ctx).Error().Err(err).
			Str("delivery_id", delivery.ID).
			Str("order_id", delivery.OrderID).
			Str("status", status).
			Msg("failed to send delivery status sync")
	}
}
