// internal/service/order/application/service.go
package application

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/order/application/saga"
	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// OrderApplicationService 负责订单生命周期的业务流程编排。
// 结算走 Saga 责任链，其余流转在 per-order 锁内串行执行。
type OrderApplicationService struct {
	orderRepo    domain.OrderRepository
	catalog      port.ProductCatalog
	stock        port.StockReserver
	cart         port.CartProvider
	payment      port.PaymentGateway
	delivery     port.DeliveryRequester
	notifier     port.NotificationProducer
	policies     port.PolicyEngine
	returnWindow time.Duration
	tracer       trace.Tracer

	locks *orderLocks
}

func NewOrderApplicationService(
	orderRepo domain.OrderRepository,
	catalog port.ProductCatalog,
	stock port.StockReserver,
	cart port.CartProvider,
	payment port.PaymentGateway,
	delivery port.DeliveryRequester,
	notifier port.NotificationProducer,
	policies port.PolicyEngine,
	returnWindow time.Duration,
	tracer trace.Tracer,
) *OrderApplicationService {
	return &OrderApplicationService{
		orderRepo:    orderRepo,
		catalog:      catalog,
		stock:        stock,
		cart:         cart,
		payment:      payment,
		delivery:     delivery,
		notifier:     notifier,
		policies:     policies,
		returnWindow: returnWindow,
		tracer:       tracer,
		locks:        newOrderLocks(),
	}
}

// Checkout 直接结算: 把给定条目转成一张 PENDING 订单并为每个条目预占库存。
// 任何一步失败都触发逆序补偿，调用方看到的结算是原子的——要么整单成功，要么毫无痕迹。
func (s *OrderApplicationService) Checkout(ctx context.Context, req *CheckoutRequest) (*OrderView, error) {
	return s.runCheckout(ctx, req, nil)
}

// CheckoutCart 购物车结算: 条目取自客户的活动购物车，
// 订单与预占全部落库之后才清空购物车。
func (s *OrderApplicationService) CheckoutCart(ctx context.Context, req *CheckoutCartRequest) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.CheckoutCart",
		trace.WithAttributes(attribute.String("customer.id", req.CustomerID)))
	defer span.End()

	lines, err := s.cart.GetLines(ctx, req.CustomerID)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Wrap(err, "failed to load cart for checkout")
	}

	return s.runCheckout(ctx, &CheckoutRequest{
		CustomerID:      req.CustomerID,
		Lines:           lines,
		DeliveryMethod:  req.DeliveryMethod,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Currency:        req.Currency,
		Notes:           req.Notes,
	}, s.cart)
}

func (s *OrderApplicationService) runCheckout(ctx context.Context, req *CheckoutRequest, cart port.CartProvider) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.Checkout",
		trace.WithAttributes(attribute.String("customer.id", req.CustomerID)))
	defer span.End()

	order, err := domain.NewOrder(req.CustomerID,
		domain.DeliveryMethod(req.DeliveryMethod),
		domain.PaymentMethod(req.PaymentMethod),
		req.DeliveryAddress, req.Currency)
	if err != nil {
		return nil, err
	}
	order.Notes = req.Notes

	checkoutCtx := &saga.CheckoutContext{
		Ctx:      ctx,
		Order:    order,
		Tracer:   s.tracer,
		Lines:    req.Lines,
		Catalog:  s.catalog,
		Stock:    s.stock,
		Repo:     s.orderRepo,
		Cart:     cart,
		Notifier: s.notifier,
	}

	if err := s.buildCheckoutChain().Handle(checkoutCtx); err != nil {
		checkoutsFailed.Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout chain failed")
		checkoutCtx.TriggerCompensation(ctx)
		return nil, err
	}

	checkoutsTotal.Inc()
	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("customer_id", order.CustomerID).
		Float64("amount", order.TotalAmount).
		Msg("checkout completed, order pending")
	return toOrderView(order), nil
}

func (s *OrderApplicationService) buildCheckoutChain() saga.Handler {
	chain := new(saga.ValidationHandler)
	chain.
		SetNext(new(saga.PricingHandler)).
		SetNext(new(saga.ReserveHandler)).
		SetNext(new(saga.PersistOrderHandler)).
		SetNext(new(saga.ClearCartHandler)).
		SetNext(new(saga.NotifyHandler))
	return chain
}

// Confirm 确认订单: 先向支付服务确认支付结果，再做 PENDING -> CONFIRMED。
// 支付调用在 per-order 锁之外，网络等待不占锁。
func (s *OrderApplicationService) Confirm(ctx context.Context, orderID string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.Confirm",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.payment.ConfirmPayment(ctx, order.ID, order.TotalAmount, order.Currency, string(order.PaymentMethod)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "payment confirmation failed")
		return nil, errors.Wrapf(err, "payment not confirmed for order %s", orderID)
	}

	return s.transition(ctx, orderID, func(order *domain.Order) error {
		return order.Confirm()
	})
}

// StartProcessing 卖家开始备货: CONFIRMED -> PROCESSING。
func (s *OrderApplicationService) StartProcessing(ctx context.Context, orderID string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.StartProcessing")
	defer span.End()

	return s.transition(ctx, orderID, func(order *domain.Order) error {
		return order.StartProcessing()
	})
}

// MarkReady 备货完成: PROCESSING -> READY_FOR_DELIVERY，然后请求物流创建配送单。
// 配送单创建失败不回滚状态——订单确实已备好，失败返回给调用方重试。
func (s *OrderApplicationService) MarkReady(ctx context.Context, orderID string, pickupAddress domain.Address) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.MarkReady")
	defer span.End()

	view, err := s.transition(ctx, orderID, func(order *domain.Order) error {
		return order.MarkReadyForDelivery()
	})
	if err != nil {
		return nil, err
	}

	deliveryID, err := s.delivery.RequestDelivery(ctx, &port.DeliveryRequest{
		OrderID:         view.OrderID,
		PickupAddress:   pickupAddress,
		DeliveryAddress: view.DeliveryAddress,
		Currency:        view.Currency,
	})
	if err != nil {
		span.RecordError(err)
		logger.Ctx(ctx).Error().Err(err).
			Str("order_id", orderID).
			Msg("failed to request delivery creation")
		return view, errors.Wrapf(err, "order %s is ready but delivery creation failed", orderID)
	}
	span.SetAttributes(attribute.String("delivery.id", deliveryID))
	return view, nil
}

// MarkInDelivery 承运商揽收: READY_FOR_DELIVERY -> IN_DELIVERY。
func (s *OrderApplicationService) MarkInDelivery(ctx context.Context, orderID string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.MarkInDelivery")
	defer span.End()

	return s.transition(ctx, orderID, func(order *domain.Order) error {
		return order.MarkInDelivery()
	})
}

// MarkDelivered 订单送达: 先提交每个条目的库存预占（幂等），再做状态流转。
// 提交失败时订单停留在 IN_DELIVERY，等待重试。
func (s *OrderApplicationService) MarkDelivered(ctx context.Context, orderID string, at time.Time) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.MarkDelivered")
	defer span.End()

	return s.transition(ctx, orderID, func(order *domain.Order) error {
		if !domain.CanTransition(order.Status, domain.StatusDelivered) {
			return errors.Wrapf(domain.ErrInvalidTransition,
				"order %s: %s -> %s", order.ID, order.Status, domain.StatusDelivered)
		}
		for _, item := range order.Items {
			if item.ReservationID == "" {
				continue
			}
			if err := s.stock.Commit(ctx, item.ReservationID); err != nil {
				return errors.Wrapf(err, "failed to commit reservation %s", item.ReservationID)
			}
		}
		return order.MarkDelivered(at)
	})
}

// Cancel 取消订单并释放所有库存预占。只允许从 PENDING/CONFIRMED/PROCESSING 取消。
func (s *OrderApplicationService) Cancel(ctx context.Context, orderID, reason string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.Cancel",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	return s.transition(ctx, orderID, func(order *domain.Order) error {
		if err := order.Cancel(reason); err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.ReservationID == "" {
				continue
			}
			// 释放是幂等的，部分失败记录后继续，过期清扫是兜底
			if err := s.stock.Release(ctx, item.ReservationID); err != nil {
				logger.Ctx(ctx).Error().Err(err).
					Str("order_id", order.ID).
					Str("reservation_id", item.ReservationID).
					Msg("failed to release reservation on cancel")
			}
		}
		return nil
	})
}

// Return 退货: 送达后的退货时限内有效。库存是否回仓由策略引擎决定，
// 默认不回仓；回仓时把已出库的数量加回可售池。
func (s *OrderApplicationService) Return(ctx context.Context, orderID string) (*OrderView, error) {
	ctx, span := s.tracer.Start(ctx, "order.Return",
		trace.WithAttributes(attribute.String("order.id", orderID)))
	defer span.End()

	view, err := s.transition(ctx, orderID, func(order *domain.Order) error {
		return order.Return(time.Now(), s.returnWindow)
	})
	if err != nil {
		return nil, err
	}

	restock, err := s.policies.ShouldRestockOnReturn(ctx, s.policyFact(view))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("order_id", orderID).
			Msg("restock policy evaluation failed, defaulting to no restock")
		restock = false
	}
	if restock {
		for _, item := range view.Items {
			if err := s.stock.Restock(ctx, item.ProductID, item.WarehouseID, item.Quantity); err != nil {
				logger.Ctx(ctx).Error().Err(err).
					Str("order_id", orderID).
					Str("product_id", item.ProductID).
					Msg("failed to restock returned item")
			}
		}
		span.AddEvent("Returned items restocked per policy.")
	}
	return view, nil
}

// GetOrder 返回订单视图。
func (s *OrderApplicationService) GetOrder(ctx context.Context, orderID string) (*OrderView, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toOrderView(order), nil
}

// SearchOrders 按条件分页检索订单。
func (s *OrderApplicationService) SearchOrders(ctx context.Context, query domain.SearchQuery) (*SearchResult, error) {
	ctx, span := s.tracer.Start(ctx, "order.Search")
	defer span.End()

	if query.Limit <= 0 {
		query.Limit = 20
	}
	if query.Page <= 0 {
		query.Page = 1
	}
	orders, total, err := s.orderRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	result := &SearchResult{
		Orders: make([]*OrderView, 0, len(orders)),
		Total:  total,
		Page:   query.Page,
		Limit:  query.Limit,
	}
	for _, order := range orders {
		result.Orders = append(result.Orders, toOrderView(order))
	}
	return result, nil
}

// HandleDeliveryStatusSync 消费物流侧的终态同步命令并驱动订单状态机。
// 这是物流影响订单的唯一通道，订单状态的所有权始终在本服务。
func (s *OrderApplicationService) HandleDeliveryStatusSync(ctx context.Context, cmd *domain.DeliveryStatusSynced) error {
	ctx, span := s.tracer.Start(ctx, "order.HandleDeliveryStatusSync",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("order.id", cmd.OrderID),
			attribute.String("delivery.status", cmd.Status),
		))
	defer span.End()

	switch cmd.Status {
	case domain.SyncPickedUp:
		_, err := s.MarkInDelivery(ctx, cmd.OrderID)
		return err

	case domain.SyncDelivered:
		at := time.Unix(cmd.OccurredAt, 0)
		if cmd.OccurredAt == 0 {
			at = time.Now()
		}
		_, err := s.MarkDelivered(ctx, cmd.OrderID, at)
		return err

	case domain.SyncFailed:
		return s.handleDeliveryFailure(ctx, cmd)

	case domain.SyncCancelled:
		return s.handleDeliveryCancelled(ctx, cmd)

	default:
		logger.Ctx(ctx).Warn().
			Str("status", cmd.Status).
			Str("order_id", cmd.OrderID).
			Msg("unknown delivery sync status, skipping")
		return nil
	}
}

// handleDeliveryFailure 按策略处置配送失败: 退回备货重新发货，或取消订单。
func (s *OrderApplicationService) handleDeliveryFailure(ctx context.Context, cmd *domain.DeliveryStatusSynced) error {
	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}

	reaction, err := s.policies.ReactOnDeliveryFailure(ctx, s.policyFact(toOrderView(order)))
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).
			Str("order_id", cmd.OrderID).
			Msg("delivery failure policy evaluation failed, defaulting to reopen")
		reaction = port.ReactionReopen
	}

	switch reaction {
	case port.ReactionCancel:
		// 取消只允许从 PROCESSING，先把订单收回备货状态
		if _, err := s.transition(ctx, cmd.OrderID, func(order *domain.Order) error {
			return order.ReopenAfterDeliveryFailure()
		}); err != nil {
			return err
		}
		_, err = s.Cancel(ctx, cmd.OrderID, "delivery failed: "+cmd.Reason)
		return err
	default:
		_, err = s.transition(ctx, cmd.OrderID, func(order *domain.Order) error {
			return order.ReopenAfterDeliveryFailure()
		})
		return err
	}
}

// handleDeliveryCancelled 物流侧取消配送。订单已经取消时静默跳过，
// 避免取消级联来回打转。
func (s *OrderApplicationService) handleDeliveryCancelled(ctx context.Context, cmd *domain.DeliveryStatusSynced) error {
	order, err := s.orderRepo.FindByID(ctx, cmd.OrderID)
	if err != nil {
		return err
	}
	if order.Status == domain.StatusCancelled {
		logger.Ctx(ctx).Info().
			Str("order_id", cmd.OrderID).
			Msg("delivery cancelled for already cancelled order, skipping")
		return nil
	}
	if order.Status == domain.StatusReadyForDelivery || order.Status == domain.StatusInDelivery {
		if _, err := s.transition(ctx, cmd.OrderID, func(order *domain.Order) error {
			return order.ReopenAfterDeliveryFailure()
		}); err != nil {
			return err
		}
	}
	_, err = s.Cancel(ctx, cmd.OrderID, "delivery cancelled: "+cmd.Reason)
	return err
}

// transition 在 per-order 锁内加载、流转、保存一张订单，并发出变更通知。
// 拿到锁之后重新读取，避免基于过期快照做流转判断。
func (s *OrderApplicationService) transition(ctx context.Context, orderID string, mutate func(*domain.Order) error) (*OrderView, error) {
	release, err := s.locks.acquire(ctx, orderID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to acquire order lock")
	}
	defer release()

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	from := order.Status
	if err := mutate(order); err != nil {
		if errors.Is(err, domain.ErrInvalidTransition) {
			transitionsRejected.Inc()
		}
		return nil, err
	}
	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, errors.Wrap(err, "failed to save order")
	}
	transitionsTotal.WithLabelValues(string(order.Status)).Inc()

	if s.notifier != nil && order.Status != from {
		event := domain.NewOrderStatusChanged(order, from)
		if err := s.notifier.SendStatusChanged(ctx, event); err != nil {
			logger.Ctx(ctx).Warn().Err(err).
				Str("order_id", order.ID).
				Msg("failed to publish order status notification")
		}
	}

	logger.Ctx(ctx).Info().
		Str("order_id", order.ID).
		Str("from", string(from)).
		Str("to", string(order.Status)).
		Msg("order transitioned")
	return toOrderView(order), nil
}

func (s *OrderApplicationService) policyFact(view *OrderView) port.PolicyFact {
	fact := port.PolicyFact{
		OrderID:     view.OrderID,
		CustomerID:  view.CustomerID,
		Status:      string(view.Status),
		TotalAmount: view.TotalAmount,
		Currency:    view.Currency,
		ItemCount:   len(view.Items),
	}
	if view.ActualDelivery != nil {
		fact.DaysSinceDelivery = time.Since(*view.ActualDelivery).Hours() / 24
	}
	return fact
}
