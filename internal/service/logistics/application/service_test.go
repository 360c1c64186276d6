package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"bazaar/internal/service/logistics/domain"
	"bazaar/internal/service/logistics/infrastructure"
)

// Mock OrderSyncProducer
type mockSyncProducer struct {
	mu   sync.Mutex
	cmds []*domain.DeliveryStatusSynced
}

func (m *mockSyncProducer) SendStatusSync(ctx context.Context, cmd *domain.DeliveryStatusSynced) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmds = append(m.cmds, cmd)
	return nil
}

func (m *mockSyncProducer) sent() []*domain.DeliveryStatusSynced {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.DeliveryStatusSynced(nil), m.cmds...)
}

func newTestCoordinator(t *testing.T) (*DeliveryCoordinator, *mockSyncProducer) {
	t.Helper()
	syncer := &mockSyncProducer{}
	svc := NewDeliveryCoordinator(
		infrastructure.NewMemoryDeliveryRepository(),
		infrastructure.NewMemoryCarrierRepository(),
		infrastructure.NewMemoryLocationRepository(),
		syncer,
		nil,
		otel.Tracer("test"),
	)
	return svc, syncer
}

func addresses() (domain.Address, domain.Address) {
	pickup := domain.Address{Street: "Складская", House: "7", City: "Москва", Country: "RU"}
	dropoff := domain.Address{Street: "Тверская", House: "1", City: "Москва", Country: "RU"}
	return pickup, dropoff
}

func mustCreate(t *testing.T, svc *DeliveryCoordinator, orderID string) *domain.Delivery {
	t.Helper()
	pickup, dropoff := addresses()
	delivery, err := svc.CreateDelivery(context.Background(), orderID, pickup, dropoff, "RUB")
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	return delivery
}

func mustAssign(t *testing.T, svc *DeliveryCoordinator, deliveryID string) {
	t.Helper()
	carrier, err := svc.RegisterCarrier(context.Background(), "Иванов", "+7-900-000-00-00", "van")
	if err != nil {
		t.Fatalf("register carrier: %v", err)
	}
	_, err = svc.AssignCarrier(context.Background(), deliveryID, carrier.ID,
		time.Now().Add(time.Hour), time.Now().Add(4*time.Hour), 350)
	if err != nil {
		t.Fatalf("assign carrier: %v", err)
	}
}

func TestCreateDelivery_IdempotentPerOrder(t *testing.T) {
	svc, _ := newTestCoordinator(t)

	first := mustCreate(t, svc, "order-1")
	if first.Status != domain.StatusPending {
		t.Errorf("expected PENDING, got %s", first.Status)
	}

	second := mustCreate(t, svc, "order-1")
	if second.ID != first.ID {
		t.Errorf("expected same delivery for the same order, got %s and %s", first.ID, second.ID)
	}
}

func TestAssignCarrier_OnlyFromPending(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	carrier, _ := svc.RegisterCarrier(context.Background(), "Петров", "+7-900-000-00-01", "bike")
	_, err := svc.AssignCarrier(context.Background(), delivery.ID, carrier.ID,
		time.Now(), time.Now().Add(time.Hour), 100)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on second assign, got %v", err)
	}
}

func TestAssignCarrier_Unavailable(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")

	carrier, err := svc.RegisterCarrier(context.Background(), "Сидоров", "+7-900-000-00-02", "van")
	if err != nil {
		t.Fatalf("register carrier: %v", err)
	}
	if err := svc.SetCarrierAvailability(context.Background(), carrier.ID, false); err != nil {
		t.Fatalf("set availability: %v", err)
	}

	_, err = svc.AssignCarrier(context.Background(), delivery.ID, carrier.ID,
		time.Now(), time.Now().Add(time.Hour), 100)
	if !errors.Is(err, domain.ErrCarrierUnavailable) {
		t.Fatalf("expected ErrCarrierUnavailable, got %v", err)
	}

	// 未注册的承运商同样是 CarrierUnavailable
	_, err = svc.AssignCarrier(context.Background(), delivery.ID, "carrier-ghost",
		time.Now(), time.Now().Add(time.Hour), 100)
	if !errors.Is(err, domain.ErrCarrierUnavailable) {
		t.Fatalf("expected ErrCarrierUnavailable for unknown carrier, got %v", err)
	}
}

func TestAdvanceStatus_NoSkipping(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	// ASSIGNED -> IN_TRANSIT 跳过了 PICKUP_SCHEDULED
	_, err := svc.AdvanceStatus(context.Background(), delivery.ID, domain.StatusInTransit)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on skip, got %v", err)
	}

	// 按序推进全部成功
	for _, status := range []domain.Status{
		domain.StatusPickupScheduled,
		domain.StatusInTransit,
		domain.StatusOutForDelivery,
		domain.StatusDelivered,
	} {
		if _, err := svc.AdvanceStatus(context.Background(), delivery.ID, status); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}
}

func TestAdvanceStatus_AssignOnlyViaAssignCarrier(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")

	// 绕过 AssignCarrier 直接推进到 ASSIGNED 会跳过承运商可用性检查
	_, err := svc.AdvanceStatus(context.Background(), delivery.ID, domain.StatusAssigned)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition advancing to ASSIGNED, got %v", err)
	}

	got, err := svc.GetDelivery(context.Background(), delivery.ID)
	if err != nil {
		t.Fatalf("get delivery: %v", err)
	}
	if got.Status != domain.StatusPending || got.CarrierID != "" {
		t.Errorf("expected delivery untouched (PENDING, no carrier), got %s carrier %q", got.Status, got.CarrierID)
	}
}

func TestAdvanceStatus_BackwardRejected(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)
	if _, err := svc.AdvanceStatus(context.Background(), delivery.ID, domain.StatusPickupScheduled); err != nil {
		t.Fatalf("advance: %v", err)
	}

	_, err := svc.AdvanceStatus(context.Background(), delivery.ID, domain.StatusAssigned)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition going backward, got %v", err)
	}
}

func TestDelivered_EmitsSyncAndTimestamps(t *testing.T) {
	svc, syncer := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	for _, status := range []domain.Status{
		domain.StatusPickupScheduled,
		domain.StatusInTransit,
		domain.StatusOutForDelivery,
		domain.StatusDelivered,
	} {
		if _, err := svc.AdvanceStatus(context.Background(), delivery.ID, status); err != nil {
			t.Fatalf("advance to %s: %v", status, err)
		}
	}

	final, err := svc.GetDelivery(context.Background(), delivery.ID)
	if err != nil {
		t.Fatalf("get delivery: %v", err)
	}
	if final.ActualPickup == nil {
		t.Error("expected actual pickup time recorded at IN_TRANSIT")
	}
	if final.ActualDelivery == nil {
		t.Error("expected actual delivery time recorded at DELIVERED")
	}

	cmds := syncer.sent()
	if len(cmds) != 2 {
		t.Fatalf("expected PICKED_UP and DELIVERED syncs, got %d", len(cmds))
	}
	if cmds[0].Status != domain.SyncPickedUp || cmds[1].Status != domain.SyncDelivered {
		t.Errorf("unexpected sync sequence: %s, %s", cmds[0].Status, cmds[1].Status)
	}
	if cmds[1].OrderID != "order-1" {
		t.Errorf("sync carries wrong order id %s", cmds[1].OrderID)
	}
}

func TestFail_FromAnyNonTerminal(t *testing.T) {
	svc, syncer := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	failed, err := svc.Fail(context.Background(), delivery.ID, "посылка повреждена")
	if err != nil {
		t.Fatalf("fail: %v", err)
	}
	if failed.Status != domain.StatusFailed {
		t.Errorf("expected FAILED, got %s", failed.Status)
	}

	cmds := syncer.sent()
	if len(cmds) != 1 || cmds[0].Status != domain.SyncFailed {
		t.Fatalf("expected single FAILED sync, got %v", cmds)
	}
	if cmds[0].Reason != "посылка повреждена" {
		t.Errorf("expected failure reason on sync, got %q", cmds[0].Reason)
	}

	// 终态之后不可再推进
	if _, err := svc.AdvanceStatus(context.Background(), delivery.ID, domain.StatusDelivered); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after FAILED, got %v", err)
	}
}

func TestCancel_SuppressedWhenOrderCancelled(t *testing.T) {
	svc, syncer := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	// 订单侧发起的取消级联: 不回发同步,避免来回打转
	cancelled, err := svc.CancelDelivery(context.Background(), delivery.ID, "заказ отменён", true)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Errorf("expected CANCELLED, got %s", cancelled.Status)
	}
	if len(syncer.sent()) != 0 {
		t.Errorf("expected no sync for order-initiated cancel, got %d", len(syncer.sent()))
	}
}

func TestCancel_NotifiesWhenLogisticsInitiated(t *testing.T) {
	svc, syncer := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")
	mustAssign(t, svc, delivery.ID)

	if _, err := svc.CancelDelivery(context.Background(), delivery.ID, "нет машин", false); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	cmds := syncer.sent()
	if len(cmds) != 1 || cmds[0].Status != domain.SyncCancelled {
		t.Fatalf("expected CANCELLED sync, got %v", cmds)
	}
}

func TestReportLocation_OnlyWhileActive(t *testing.T) {
	svc, _ := newTestCoordinator(t)
	delivery := mustCreate(t, svc, "order-1")

	// PENDING 阶段还没有承运商,不接受位置上报
	err := svc.ReportLocation(context.Background(), delivery.ID, 55.75, 37.61, "")
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition in PENDING, got %v", err)
	}

	mustAssign(t, svc, delivery.ID)
	if err := svc.ReportLocation(context.Background(), delivery.ID, 55.75, 37.61, "выехал со склада"); err != nil {
		t.Fatalf("report location: %v", err)
	}
	if err := svc.ReportLocation(context.Background(), delivery.ID, 55.76, 37.62, ""); err != nil {
		t.Fatalf("report location: %v", err)
	}

	history, err := svc.LocationHistory(context.Background(), delivery.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(history))
	}
	if history[0].Note != "выехал со склада" {
		t.Errorf("expected note preserved, got %q", history[0].Note)
	}
}
