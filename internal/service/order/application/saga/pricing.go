// internal/service/order/application/saga/pricing.go
package saga

import (
	"sync"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"bazaar/internal/service/order/domain"
	"bazaar/internal/service/order/domain/port"
)

// PricingHandler 并发查询目录，为每个条目生成下单时刻的商品快照。
// 快照是不可变的: 下单之后目录改价不影响已生成的订单金额。
type PricingHandler struct {
	NextHandler
}

func (h *PricingHandler) Handle(checkoutCtx *CheckoutContext) error {
	ctx, span := checkoutCtx.Tracer.Start(checkoutCtx.Ctx, "saga.Pricing")
	defer span.End()

	products := make([]*port.ProductInfo, len(checkoutCtx.Lines))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i, line := range checkoutCtx.Lines {
		i, line := i, line
		g.Go(func() error {
			product, err := checkoutCtx.Catalog.GetProduct(gctx, line.ProductID)
			if err != nil {
				return errors.Wrapf(err, "failed to price product %s", line.ProductID)
			}
			mu.Lock()
			products[i] = product
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog lookup failed during pricing")
		return err
	}

	for i, line := range checkoutCtx.Lines {
		product := products[i]
		checkoutCtx.Order.AddItem(domain.OrderItem{
			ProductID:   product.ProductID,
			ProductName: product.Name,
			WarehouseID: line.WarehouseID,
			SellerID:    product.SellerID,
			Quantity:    line.Quantity,
			UnitPrice:   product.UnitPrice,
		})
	}

	span.AddEvent("Order items priced from catalog snapshot.")
	return h.executeNext(checkoutCtx)
}
