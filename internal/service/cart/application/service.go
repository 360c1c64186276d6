// internal/service/cart/application/service.go
package application

import (
	"context"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"bazaar/internal/pkg/logger"
	"bazaar/internal/service/cart/domain"
	"bazaar/internal/service/cart/domain/port"
)

const defaultCurrency = "RUB"

// CartService 是购物车的应用服务。
// 加购时做一次非预占的可售量软检查；金额永远在读取时重算。
type CartService struct {
	carts        domain.CartRepository
	catalog      port.ProductCatalog
	availability port.AvailabilityChecker
	tracer       trace.Tracer

	// priceGroup 合并同一商品的并发价格查询，避免读购物车时打爆目录服务
	priceGroup singleflight.Group
}

func NewCartService(
	carts domain.CartRepository,
	catalog port.ProductCatalog,
	availability port.AvailabilityChecker,
	tracer trace.Tracer,
) *CartService {
	return &CartService{
		carts:        carts,
		catalog:      catalog,
		availability: availability,
		tracer:       tracer,
	}
}

// AddItem 向客户的购物车加入商品，购物车不存在时创建。
// 同一 (productID, warehouseID) 的条目数量累加。
// 可售量不足时返回 ErrOutOfStock——这是建议性检查，结算时会重新校验并真正预占。
func (s *CartService) AddItem(ctx context.Context, customerID, productID, warehouseID string, quantity int64) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.AddItem", trace.WithAttributes(
		attribute.String("customer.id", customerID),
		attribute.String("product.id", productID),
	))
	defer span.End()

	if quantity <= 0 {
		return nil, errors.Wrapf(domain.ErrInvalidQuantity, "add quantity %d", quantity)
	}

	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if errors.Is(err, domain.ErrNotFound) {
		cart = domain.NewCart(customerID, defaultCurrency)
	} else if err != nil {
		return nil, err
	}

	// 软检查用合并后的数量，客户多次加购同一商品时仍能尽早发现超卖
	merged := quantity
	for _, item := range cart.Items {
		if item.ProductID == productID && item.WarehouseID == warehouseID {
			merged += item.Quantity
		}
	}
	if err := s.checkAvailability(ctx, productID, warehouseID, merged); err != nil {
		return nil, err
	}

	if _, err := cart.MergeItem(productID, warehouseID, quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "failed to save cart")
	}
	return s.buildView(ctx, cart)
}

// UpdateItemQuantity 修改条目数量并重新做可售量软检查。
// quantity <= 0 返回 ErrInvalidQuantity（删除条目请走 RemoveItem）。
func (s *CartService) UpdateItemQuantity(ctx context.Context, customerID, itemID string, quantity int64) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.UpdateItemQuantity")
	defer span.End()

	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	item, err := cart.UpdateItemQuantity(itemID, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, item.ProductID, item.WarehouseID, item.Quantity); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "failed to save cart")
	}
	return s.buildView(ctx, cart)
}

// RemoveItem 删除购物车中的一行。
func (s *CartService) RemoveItem(ctx context.Context, customerID, itemID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.RemoveItem")
	defer span.End()

	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := cart.RemoveItem(itemID); err != nil {
		return nil, err
	}
	if err := s.carts.Save(ctx, cart); err != nil {
		return nil, errors.Wrap(err, "failed to save cart")
	}
	return s.buildView(ctx, cart)
}

// Clear 清空客户的购物车。购物车不存在或已空都静默成功。
func (s *CartService) Clear(ctx context.Context, customerID string) error {
	ctx, span := s.tracer.Start(ctx, "cart.Clear")
	defer span.End()

	if err := s.carts.DeleteByCustomer(ctx, customerID); err != nil {
		return errors.Wrap(err, "failed to clear cart")
	}
	return nil
}

// GetCart 返回客户购物车的带价视图。
func (s *CartService) GetCart(ctx context.Context, customerID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.GetCart")
	defer span.End()

	cart, err := s.carts.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return s.buildView(ctx, cart)
}

// GetActiveCart 返回客户的领域购物车，供结算流程读取条目。
func (s *CartService) GetActiveCart(ctx context.Context, customerID string) (*domain.Cart, error) {
	return s.carts.FindByCustomer(ctx, customerID)
}

func (s *CartService) checkAvailability(ctx context.Context, productID, warehouseID string, quantity int64) error {
	ok, err := s.availability.CheckAvailable(ctx, productID, warehouseID, quantity)
	if err != nil {
		// 软检查不可用时放行，结算时的硬校验兜底
		logger.Ctx(ctx).Warn().Err(err).Str("product_id", productID).
			Msg("availability check unavailable, skipping advisory check")
		return nil
	}
	if !ok {
		return errors.Wrapf(domain.ErrOutOfStock, "product %s warehouse %s quantity %d",
			productID, warehouseID, quantity)
	}
	return nil
}

// buildView 按目录现价重算整个购物车的金额。
func (s *CartService) buildView(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	view := &CartView{
		CartID:     cart.ID,
		CustomerID: cart.CustomerID,
		Currency:   cart.Currency,
		UpdatedAt:  cart.UpdatedAt,
		Items:      make([]CartItemView, 0, len(cart.Items)),
	}

	for _, item := range cart.Items {
		product, err := s.lookupProduct(ctx, item.ProductID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to price cart item %s", item.ProductID)
		}
		itemView := CartItemView{
			ItemID:      item.ID,
			ProductID:   item.ProductID,
			ProductName: product.Name,
			WarehouseID: item.WarehouseID,
			Quantity:    item.Quantity,
			UnitPrice:   product.UnitPrice,
			TotalPrice:  product.UnitPrice * float64(item.Quantity),
			SellerID:    product.SellerID,
		}
		view.Items = append(view.Items, itemView)
		view.TotalAmount += itemView.TotalPrice
	}
	return view, nil
}

// lookupProduct 通过 singleflight 合并同一商品的并发目录查询。
func (s *CartService) lookupProduct(ctx context.Context, productID string) (*port.ProductInfo, error) {
	result, err, _ := s.priceGroup.Do(productID, func() (interface{}, error) {
		return s.catalog.GetProduct(ctx, productID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*port.ProductInfo), nil
}
