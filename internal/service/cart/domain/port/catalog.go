// internal/service/cart/domain/port/catalog.go
package port

import "context"

// ProductInfo 是商品目录返回的快照信息。
type ProductInfo struct {
	ProductID string
	Name      string
	UnitPrice float64
	Currency  string
	SellerID  string
}

// ProductCatalog 是商品目录服务的出站端口。
// 购物车金额和订单条目快照都从这里取现价。
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)
}

// AvailabilityChecker 是加购前置库存检查的出站端口。
// 这是一个非预占的软检查，真正的预占在结算时重新校验。
type AvailabilityChecker interface {
	// CheckAvailable 判断 (productID, warehouseID) 的可售量是否不低于 quantity。
	CheckAvailable(ctx context.Context, productID, warehouseID string, quantity int64) (bool, error)
}
