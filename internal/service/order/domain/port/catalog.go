// internal/service/order/domain/port/catalog.go
package port

import "context"

// ProductInfo 是目录服务返回的商品信息，用于下单时生成条目快照。
type ProductInfo struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Currency  string  `json:"currency"`
	SellerID  string  `json:"sellerId"`
}

// ProductCatalog 是订单侧对商品目录的出站端口。
type ProductCatalog interface {
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)
}
