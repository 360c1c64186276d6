// internal/service/order/domain/port/stock.go
package port

import "context"

// StockReserver 是订单侧对库存台账的出站端口。
// 结算时预占，送达时提交，取消时释放，退货回仓时补回。
type StockReserver interface {
	Reserve(ctx context.Context, productID, warehouseID string, quantity int64, orderID string) (string, error)
	Commit(ctx context.Context, reservationID string) error
	Release(ctx context.Context, reservationID string) error
	Restock(ctx context.Context, productID, warehouseID string, quantity int64) error
}
