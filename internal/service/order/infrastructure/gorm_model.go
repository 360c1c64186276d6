// internal/service/order/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// OrderModel 对应数据库中的 order 表
type OrderModel struct {
	OrderID            string `gorm:"primaryKey;size:36"`
	CustomerID         string `gorm:"index;size:64"`
	Status             string `gorm:"index;size:32"`
	PaymentStatus      string `gorm:"size:16"`
	PaymentMethod      string `gorm:"size:16"`
	DeliveryMethod     string `gorm:"size:24"`
	TotalAmount        float64
	Currency           string `gorm:"size:8"`
	Notes              string `gorm:"size:1024"`
	CancellationReason string `gorm:"size:512"`

	// 收货地址按列展开，检索时可以按城市/区域过滤
	AddrStreet      string `gorm:"size:255"`
	AddrHouse       string `gorm:"size:32"`
	AddrApartment   string `gorm:"size:32"`
	AddrCity        string `gorm:"size:128"`
	AddrRegion      string `gorm:"size:128"`
	AddrPostalCode  string `gorm:"size:16"`
	AddrCountry     string `gorm:"size:64"`
	AddrLatitude    float64
	AddrLongitude   float64
	AddrContactName string `gorm:"size:128"`
	AddrPhone       string `gorm:"size:32"`

	EstimatedDelivery *time.Time
	ActualDelivery    *time.Time

	Items     []OrderItemModel `gorm:"foreignKey:OrderID;references:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time        `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (OrderModel) TableName() string {
	return "order_record"
}

// OrderItemModel 对应数据库中的 order_item 表，是下单时刻的商品快照。
type OrderItemModel struct {
	ItemID        string `gorm:"primaryKey;size:36"`
	OrderID       string `gorm:"index;size:36"`
	ProductID     string `gorm:"size:64"`
	ProductName   string `gorm:"size:255"`
	WarehouseID   string `gorm:"size:64"`
	SellerID      string `gorm:"index;size:64"`
	Quantity      int64
	UnitPrice     float64
	TotalPrice    float64
	ReservationID string `gorm:"size:36"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定 GORM 应该使用的表名
func (OrderItemModel) TableName() string {
	return "order_item"
}
