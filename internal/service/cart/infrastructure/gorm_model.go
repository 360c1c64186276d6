// internal/service/cart/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// CartModel 对应数据库中的 cart 表
type CartModel struct {
	CartID     string `gorm:"primaryKey;size:36"`
	CustomerID string `gorm:"uniqueIndex;size:64"` // 一个客户只有一个活跃购物车
	Currency   string `gorm:"size:8"`
	// 关联关系，删除购物车时级联删除条目
	Items     []CartItemModel `gorm:"foreignKey:CartID;references:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (CartModel) TableName() string {
	return "cart"
}

// CartItemModel 对应数据库中的 cart_item 表
type CartItemModel struct {
	ItemID      string `gorm:"primaryKey;size:36"`
	CartID      string `gorm:"index;size:36"`
	ProductID   string `gorm:"size:64"`
	WarehouseID string `gorm:"size:64"`
	Quantity    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CartItemModel) TableName() string {
	return "cart_item"
}
