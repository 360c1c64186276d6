// internal/service/cart/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bazaar/internal/service/cart/domain"
)

// GormCartRepository 是 CartRepository 的 GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository 创建一个新的 GORM 仓储实例
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func (r *GormCartRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.Cart, error) {
	var model CartModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("customer_id = ?", customerID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "cart for customer %s", customerID)
		}
		return nil, err
	}
	return ToDomainCart(&model), nil
}

// Save 在一个事务里整体覆盖购物车及其条目。
// 条目数量少，全删全插比逐行 diff 简单得多。
func (r *GormCartRepository) Save(ctx context.Context, cart *domain.Cart) error {
	model := FromDomainCart(cart)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&CartModel{
			CartID:     model.CartID,
			CustomerID: model.CustomerID,
			Currency:   model.Currency,
			CreatedAt:  model.CreatedAt,
			UpdatedAt:  model.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", model.CartID).Delete(&CartItemModel{}).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Create(&model.Items).Error
	})
}

func (r *GormCartRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model CartModel
		err := tx.Where("customer_id = ?", customerID).First(&model).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // 清空不存在的购物车不是错误
		}
		if err != nil {
			return err
		}
		if err := tx.Where("cart_id = ?", model.CartID).Delete(&CartItemModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model).Error
	})
}
