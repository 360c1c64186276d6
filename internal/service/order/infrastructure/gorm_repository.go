// internal/service/order/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bazaar/internal/service/order/domain"
)

// GormOrderRepository 是 OrderRepository 的 GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository 创建一个新的 GORM 仓储实例
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Save 在一个事务里保存订单头和条目快照。
// 条目是下单时刻的不可变快照，更新时按主键 upsert 即可。
func (r *GormOrderRepository) Save(ctx context.Context, order *domain.Order) error {
	model := FromDomainOrder(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		head := *model
		head.Items = nil
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "order_id"}},
			UpdateAll: true,
		}).Create(&head).Error; err != nil {
			return err
		}
		if len(model.Items) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "item_id"}},
			UpdateAll: true,
		}).Create(&model.Items).Error
	})
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	var model OrderModel
	err := r.db.WithContext(ctx).Preload("Items").
		Where("order_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "order %s", id)
		}
		return nil, err
	}
	return ToDomainOrder(&model), nil
}

// Search 按条件分页检索。卖家过滤走条目快照上的 seller_id 子查询。
func (r *GormOrderRepository) Search(ctx context.Context, query domain.SearchQuery) ([]*domain.Order, int64, error) {
	db := r.db.WithContext(ctx).Model(&OrderModel{})

	if query.CustomerID != "" {
		db = db.Where("customer_id = ?", query.CustomerID)
	}
	if query.Status != "" {
		db = db.Where("status = ?", string(query.Status))
	}
	if query.SellerID != "" {
		db = db.Where("order_id IN (?)",
			r.db.Model(&OrderItemModel{}).Select("order_id").Where("seller_id = ?", query.SellerID))
	}
	if !query.DateFrom.IsZero() {
		db = db.Where("created_at >= ?", query.DateFrom)
	}
	if !query.DateTo.IsZero() {
		db = db.Where("created_at <= ?", query.DateTo)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at ASC"
	if query.SortDesc {
		order = "created_at DESC"
	}
	var models []OrderModel
	err := db.Preload("Items").
		Order(order).
		Offset((query.Page - 1) * query.Limit).
		Limit(query.Limit).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	orders := make([]*domain.Order, 0, len(models))
	for i := range models {
		orders = append(orders, ToDomainOrder(&models[i]))
	}
	return orders, total, nil
}
