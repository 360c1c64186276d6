// internal/service/stock/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bazaar/internal/service/stock/domain"
)

// GormStockRepository 是 StockRepository 的 GORM 实现
type GormStockRepository struct {
	db *gorm.DB
}

// NewGormStockRepository 创建一个新的 GORM 仓储实例
func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) Get(ctx context.Context, productID, warehouseID string) (*domain.StockRecord, error) {
	var model StockRecordModel
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "stock %s/%s", productID, warehouseID)
		}
		return nil, err
	}
	return ToDomainStockRecord(&model), nil
}

func (r *GormStockRepository) Save(ctx context.Context, record *domain.StockRecord) error {
	// 按 (product_id, warehouse_id) 做 upsert，数值字段全量覆盖
	model := StockRecordModel{
		ProductID:   record.ProductID,
		WarehouseID: record.WarehouseID,
		Quantity:    record.Quantity,
		Reserved:    record.Reserved,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "warehouse_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "reserved", "updated_at"}),
	}).Create(&model).Error
}

// GormReservationRepository 是 ReservationRepository 的 GORM 实现
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

func (r *GormReservationRepository) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	var model ReservationModel
	err := r.db.WithContext(ctx).Where("reservation_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "reservation %s", id)
		}
		return nil, err
	}
	return ToDomainReservation(&model), nil
}

func (r *GormReservationRepository) Save(ctx context.Context, reservation *domain.Reservation) error {
	model := FromDomainReservation(reservation)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "reservation_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(model).Error
}

func (r *GormReservationRepository) FindByOrder(ctx context.Context, orderID string) ([]*domain.Reservation, error) {
	var models []ReservationModel
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&models).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		result = append(result, ToDomainReservation(&models[i]))
	}
	return result, nil
}

func (r *GormReservationRepository) FindStaleHeld(ctx context.Context, olderThan time.Time) ([]*domain.Reservation, error) {
	var models []ReservationModel
	err := r.db.WithContext(ctx).
		Where("state = ? AND created_at < ?", domain.StateHeld, olderThan).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.Reservation, 0, len(models))
	for i := range models {
		result = append(result, ToDomainReservation(&models[i]))
	}
	return result, nil
}
