// internal/service/logistics/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"bazaar/internal/service/logistics/domain"
)

// GormDeliveryRepository 是 DeliveryRepository 的 GORM 实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository 创建一个新的 GORM 仓储实例
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// Save 按主键 upsert 配送单。order_id 上的唯一索引保证 1:1 约束。
func (r *GormDeliveryRepository) Save(ctx context.Context, delivery *domain.Delivery) error {
	model := FromDomainDelivery(delivery)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "delivery_id"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *GormDeliveryRepository) FindByID(ctx context.Context, id string) (*domain.Delivery, error) {
	var model DeliveryModel
	err := r.db.WithContext(ctx).Where("delivery_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "delivery %s", id)
		}
		return nil, err
	}
	return ToDomainDelivery(&model), nil
}

func (r *GormDeliveryRepository) FindByOrder(ctx context.Context, orderID string) (*domain.Delivery, error) {
	var model DeliveryModel
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "delivery for order %s", orderID)
		}
		return nil, err
	}
	return ToDomainDelivery(&model), nil
}

// GormCarrierRepository 是 CarrierRepository 的 GORM 实现
type GormCarrierRepository struct {
	db *gorm.DB
}

// NewGormCarrierRepository 创建一个新的 GORM 仓储实例
func NewGormCarrierRepository(db *gorm.DB) *GormCarrierRepository {
	return &GormCarrierRepository{db: db}
}

func (r *GormCarrierRepository) Save(ctx context.Context, carrier *domain.Carrier) error {
	model := FromDomainCarrier(carrier)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "carrier_id"}},
		UpdateAll: true,
	}).Create(model).Error
}

func (r *GormCarrierRepository) FindByID(ctx context.Context, id string) (*domain.Carrier, error) {
	var model CarrierModel
	err := r.db.WithContext(ctx).Where("carrier_id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.Wrapf(domain.ErrNotFound, "carrier %s", id)
		}
		return nil, err
	}
	return ToDomainCarrier(&model), nil
}

func (r *GormCarrierRepository) List(ctx context.Context) ([]*domain.Carrier, error) {
	var models []CarrierModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	carriers := make([]*domain.Carrier, 0, len(models))
	for i := range models {
		carriers = append(carriers, ToDomainCarrier(&models[i]))
	}
	return carriers, nil
}

// GormLocationRepository 是 LocationRepository 的 GORM 实现
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository 创建一个新的 GORM 仓储实例
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

func (r *GormLocationRepository) Append(ctx context.Context, report *domain.LocationReport) error {
	return r.db.WithContext(ctx).Create(&LocationReportModel{
		DeliveryID: report.DeliveryID,
		OrderID:    report.OrderID,
		Latitude:   report.Latitude,
		Longitude:  report.Longitude,
		Note:       report.Note,
		ReportedAt: report.ReportedAt,
	}).Error
}

func (r *GormLocationRepository) ListByDelivery(ctx context.Context, deliveryID string) ([]*domain.LocationReport, error) {
	var models []LocationReportModel
	err := r.db.WithContext(ctx).
		Where("delivery_id = ?", deliveryID).
		Order("reported_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	reports := make([]*domain.LocationReport, 0, len(models))
	for _, model := range models {
		reports = append(reports, &domain.LocationReport{
			DeliveryID: model.DeliveryID,
			OrderID:    model.OrderID,
			Latitude:   model.Latitude,
			Longitude:  model.Longitude,
			Note:       model.Note,
			ReportedAt: model.ReportedAt,
		})
	}
	return reports, nil
}
