// internal/service/logistics/infrastructure/gorm_model.go
package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// DeliveryModel 对应数据库中的 delivery 表
type DeliveryModel struct {
	DeliveryID string `gorm:"primaryKey;size:36"`
	OrderID    string `gorm:"uniqueIndex;size:36"` // 一张订单只有一张配送单
	CarrierID  string `gorm:"index;size:36"`
	Status     string `gorm:"index;size:32"`

	PickupStreet      string `gorm:"size:255"`
	PickupHouse       string `gorm:"size:32"`
	PickupCity        string `gorm:"size:128"`
	PickupRegion      string `gorm:"size:128"`
	PickupPostalCode  string `gorm:"size:16"`
	PickupCountry     string `gorm:"size:64"`
	PickupContactName string `gorm:"size:128"`
	PickupPhone       string `gorm:"size:32"`

	DropoffStreet      string `gorm:"size:255"`
	DropoffHouse       string `gorm:"size:32"`
	DropoffApartment   string `gorm:"size:32"`
	DropoffCity        string `gorm:"size:128"`
	DropoffRegion      string `gorm:"size:128"`
	DropoffPostalCode  string `gorm:"size:16"`
	DropoffCountry     string `gorm:"size:64"`
	DropoffLatitude    float64
	DropoffLongitude   float64
	DropoffContactName string `gorm:"size:128"`
	DropoffPhone       string `gorm:"size:32"`

	EstimatedPickup   *time.Time
	EstimatedDelivery *time.Time
	ActualPickup      *time.Time
	ActualDelivery    *time.Time

	Cost         float64
	Currency     string `gorm:"size:8"`
	Notes        string `gorm:"size:1024"`
	CancelReason string `gorm:"size:512"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// TableName 指定 GORM 应该使用的表名
func (DeliveryModel) TableName() string {
	return "delivery"
}

// CarrierModel 对应数据库中的 carrier 表
type CarrierModel struct {
	CarrierID string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:128"`
	Phone     string `gorm:"size:32"`
	Vehicle   string `gorm:"size:64"`
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName 指定 GORM 应该使用的表名
func (CarrierModel) TableName() string {
	return "carrier"
}

// LocationReportModel 对应数据库中的 delivery_location 表
type LocationReportModel struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	DeliveryID string `gorm:"index;size:36"`
	OrderID    string `gorm:"index;size:36"`
	Latitude   float64
	Longitude  float64
	Note       string `gorm:"size:255"`
	ReportedAt int64
	CreatedAt  time.Time
}

// TableName 指定 GORM 应该使用的表名
func (LocationReportModel) TableName() string {
	return "delivery_location"
}
