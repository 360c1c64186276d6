// internal/service/logistics/infrastructure/mapper.go
package infrastructure

import (
	"bazaar/internal/service/logistics/domain"
)

// ToDomainDelivery 将持久化模型转换为领域聚合。
func ToDomainDelivery(model *DeliveryModel) *domain.Delivery {
	return &domain.Delivery{
		ID:        model.DeliveryID,
		OrderID:   model.OrderID,
		CarrierID: model.CarrierID,
		Status:    domain.Status(model.Status),
		PickupAddress: domain.Address{
			Street:      model.PickupStreet,
			House:       model.PickupHouse,
			City:        model.PickupCity,
			Region:      model.PickupRegion,
			PostalCode:  model.PickupPostalCode,
			Country:     model.PickupCountry,
			ContactName: model.PickupContactName,
			Phone:       model.PickupPhone,
		},
		DeliveryAddress: domain.Address{
			Street:      model.DropoffStreet,
			House:       model.DropoffHouse,
			Apartment:   model.DropoffApartment,
			City:        model.DropoffCity,
			Region:      model.DropoffRegion,
			PostalCode:  model.DropoffPostalCode,
			Country:     model.DropoffCountry,
			Latitude:    model.DropoffLatitude,
			Longitude:   model.DropoffLongitude,
			ContactName: model.DropoffContactName,
			Phone:       model.DropoffPhone,
		},
		EstimatedPickup:   model.EstimatedPickup,
		EstimatedDelivery: model.EstimatedDelivery,
		ActualPickup:      model.ActualPickup,
		ActualDelivery:    model.ActualDelivery,
		Cost:              model.Cost,
		Currency:          model.Currency,
		Notes:             model.Notes,
		CancelReason:      model.CancelReason,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}
}

// FromDomainDelivery 将领域聚合转换为持久化模型。
func FromDomainDelivery(delivery *domain.Delivery) *DeliveryModel {
	return &DeliveryModel{
		DeliveryID:         delivery.ID,
		OrderID:            delivery.OrderID,
		CarrierID:          delivery.CarrierID,
		Status:             string(delivery.Status),
		PickupStreet:       delivery.PickupAddress.Street,
		PickupHouse:        delivery.PickupAddress.House,
		PickupCity:         delivery.PickupAddress.City,
		PickupRegion:       delivery.PickupAddress.Region,
		PickupPostalCode:   delivery.PickupAddress.PostalCode,
		PickupCountry:      delivery.PickupAddress.Country,
		PickupContactName:  delivery.PickupAddress.ContactName,
		PickupPhone:        delivery.PickupAddress.Phone,
		DropoffStreet:      delivery.DeliveryAddress.Street,
		DropoffHouse:       delivery.DeliveryAddress.House,
		DropoffApartment:   delivery.DeliveryAddress.Apartment,
		DropoffCity:        delivery.DeliveryAddress.City,
		DropoffRegion:      delivery.DeliveryAddress.Region,
		DropoffPostalCode:  delivery.DeliveryAddress.PostalCode,
		DropoffCountry:     delivery.DeliveryAddress.Country,
		DropoffLatitude:    delivery.DeliveryAddress.Latitude,
		DropoffLongitude:   delivery.DeliveryAddress.Longitude,
		DropoffContactName: delivery.DeliveryAddress.ContactName,
		DropoffPhone:       delivery.DeliveryAddress.Phone,
		EstimatedPickup:    delivery.EstimatedPickup,
		EstimatedDelivery:  delivery.EstimatedDelivery,
		ActualPickup:       delivery.ActualPickup,
		ActualDelivery:     delivery.ActualDelivery,
		Cost:               delivery.Cost,
		Currency:           delivery.Currency,
		Notes:              delivery.Notes,
		CancelReason:       delivery.CancelReason,
		CreatedAt:          delivery.CreatedAt,
		UpdatedAt:          delivery.UpdatedAt,
	}
}

// ToDomainCarrier 将持久化模型转换为领域对象。
func ToDomainCarrier(model *CarrierModel) *domain.Carrier {
	return &domain.Carrier{
		ID:        model.CarrierID,
		Name:      model.Name,
		Phone:     model.Phone,
		Vehicle:   model.Vehicle,
		Available: model.Available,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// FromDomainCarrier 将领域对象转换为持久化模型。
func FromDomainCarrier(carrier *domain.Carrier) *CarrierModel {
	return &CarrierModel{
		CarrierID: carrier.ID,
		Name:      carrier.Name,
		Phone:     carrier.Phone,
		Vehicle:   carrier.Vehicle,
		Available: carrier.Available,
		CreatedAt: carrier.CreatedAt,
		UpdatedAt: carrier.UpdatedAt,
	}
}
