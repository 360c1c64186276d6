// internal/service/order/infrastructure/mapper.go
package infrastructure

import (
	"bazaar/internal/service/order/domain"
)

// ToDomainOrder 将持久化模型转换为领域聚合。
func ToDomainOrder(model *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:                 model.OrderID,
		CustomerID:         model.CustomerID,
		Status:             domain.Status(model.Status),
		PaymentStatus:      domain.PaymentStatus(model.PaymentStatus),
		PaymentMethod:      domain.PaymentMethod(model.PaymentMethod),
		DeliveryMethod:     domain.DeliveryMethod(model.DeliveryMethod),
		TotalAmount:        model.TotalAmount,
		Currency:           model.Currency,
		Notes:              model.Notes,
		CancellationReason: model.CancellationReason,
		EstimatedDelivery:  model.EstimatedDelivery,
		ActualDelivery:     model.ActualDelivery,
		CreatedAt:          model.CreatedAt,
		UpdatedAt:          model.UpdatedAt,
		DeliveryAddress: domain.Address{
			Street:      model.AddrStreet,
			House:       model.AddrHouse,
			Apartment:   model.AddrApartment,
			City:        model.AddrCity,
			Region:      model.AddrRegion,
			PostalCode:  model.AddrPostalCode,
			Country:     model.AddrCountry,
			Latitude:    model.AddrLatitude,
			Longitude:   model.AddrLongitude,
			ContactName: model.AddrContactName,
			Phone:       model.AddrPhone,
		},
		Items: make([]domain.OrderItem, 0, len(model.Items)),
	}
	for _, item := range model.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ID:            item.ItemID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			WarehouseID:   item.WarehouseID,
			SellerID:      item.SellerID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			ReservationID: item.ReservationID,
		})
	}
	return order
}

// FromDomainOrder 将领域聚合转换为持久化模型。
func FromDomainOrder(order *domain.Order) *OrderModel {
	model := &OrderModel{
		OrderID:            order.ID,
		CustomerID:         order.CustomerID,
		Status:             string(order.Status),
		PaymentStatus:      string(order.PaymentStatus),
		PaymentMethod:      string(order.PaymentMethod),
		DeliveryMethod:     string(order.DeliveryMethod),
		TotalAmount:        order.TotalAmount,
		Currency:           order.Currency,
		Notes:              order.Notes,
		CancellationReason: order.CancellationReason,
		EstimatedDelivery:  order.EstimatedDelivery,
		ActualDelivery:     order.ActualDelivery,
		CreatedAt:          order.CreatedAt,
		UpdatedAt:          order.UpdatedAt,
		AddrStreet:         order.DeliveryAddress.Street,
		AddrHouse:          order.DeliveryAddress.House,
		AddrApartment:      order.DeliveryAddress.Apartment,
		AddrCity:           order.DeliveryAddress.City,
		AddrRegion:         order.DeliveryAddress.Region,
		AddrPostalCode:     order.DeliveryAddress.PostalCode,
		AddrCountry:        order.DeliveryAddress.Country,
		AddrLatitude:       order.DeliveryAddress.Latitude,
		AddrLongitude:      order.DeliveryAddress.Longitude,
		AddrContactName:    order.DeliveryAddress.ContactName,
		AddrPhone:          order.DeliveryAddress.Phone,
		Items:              make([]OrderItemModel, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		model.Items = append(model.Items, OrderItemModel{
			ItemID:        item.ID,
			OrderID:       order.ID,
			ProductID:     item.ProductID,
			ProductName:   item.ProductName,
			WarehouseID:   item.WarehouseID,
			SellerID:      item.SellerID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalPrice:    item.TotalPrice,
			ReservationID: item.ReservationID,
		})
	}
	return model
}
