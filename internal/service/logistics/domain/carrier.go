// internal/service/logistics/domain/carrier.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Carrier 是承运商注册表中的一条记录。
// Available 为 false 时不可被指派，指派请求返回 ErrCarrierUnavailable。
type Carrier struct {
	ID        string
	Name      string
	Phone     string
	Vehicle   string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewCarrier 注册一个可用的承运商。
func NewCarrier(name, phone, vehicle string) *Carrier {
	now := time.Now()
	return &Carrier{
		ID:        uuid.New().String(),
		Name:      name,
		Phone:     phone,
		Vehicle:   vehicle,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
