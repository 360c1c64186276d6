// internal/service/logistics/domain/state.go
package domain

// Status 定义了配送单的生命周期状态
type Status string

const (
	StatusPending         Status = "PENDING"          // 已创建，未选承运商
	StatusAssigned        Status = "ASSIGNED"         // 已指派承运商
	StatusPickupScheduled Status = "PICKUP_SCHEDULED" // 已预约揽收
	StatusInTransit       Status = "IN_TRANSIT"       // 已揽收，干线运输中
	StatusOutForDelivery  Status = "OUT_FOR_DELIVERY" // 末端派送中
	StatusDelivered       Status = "DELIVERED"        // 已送达
	StatusFailed          Status = "FAILED"           // 配送失败
	StatusCancelled       Status = "CANCELLED"        // 已取消
)

// forwardSequence 是配送状态的唯一前进路径，不允许跳步。
// FAILED/CANCELLED 可以从任意非终态直接进入。
var forwardSequence = []Status{
	StatusPending,
	StatusAssigned,
	StatusPickupScheduled,
	StatusInTransit,
	StatusOutForDelivery,
	StatusDelivered,
}

// IsTerminal 判断状态是否为终态。
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed || s == StatusCancelled
}

// CanAdvance 判断 from -> to 是否合法: 沿序列前进一步，
// 或从任意非终态进入 FAILED/CANCELLED。
func CanAdvance(from, to Status) bool {
	if to == StatusFailed || to == StatusCancelled {
		return !from.IsTerminal()
	}
	for i, s := range forwardSequence {
		if s == from {
			return i+1 < len(forwardSequence) && forwardSequence[i+1] == to
		}
	}
	return false
}
