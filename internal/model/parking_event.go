package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ParkingEventType string

const (
	EventVehicleIn  ParkingEventType = "vehicle_in"
	EventVehicleOut ParkingEventType = "vehicle_out"
)

// ParkingEvent 工作流程成功後發送到隊列，給看板等下游使用
type ParkingEvent struct {
	ID           string           `json:"id"`
	Type         ParkingEventType `json:"type"`
	TicketID     int              `json:"ticket_id"`
	SpotID       int              `json:"spot_id"`
	VehicleClass VehicleClass     `json:"vehicle_type"`
	Plate        string           `json:"plate"`
	Price        decimal.Decimal  `json:"price"`
	OccurredAt   time.Time        `json:"occurred_at"`
}
