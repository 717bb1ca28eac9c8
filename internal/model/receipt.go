package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// EntryReceipt 進場成功後回給呼叫端的資訊
type EntryReceipt struct {
	TicketID     int          `json:"ticket_id"`
	SpotID       int          `json:"spot_id"`
	VehicleClass VehicleClass `json:"vehicle_type"`
	Plate        string       `json:"plate"`
	InTime       time.Time    `json:"in_time"`
}

// ExitReceipt 出場成功後回給呼叫端的資訊
type ExitReceipt struct {
	TicketID     int             `json:"ticket_id"`
	SpotID       int             `json:"spot_id"`
	VehicleClass VehicleClass    `json:"vehicle_type"`
	Plate        string          `json:"plate"`
	Price        decimal.Decimal `json:"price"`
	Loyalty      bool            `json:"loyalty"`
	InTime       time.Time       `json:"in_time"`
	OutTime      time.Time       `json:"out_time"`
}
