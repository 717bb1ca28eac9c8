package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ticket 停車票，OutTime 為 nil 表示尚未出場
type Ticket struct {
	ID      int             `json:"id" db:"id"`
	Spot    *Spot           `json:"spot" db:"-"`
	Plate   string          `json:"plate" db:"vehicle_reg_number"`
	Price   decimal.Decimal `json:"price" db:"price"`
	InTime  time.Time       `json:"in_time" db:"in_time"`
	OutTime *time.Time      `json:"out_time,omitempty" db:"out_time"`
}

// NewOpenTicket 建立尚未寫入的開啟票券
func NewOpenTicket(spot *Spot, plate string, inTime time.Time) *Ticket {
	return &Ticket{
		Spot:   spot,
		Plate:  plate,
		Price:  decimal.Zero,
		InTime: inTime,
	}
}

// IsOpen 檢查票券是否仍在場內
func (t *Ticket) IsOpen() bool {
	return t.OutTime == nil
}

// IsPersisted 檢查票券是否已由資料庫配置 ID
func (t *Ticket) IsPersisted() bool {
	return t.ID > 0
}

// SpotID nil-safe
func (t *Ticket) SpotID() int {
	if t == nil || t.Spot == nil {
		return 0
	}
	return t.Spot.ID
}

// Duration 停車時間，票券未關閉時回傳 0
func (t *Ticket) Duration() time.Duration {
	if t.OutTime == nil {
		return 0
	}
	return t.OutTime.Sub(t.InTime)
}

// TicketResponse 票券響應
type TicketResponse struct {
	ID           int     `json:"id"`
	SpotID       int     `json:"spot_id"`
	VehicleClass string  `json:"vehicle_type"`
	Plate        string  `json:"plate"`
	Price        string  `json:"price"`
	InTime       string  `json:"in_time"`
	OutTime      *string `json:"out_time,omitempty"`
	Open         bool    `json:"open"`
}

func (t *Ticket) ToResponse() TicketResponse {
	resp := TicketResponse{
		ID:     t.ID,
		SpotID: t.SpotID(),
		Plate:  t.Plate,
		Price:  t.Price.StringFixed(2),
		InTime: t.InTime.UTC().Format(time.RFC3339),
		Open:   t.IsOpen(),
	}
	if t.Spot != nil {
		resp.VehicleClass = t.Spot.VehicleClass.String()
	}
	if t.OutTime != nil {
		out := t.OutTime.UTC().Format(time.RFC3339)
		resp.OutTime = &out
	}
	return resp
}

// Close 設定出場時間與票價，不寫入資料庫
func (t *Ticket) Close(outTime time.Time, price decimal.Decimal) {
	t.OutTime = &outTime
	t.Price = price
}
