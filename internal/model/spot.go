package model

// Spot 車位，ID 由資料庫預先配置
type Spot struct {
	ID           int          `json:"id" db:"id"`
	VehicleClass VehicleClass `json:"vehicle_type" db:"vehicle_type"`
	Available    bool         `json:"available" db:"available"`
}

// SpotAvailability 各車種的車位總數與空位數
type SpotAvailability struct {
	VehicleClass VehicleClass `json:"vehicle_type"`
	Total        int          `json:"total"`
	Available    int          `json:"available"`
}
