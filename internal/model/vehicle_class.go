package model

import (
	"strings"

	apperrors "parking-system/pkg/app_errors"
)

// VehicleClass 車種，只有 CAR 與 BIKE 兩種
type VehicleClass string

const (
	VehicleClassCar  VehicleClass = "CAR"
	VehicleClassBike VehicleClass = "BIKE"
)

// 選單編號
const (
	SelectionCar  = 1
	SelectionBike = 2
)

func (c VehicleClass) IsValid() bool {
	switch c {
	case VehicleClassCar, VehicleClassBike:
		return true
	}
	return false
}

func (c VehicleClass) String() string {
	return string(c)
}

// VehicleClasses 依選單順序列出所有車種
func VehicleClasses() []VehicleClass {
	return []VehicleClass{VehicleClassCar, VehicleClassBike}
}

// ParseVehicleClassSelection 將選單輸入轉成車種，其他數字回傳 ErrInvalidSelection
func ParseVehicleClassSelection(selection int) (VehicleClass, error) {
	switch selection {
	case SelectionCar:
		return VehicleClassCar, nil
	case SelectionBike:
		return VehicleClassBike, nil
	}
	return "", apperrors.ErrInvalidSelection
}

// ParseVehicleClass 解析資料庫中的車種名稱（不分大小寫）
func ParseVehicleClass(name string) (VehicleClass, error) {
	c := VehicleClass(strings.ToUpper(strings.TrimSpace(name)))
	if !c.IsValid() {
		return "", apperrors.ErrUnknownVehicleClass
	}
	return c, nil
}
