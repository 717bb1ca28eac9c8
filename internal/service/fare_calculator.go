package service

import (
	"fmt"
	"time"

	"parking-system/config"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"github.com/shopspring/decimal"
)

const (
	// FreeStayThreshold 未滿 30 分鐘免費
	FreeStayThreshold = 30 * time.Minute
	// PricePrecision 最終票價的小數位數
	PricePrecision = 2
)

// LoyaltyDiscountFactor 常客 95 折
var LoyaltyDiscountFactor = decimal.RequireFromString("0.95")

var millisecondsPerHour = decimal.NewFromInt(int64(time.Hour / time.Millisecond))

type FareCalculator interface {
	// 計算停車費，discount 為常客折扣
	CalculateFare(inTime, outTime *time.Time, class model.VehicleClass, discount bool) (decimal.Decimal, error)
	// 是否落在免費時段
	IsFreeStay(inTime, outTime time.Time) bool
	RatePerHour(class model.VehicleClass) (decimal.Decimal, error)
}

type FareCalculatorImpl struct {
	rates map[model.VehicleClass]decimal.Decimal
}

// NewFareCalculator 從設定解析每小時費率，費率不可為負數
func NewFareCalculator(cfg config.FareConfig) (FareCalculator, error) {
	car, err := parseRate(model.VehicleClassCar, cfg.CarRatePerHour)
	if err != nil {
		return nil, err
	}
	bike, err := parseRate(model.VehicleClassBike, cfg.BikeRatePerHour)
	if err != nil {
		return nil, err
	}
	return &FareCalculatorImpl{
		rates: map[model.VehicleClass]decimal.Decimal{
			model.VehicleClassCar:  car,
			model.VehicleClassBike: bike,
		},
	}, nil
}

// NewDefaultFareCalculator CAR 1.5、BIKE 1.0
func NewDefaultFareCalculator() FareCalculator {
	calc, err := NewFareCalculator(config.FareConfig{
		CarRatePerHour:  config.DefaultCarRatePerHour,
		BikeRatePerHour: config.DefaultBikeRatePerHour,
	})
	if err != nil {
		panic(err)
	}
	return calc
}

func parseRate(class model.VehicleClass, raw string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s rate %q: %w", class, raw, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid %s rate %q: must not be negative", class, raw)
	}
	return rate, nil
}

func (f *FareCalculatorImpl) RatePerHour(class model.VehicleClass) (decimal.Decimal, error) {
	rate, ok := f.rates[class]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q", apperrors.ErrUnknownVehicleClass, class)
	}
	return rate, nil
}

func (f *FareCalculatorImpl) IsFreeStay(inTime, outTime time.Time) bool {
	return outTime.Sub(inTime) < FreeStayThreshold
}

func (f *FareCalculatorImpl) CalculateFare(inTime, outTime *time.Time, class model.VehicleClass, discount bool) (decimal.Decimal, error) {
	if inTime == nil || outTime == nil {
		return decimal.Zero, fmt.Errorf("%w: missing in or out time", apperrors.ErrInvalidInterval)
	}
	if outTime.Before(*inTime) {
		return decimal.Zero, fmt.Errorf("%w: out time %s before in time %s",
			apperrors.ErrInvalidInterval, outTime.Format(time.RFC3339), inTime.Format(time.RFC3339))
	}

	rate, err := f.RatePerHour(class)
	if err != nil {
		return decimal.Zero, err
	}

	if f.IsFreeStay(*inTime, *outTime) {
		return decimal.Zero, nil
	}

	// 以毫秒換算小時，不取整
	hours := decimal.NewFromInt(outTime.Sub(*inTime).Milliseconds()).Div(millisecondsPerHour)
	price := hours.Mul(rate)
	if discount {
		price = price.Mul(LoyaltyDiscountFactor)
	}

	return price.Round(PricePrecision), nil
}
