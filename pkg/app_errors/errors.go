package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSelection    = errors.New("invalid vehicle type selection")
	ErrInvalidPlate        = errors.New("invalid vehicle registration number")
	ErrInvalidInterval     = errors.New("invalid parking interval")
	ErrUnknownVehicleClass = errors.New("unknown vehicle class")
	ErrNoSpotAvailable     = errors.New("no parking spot available")
	ErrSpotNotFound        = errors.New("parking spot not found")
	ErrSpotStateConflict   = errors.New("parking spot availability changed concurrently")
	ErrNoTicketFound       = errors.New("no ticket found")
	ErrStoreWrite          = errors.New("store write failed")
	ErrNonPositiveFare     = errors.New("computed fare is not positive")
	ErrPartialExitFailure  = errors.New("ticket closed but spot was not released")
	ErrInputUnavailable    = errors.New("input source unavailable")
	ErrInternalServerError = errors.New("internal server error")
	ErrBoardNotWarmed      = errors.New("occupancy board has not been warmed up")

	// ErrInvariantViolation 代表程式錯誤，正常運作下不會發生，也不在回報/重試流程內
	ErrInvariantViolation = errors.New("invariant violation")
)

// StepError 記錄工作流程在哪一步中止，以及涉及的車牌與車位
type StepError struct {
	Step   string
	Plate  string
	SpotID int
	Err    error
}

func (e *StepError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failed", e.Step)
	if e.Plate != "" {
		fmt.Fprintf(&b, " for vehicle %s", e.Plate)
	}
	if e.SpotID > 0 {
		fmt.Fprintf(&b, " at spot %d", e.SpotID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *StepError) Unwrap() error {
	return e.Err
}

func NewStepError(step, plate string, spotID int, err error) *StepError {
	return &StepError{Step: step, Plate: plate, SpotID: spotID, Err: err}
}

// StoreWrite 將底層儲存錯誤包成 ErrStoreWrite，errors.Is 兩者皆可比對
func StoreWrite(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreWrite, err)
}

func Invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
