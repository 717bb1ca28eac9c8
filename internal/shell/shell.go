package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"parking-system/internal/clock"
	"parking-system/internal/input"
	"parking-system/internal/service"
	apperrors "parking-system/pkg/app_errors"
	"parking-system/pkg/logger"

	"go.uber.org/zap"
)

// 主選單
const (
	OptionIncoming = 1
	OptionExiting  = 2
	OptionShutdown = 3
)

const timeLayout = "2006-01-02 15:04:05"

// Shell 互動式主控台，同一個 ConsoleReader 同時負責選單與進出場流程的輸入
type Shell struct {
	service service.ParkingService
	reader  *input.ConsoleReader
	out     io.Writer
	clock   clock.Clock
	log     *zap.Logger
}

func NewShell(svc service.ParkingService, in io.Reader, out io.Writer, clk clock.Clock, log *zap.Logger) *Shell {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Shell{
		service: svc,
		reader:  input.NewConsoleReader(in, out),
		out:     out,
		clock:   clk,
		log:     logger.WithComponent(log, "shell"),
	}
}

// Run 直到選擇關閉、輸入結束或 ctx 取消才返回
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "Welcome to Parking System!")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		option, err := s.reader.ReadSelection()
		if err != nil {
			if errors.Is(err, apperrors.ErrInputUnavailable) {
				s.log.Info("Input closed, leaving shell")
				return nil
			}
			return err
		}

		switch option {
		case OptionIncoming:
			s.handleIncoming(ctx)
		case OptionExiting:
			s.handleExiting(ctx)
		case OptionShutdown:
			fmt.Fprintln(s.out, "Exiting from the system!")
			return nil
		default:
			fmt.Fprintln(s.out, "Unsupported option. Please enter a number corresponding to the provided menu")
		}
	}
}

func (s *Shell) printMenu() {
	fmt.Fprintln(s.out, "Please select an option. Simply enter the number to choose an action")
	fmt.Fprintln(s.out, "1 New Vehicle Entering - Allocate Parking Space")
	fmt.Fprintln(s.out, "2 Vehicle Exiting - Generate Ticket Price")
	fmt.Fprintln(s.out, "3 Shutdown System")
}

func (s *Shell) handleIncoming(ctx context.Context) {
	receipt, err := s.service.ProcessIncomingVehicle(ctx, s.reader)
	if err != nil {
		fmt.Fprintf(s.out, "Unable to process incoming vehicle: %v\n", err)
		return
	}

	fmt.Fprintln(s.out, "Generated Ticket and saved in DB")
	fmt.Fprintf(s.out, "Please park your vehicle in spot number: %d\n", receipt.SpotID)
	fmt.Fprintf(s.out, "Recorded in-time for vehicle number: %s is: %s\n", receipt.Plate, formatTime(receipt.InTime))
}

func (s *Shell) handleExiting(ctx context.Context) {
	receipt, err := s.service.ProcessExitingVehicle(ctx, s.reader, s.clock.Now())
	if err != nil {
		fmt.Fprintf(s.out, "Unable to process exiting vehicle: %v\n", err)
		return
	}

	if receipt.Loyalty {
		fmt.Fprintln(s.out, "Welcome back! As a recurring user you get a 5% discount")
	}
	fmt.Fprintf(s.out, "Please pay the parking fare: %s\n", receipt.Price.StringFixed(2))
	fmt.Fprintf(s.out, "Recorded out-time for vehicle number: %s is: %s\n", receipt.Plate, formatTime(receipt.OutTime))
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
