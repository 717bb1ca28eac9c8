package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	apperrors "parking-system/pkg/app_errors"
)

// ConsoleReader 從 io.Reader 逐行讀取，提示文字寫到 out
type ConsoleReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewConsoleReader(in io.Reader, out io.Writer) *ConsoleReader {
	return &ConsoleReader{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// ReadLine 讀取一行並去除空白，輸入結束時回傳 ErrInputUnavailable
func (r *ConsoleReader) ReadLine() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", fmt.Errorf("%w: %w", apperrors.ErrInputUnavailable, err)
		}
		return "", apperrors.ErrInputUnavailable
	}
	return strings.TrimSpace(r.scanner.Text()), nil
}

func (r *ConsoleReader) ReadSelection() (int, error) {
	line, err := r.ReadLine()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return -1, nil
	}
	return n, nil
}

func (r *ConsoleReader) ReadVehicleClassSelection() (int, error) {
	fmt.Fprintln(r.out, "Please select vehicle type from menu")
	fmt.Fprintln(r.out, "1 CAR")
	fmt.Fprintln(r.out, "2 BIKE")
	return r.ReadSelection()
}

func (r *ConsoleReader) ReadPlate() (string, error) {
	fmt.Fprintln(r.out, "Please type the vehicle registration number and press enter key")
	return r.ReadLine()
}
