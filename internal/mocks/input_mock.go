package mocks

import (
	"parking-system/internal/input"

	"github.com/stretchr/testify/mock"
)

var _ input.Reader = (*InputReaderMock)(nil)

type InputReaderMock struct {
	mock.Mock
}

func NewInputReaderMock() *InputReaderMock {
	return &InputReaderMock{}
}

func (m *InputReaderMock) ReadVehicleClassSelection() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *InputReaderMock) ReadPlate() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}
