package service

import (
	"context"
	"errors"
	"time"

	"parking-system/internal/input"
	"parking-system/internal/model"
	apperrors "parking-system/pkg/app_errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedParkingService 在 ParkingService 外加上 span 與 metrics
type InstrumentedParkingService struct {
	next   ParkingService
	tracer trace.Tracer

	entries  metric.Int64Counter
	exits    metric.Int64Counter
	fares    metric.Float64Histogram
	duration metric.Float64Histogram
}

func NewInstrumentedParkingService(next ParkingService, tracer trace.Tracer, meter metric.Meter) (ParkingService, error) {
	entries, err := meter.Int64Counter("parking_entries_total",
		metric.WithDescription("Total number of vehicle entry attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exits, err := meter.Int64Counter("parking_exits_total",
		metric.WithDescription("Total number of vehicle exit attempts"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	fares, err := meter.Float64Histogram("parking_fare_amount",
		metric.WithDescription("Fare charged on successful exits"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of parking workflows"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	return &InstrumentedParkingService{
		next:     next,
		tracer:   tracer,
		entries:  entries,
		exits:    exits,
		fares:    fares,
		duration: duration,
	}, nil
}

func (s *InstrumentedParkingService) ProcessIncomingVehicle(ctx context.Context, in input.Reader) (*model.EntryReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "parking.vehicle_in")
	defer span.End()
	start := time.Now()

	receipt, err := s.next.ProcessIncomingVehicle(ctx, in)

	labels := []attribute.KeyValue{attribute.String("operation", "vehicle_in")}
	if err != nil {
		labels = append(labels, failureLabels(span, err)...)
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_type", receipt.VehicleClass.String()))
		span.SetAttributes(
			attribute.Int("parking.ticket_id", receipt.TicketID),
			attribute.Int("parking.spot_id", receipt.SpotID),
			attribute.String("vehicle.type", receipt.VehicleClass.String()),
			attribute.String("vehicle.registration_number", receipt.Plate),
		)
		span.AddEvent("spot_allocated", trace.WithAttributes(attribute.Int("spot_id", receipt.SpotID)))
	}

	s.entries.Add(ctx, 1, metric.WithAttributes(labels...))
	s.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return receipt, err
}

func (s *InstrumentedParkingService) ProcessExitingVehicle(ctx context.Context, in input.Reader, outTime time.Time) (*model.ExitReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "parking.vehicle_out")
	defer span.End()
	start := time.Now()

	receipt, err := s.next.ProcessExitingVehicle(ctx, in, outTime)

	labels := []attribute.KeyValue{attribute.String("operation", "vehicle_out")}
	if err != nil {
		labels = append(labels, failureLabels(span, err)...)
	} else {
		labels = append(labels,
			attribute.String("status", "success"),
			attribute.String("vehicle_type", receipt.VehicleClass.String()),
			attribute.Bool("loyalty", receipt.Loyalty))
		price := receipt.Price.InexactFloat64()
		span.SetAttributes(
			attribute.Int("parking.ticket_id", receipt.TicketID),
			attribute.Int("parking.spot_id", receipt.SpotID),
			attribute.String("vehicle.registration_number", receipt.Plate),
			attribute.Float64("parking.fare", price),
			attribute.Bool("parking.loyalty", receipt.Loyalty),
		)
		span.AddEvent("spot_released", trace.WithAttributes(attribute.Int("spot_id", receipt.SpotID)))
		s.fares.Record(ctx, price, metric.WithAttributes(labels...))
	}

	s.exits.Add(ctx, 1, metric.WithAttributes(labels...))
	s.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(labels...))
	return receipt, err
}

func failureLabels(span trace.Span, err error) []attribute.KeyValue {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	labels := []attribute.KeyValue{attribute.String("status", "failed")}
	var stepErr *apperrors.StepError
	if errors.As(err, &stepErr) {
		labels = append(labels, attribute.String("step", stepErr.Step))
		span.SetAttributes(attribute.String("parking.failed_step", stepErr.Step))
	}
	return labels
}
