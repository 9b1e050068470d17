package service

import (
	"context"
	"errors"
	"time"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/emi"
	"github.com/boddenberg/loanhub/internal/infra/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var emiTracer = otel.Tracer("service/emi")

// EMIService exposes the EMI engine to the HTTP boundary.
type EMIService struct {
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewEMIService creates the EMI service.
func NewEMIService(metrics *observability.Metrics, logger *zap.Logger) *EMIService {
	return &EMIService{metrics: metrics, logger: logger}
}

// Calculate returns the installment and totals for req.
func (s *EMIService) Calculate(ctx context.Context, req emi.Request) (*domain.EMIResult, error) {
	_, span := emiTracer.Start(ctx, "EMIService.Calculate")
	defer span.End()
	span.SetAttributes(
		attribute.Float64("emi.principal", req.Principal),
		attribute.Float64("emi.rate", req.AnnualRatePercent),
		attribute.Int("emi.tenure", req.TenureMonths),
	)

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("emi.calculate", time.Since(start)) }()

	result, err := emi.CalculateRequest(req)
	if err != nil {
		s.reject(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.metrics.IncrEMICalculation("ok")
	s.logger.Debug("emi calculated",
		zap.Float64("principal", req.Principal),
		zap.Float64("rate", req.AnnualRatePercent),
		zap.Int("tenure", req.TenureMonths),
		zap.Float64("emi", result.MonthlyInstallment),
	)
	return &result, nil
}

// Schedule returns the summary and month-by-month breakdown for req.
func (s *EMIService) Schedule(ctx context.Context, req emi.Request) (*domain.ScheduleResponse, error) {
	_, span := emiTracer.Start(ctx, "EMIService.Schedule")
	defer span.End()
	span.SetAttributes(attribute.Int("emi.tenure", req.TenureMonths))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("emi.schedule", time.Since(start)) }()

	summary, err := emi.CalculateRequest(req)
	if err != nil {
		s.reject(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	schedule, err := emi.ScheduleRequest(req)
	if err != nil {
		return nil, err
	}

	s.metrics.IncrEMICalculation("ok")
	return &domain.ScheduleResponse{Summary: summary, Schedule: schedule}, nil
}

func (s *EMIService) reject(err error) {
	var invalid *domain.ErrInvalidInput
	if errors.As(err, &invalid) {
		s.metrics.IncrEMICalculation("invalid")
		s.logger.Debug("emi rejected", zap.String("field", invalid.Field), zap.String("reason", invalid.Message))
	}
}
