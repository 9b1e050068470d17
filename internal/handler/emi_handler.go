package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/emi"
	"github.com/boddenberg/loanhub/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// maxScheduleMonths bounds the size of a schedule response.
const maxScheduleMonths = 1200

// ============================================================
// EMI calculator — request decoding
// ============================================================

// flexNumber accepts a JSON number or a numeric string, as form inputs
// usually post strings. null and "" leave it unset.
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		n.value, n.set = f, true
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected a number or numeric string, got %s", b)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%q is not a number", s)
	}
	n.value, n.set = f, true
	return nil
}

type emiRequestBody struct {
	Principal flexNumber `json:"principal"`
	Rate      flexNumber `json:"rate"`
	Tenure    flexNumber `json:"tenure"`
}

// toRequest checks presence and shape. allowZeroRate distinguishes the
// schedule endpoint, which accepts interest-free loans.
func (b emiRequestBody) toRequest(allowZeroRate bool) (emi.Request, error) {
	fields := []struct {
		name string
		n    flexNumber
	}{
		{"principal", b.Principal},
		{"rate", b.Rate},
		{"tenure", b.Tenure},
	}
	for _, f := range fields {
		if !f.n.set {
			return emi.Request{}, &domain.ErrInvalidInput{Field: f.name, Message: "is required"}
		}
	}

	if b.Principal.value <= 0 {
		return emi.Request{}, &domain.ErrInvalidInput{Field: "principal", Message: "must be greater than 0"}
	}
	switch {
	case b.Rate.value < 0:
		return emi.Request{}, &domain.ErrInvalidInput{Field: "rate", Message: "must not be negative"}
	case b.Rate.value == 0 && !allowZeroRate:
		return emi.Request{}, &domain.ErrInvalidInput{Field: "rate", Message: "must be greater than 0"}
	}
	tenure := b.Tenure.value
	switch {
	case tenure <= 0:
		return emi.Request{}, &domain.ErrInvalidInput{Field: "tenure", Message: "must be greater than 0"}
	case tenure != math.Trunc(tenure):
		return emi.Request{}, &domain.ErrInvalidInput{Field: "tenure", Message: "must be a whole number of months"}
	case tenure > maxScheduleMonths:
		return emi.Request{}, &domain.ErrInvalidInput{Field: "tenure", Message: fmt.Sprintf("must be at most %d months", maxScheduleMonths)}
	}

	return emi.Request{
		Principal:         b.Principal.value,
		AnnualRatePercent: b.Rate.value,
		TenureMonths:      int(tenure),
	}, nil
}

// ============================================================
// POST /api/emi
// ============================================================

func emiHandler(svc *service.EMIService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/emi")
		defer span.End()

		var body emiRequestBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req, err := body.toRequest(false)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("emi.tenure", req.TenureMonths))

		result, err := svc.Calculate(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// ============================================================
// POST /api/emi/schedule
// ============================================================

func emiScheduleHandler(svc *service.EMIService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /api/emi/schedule")
		defer span.End()

		var body emiRequestBody
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		req, err := body.toRequest(true)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.Int("emi.tenure", req.TenureMonths))

		resp, err := svc.Schedule(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
