// Package emi computes equated monthly installments and the matching
// amortization schedule. Everything here is pure: no I/O, no shared state,
// safe to call from any number of goroutines.
package emi

import (
	"math"

	"github.com/boddenberg/loanhub/internal/domain"
	"github.com/boddenberg/loanhub/internal/money"
)

const (
	percent       = 100.0
	monthsPerYear = 12.0
)

// Request is a single calculation input.
type Request struct {
	Principal         float64
	AnnualRatePercent float64
	TenureMonths      int
}

// Validate checks the preconditions shared by Calculate and Schedule.
func (r Request) Validate() error {
	switch {
	case math.IsNaN(r.Principal) || math.IsInf(r.Principal, 0):
		return &domain.ErrInvalidInput{Field: "principal", Message: "must be a finite number"}
	case r.Principal <= 0:
		return &domain.ErrInvalidInput{Field: "principal", Message: "must be greater than 0"}
	case math.IsNaN(r.AnnualRatePercent) || math.IsInf(r.AnnualRatePercent, 0):
		return &domain.ErrInvalidInput{Field: "rate", Message: "must be a finite number"}
	case r.AnnualRatePercent < 0:
		return &domain.ErrInvalidInput{Field: "rate", Message: "must not be negative"}
	case r.TenureMonths <= 0:
		return &domain.ErrInvalidInput{Field: "tenure", Message: "must be at least 1 month"}
	}
	return nil
}

// MonthlyRate converts the annual percentage into a monthly fraction.
func (r Request) MonthlyRate() float64 {
	return r.AnnualRatePercent / percent / monthsPerYear
}

// Calculate returns the installment and totals for a loan.
func Calculate(principal, annualRatePercent float64, tenureMonths int) (domain.EMIResult, error) {
	return CalculateRequest(Request{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TenureMonths:      tenureMonths,
	})
}

// CalculateRequest is Calculate for an already assembled Request.
//
// The installment, total payable and total interest are each rounded from
// the unrounded installment, so totalPayable may differ from
// installment*tenure by a few units.
func CalculateRequest(req Request) (domain.EMIResult, error) {
	if err := req.Validate(); err != nil {
		return domain.EMIResult{}, err
	}

	raw := rawInstallment(req)
	total := raw * float64(req.TenureMonths)
	if !finite(raw) || !finite(total) {
		return domain.EMIResult{}, errOutOfRange
	}

	return domain.EMIResult{
		MonthlyInstallment: money.RoundWhole(raw),
		TotalPayable:       money.RoundWhole(total),
		TotalInterest:      money.RoundWhole(total - req.Principal),
		Principal:          req.Principal,
		AnnualRatePercent:  req.AnnualRatePercent,
		TenureMonths:       req.TenureMonths,
	}, nil
}

// errOutOfRange rejects inputs whose installment or schedule cannot be
// represented as a finite amount.
var errOutOfRange = &domain.ErrInvalidInput{Field: "principal", Message: "loan amounts out of range for this rate and tenure"}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// rawInstallment is P·r·(1+r)^N / ((1+r)^N − 1), or P/N when r is zero
// (the general formula divides by zero there). When (1+r)^N overflows the
// fraction has converged to 1 and the installment is the interest alone.
func rawInstallment(req Request) float64 {
	r := req.MonthlyRate()
	n := float64(req.TenureMonths)
	if r == 0 {
		return req.Principal / n
	}
	growth := math.Pow(1+r, n)
	if math.IsInf(growth, 1) {
		return req.Principal * r
	}
	return req.Principal * r * growth / (growth - 1)
}
