package emi

import (
	"math"

	"github.com/boddenberg/loanhub/internal/domain"
)

// Schedule returns the month-by-month breakdown of a loan.
func Schedule(principal, annualRatePercent float64, tenureMonths int) ([]domain.AmortizationEntry, error) {
	return ScheduleRequest(Request{
		Principal:         principal,
		AnnualRatePercent: annualRatePercent,
		TenureMonths:      tenureMonths,
	})
}

// ScheduleRequest builds the schedule for req. It always has exactly
// req.TenureMonths entries.
//
// Every month pays the same rounded installment from CalculateRequest, so
// the split between principal and interest carries the rounding drift. The
// balance never goes below zero and the last month closes it.
func ScheduleRequest(req Request) ([]domain.AmortizationEntry, error) {
	result, err := CalculateRequest(req)
	if err != nil {
		return nil, err
	}

	r := req.MonthlyRate()
	installment := result.MonthlyInstallment
	remaining := req.Principal

	schedule := make([]domain.AmortizationEntry, 0, req.TenureMonths)
	for month := 1; month <= req.TenureMonths; month++ {
		interest := remaining * r
		principalPart := installment - interest

		remaining = math.Max(0, remaining-principalPart)
		if month == req.TenureMonths {
			remaining = 0
		}
		if !finite(interest) || !finite(remaining) {
			return nil, errOutOfRange
		}

		schedule = append(schedule, domain.AmortizationEntry{
			Month:              month,
			Installment:        installment,
			PrincipalComponent: principalPart,
			InterestComponent:  interest,
			RemainingPrincipal: remaining,
		})
	}

	return schedule, nil
}

// TotalPrincipal sums the principal components of a schedule.
func TotalPrincipal(schedule []domain.AmortizationEntry) float64 {
	var sum float64
	for _, e := range schedule {
		sum += e.PrincipalComponent
	}
	return sum
}

// TotalInterest sums the interest components of a schedule.
func TotalInterest(schedule []domain.AmortizationEntry) float64 {
	var sum float64
	for _, e := range schedule {
		sum += e.InterestComponent
	}
	return sum
}
