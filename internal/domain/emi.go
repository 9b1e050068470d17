package domain

// ============================================================
// EMI calculator — request / response types
// ============================================================

// EMIResult is the outcome of a single installment calculation.
// Amounts are whole currency units, each rounded on its own.
type EMIResult struct {
	MonthlyInstallment float64 `json:"emi"`
	TotalPayable       float64 `json:"totalAmount"`
	TotalInterest      float64 `json:"totalInterest"`
	Principal          float64 `json:"principal"`
	AnnualRatePercent  float64 `json:"rate"`
	TenureMonths       int     `json:"tenure"`
}

// AmortizationEntry is one month of a repayment schedule.
type AmortizationEntry struct {
	Month              int     `json:"month"`
	Installment        float64 `json:"emi"`
	PrincipalComponent float64 `json:"principalPayment"`
	InterestComponent  float64 `json:"interestPayment"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// ScheduleResponse is returned by POST /api/emi/schedule.
type ScheduleResponse struct {
	Summary  EMIResult           `json:"summary"`
	Schedule []AmortizationEntry `json:"schedule"`
}
