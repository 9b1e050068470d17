package domain

import "time"

// ============================================================
// Loan products
// ============================================================

// ProductType is the category a lending product belongs to.
type ProductType string

const (
	ProductPersonalLoan ProductType = "personal-loan"
	ProductHomeLoan     ProductType = "home-loan"
	ProductCarLoan      ProductType = "car-loan"
	ProductBusinessLoan ProductType = "business-loan"
	ProductCreditCard   ProductType = "credit-card"
	ProductGoldLoan     ProductType = "gold-loan"
)

// ProductTypes lists every known product type in display order.
var ProductTypes = []ProductType{
	ProductPersonalLoan,
	ProductHomeLoan,
	ProductCarLoan,
	ProductBusinessLoan,
	ProductCreditCard,
	ProductGoldLoan,
}

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	for _, known := range ProductTypes {
		if t == known {
			return true
		}
	}
	return false
}

// TenureRange is the allowed loan duration in months.
type TenureRange struct {
	Min int `json:"min" bson:"min"`
	Max int `json:"max" bson:"max"`
}

// LoanProduct is a lending product shown in the catalog.
// The engines only ever read it.
type LoanProduct struct {
	ID            string      `json:"id" bson:"-"`
	Name          string      `json:"name" bson:"name"`
	Type          ProductType `json:"type" bson:"type"`
	InterestRate  float64     `json:"interestRate" bson:"interestRate"`
	MaxAmount     float64     `json:"maxAmount" bson:"maxAmount"`
	MinAmount     float64     `json:"minAmount" bson:"minAmount"`
	Company       string      `json:"company" bson:"company"`
	Features      []string    `json:"features" bson:"features"`
	ProcessingFee string      `json:"processingFee" bson:"processingFee"`
	Tenure        TenureRange `json:"tenure" bson:"tenure"`
	Eligibility   []string    `json:"eligibility" bson:"eligibility"`
	Rating        float64     `json:"rating" bson:"rating"`
	CreatedAt     time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// SeedResponse is returned by POST /api/seed.
type SeedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// SampleProducts returns the six products used to seed an empty catalog.
// A fresh slice is returned on every call.
func SampleProducts() []LoanProduct {
	return []LoanProduct{
		{
			Name:          "Personal Loan Express",
			Type:          ProductPersonalLoan,
			InterestRate:  10.5,
			MaxAmount:     2000000,
			Company:       "HDFC Bank",
			Features:      []string{"Quick approval", "No collateral required", "Flexible tenure"},
			ProcessingFee: "1.5% + GST",
			MinAmount:     50000,
			Tenure:        TenureRange{Min: 12, Max: 60},
			Eligibility:   []string{"Salaried individuals", "Age 21-65 years", "Min salary ₹25,000"},
			Rating:        4.5,
		},
		{
			Name:          "Home Loan Prime",
			Type:          ProductHomeLoan,
			InterestRate:  8.75,
			MaxAmount:     10000000,
			Company:       "SBI",
			Features:      []string{"Low interest rates", "Long tenure", "Tax benefits"},
			ProcessingFee: "0.35% + GST",
			MinAmount:     500000,
			Tenure:        TenureRange{Min: 60, Max: 360},
			Eligibility:   []string{"Property purchase/construction", "Age 18-70 years"},
			Rating:        4.8,
		},
		{
			Name:          "Car Loan Accelerate",
			Type:          ProductCarLoan,
			InterestRate:  9.25,
			MaxAmount:     1500000,
			Company:       "ICICI Bank",
			Features:      []string{"90% financing", "Quick processing", "Flexible EMI"},
			ProcessingFee: "2.5% + GST",
			MinAmount:     100000,
			Tenure:        TenureRange{Min: 12, Max: 84},
			Eligibility:   []string{"New/Used car purchase", "Age 21-65 years"},
			Rating:        4.3,
		},
		{
			Name:          "Business Growth Loan",
			Type:          ProductBusinessLoan,
			InterestRate:  12.5,
			MaxAmount:     5000000,
			Company:       "Axis Bank",
			Features:      []string{"Collateral free", "Quick disbursement", "Flexible repayment"},
			ProcessingFee: "2% + GST",
			MinAmount:     200000,
			Tenure:        TenureRange{Min: 12, Max: 72},
			Eligibility:   []string{"Business vintage 2+ years", "ITR filing"},
			Rating:        4.2,
		},
		{
			Name:          "Premium Balance Transfer",
			Type:          ProductCreditCard,
			InterestRate:  3.5,
			MaxAmount:     500000,
			Company:       "HDFC Bank",
			Features:      []string{"Rewards program", "Airport lounge access", "Cashback offers"},
			ProcessingFee: "₹1,500 + GST",
			MinAmount:     25000,
			Tenure:        TenureRange{Min: 1, Max: 1},
			Eligibility:   []string{"Min income ₹3 lakhs", "Good credit score"},
			Rating:        4.6,
		},
		{
			Name:          "Loan Against Property Instant",
			Type:          ProductGoldLoan,
			InterestRate:  11.5,
			MaxAmount:     1000000,
			Company:       "Manappuram Finance",
			Features:      []string{"Instant approval", "No income proof", "Competitive rates"},
			ProcessingFee: "1% + GST",
			MinAmount:     10000,
			Tenure:        TenureRange{Min: 3, Max: 36},
			Eligibility:   []string{"Gold ornaments as collateral", "Age 18+ years"},
			Rating:        4.4,
		},
	}
}
