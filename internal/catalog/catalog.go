// Package catalog filters and orders loan products for display.
//
// Filter never mutates its input: it returns a fresh slice, so callers can
// share one catalog snapshot between concurrent requests.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/boddenberg/loanhub/internal/domain"
)

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	// SortDefault orders by rating (desc), then interest rate (asc).
	SortDefault SortKey = ""
	// SortByRating orders by rating, highest first.
	SortByRating SortKey = "rating"
	// SortByInterestRate orders by interest rate, lowest first.
	SortByInterestRate SortKey = "interestRate"
	// SortByMaxAmount orders by maximum amount, highest first.
	SortByMaxAmount SortKey = "maxAmount"
)

// ParseSortKey validates a user supplied sort key. An empty string yields
// SortDefault.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortDefault, SortByRating, SortByInterestRate, SortByMaxAmount:
		return k, nil
	default:
		return "", &domain.ErrInvalidInput{
			Field:   "sortBy",
			Message: fmt.Sprintf("unknown sort key %q (want rating, interestRate or maxAmount)", s),
		}
	}
}

// Criteria is the set of constraints applied by Filter. Zero values (empty
// strings, nil pointers) impose no constraint.
type Criteria struct {
	Type             domain.ProductType
	Company          string
	MinAmountFloor   *float64
	MaxAmountCeiling *float64
	Search           string
	Sort             SortKey
}

// Matches reports whether p satisfies every supplied criterion.
func Matches(p domain.LoanProduct, c Criteria) bool {
	if c.Type != "" && p.Type != c.Type {
		return false
	}
	if c.Company != "" && !containsFold(p.Company, c.Company) {
		return false
	}
	if c.MinAmountFloor != nil && p.MinAmount < *c.MinAmountFloor {
		return false
	}
	if c.MaxAmountCeiling != nil && p.MaxAmount > *c.MaxAmountCeiling {
		return false
	}
	if c.Search != "" && !containsFold(p.Name, c.Search) && !containsFold(p.Company, c.Search) {
		return false
	}
	return true
}

// Filter keeps the products matching c and orders them by c.Sort.
func Filter(products []domain.LoanProduct, c Criteria) []domain.LoanProduct {
	out := make([]domain.LoanProduct, 0, len(products))
	for _, p := range products {
		if Matches(p, c) {
			out = append(out, p)
		}
	}
	Sort(out, c.Sort)
	return out
}

// Sort orders products in place. The sort is stable, so products with equal
// keys keep their relative input order.
func Sort(products []domain.LoanProduct, key SortKey) {
	var less func(a, b domain.LoanProduct) bool
	switch key {
	case SortByRating:
		less = func(a, b domain.LoanProduct) bool { return a.Rating > b.Rating }
	case SortByInterestRate:
		less = func(a, b domain.LoanProduct) bool { return a.InterestRate < b.InterestRate }
	case SortByMaxAmount:
		less = func(a, b domain.LoanProduct) bool { return a.MaxAmount > b.MaxAmount }
	default:
		less = func(a, b domain.LoanProduct) bool {
			if a.Rating != b.Rating {
				return a.Rating > b.Rating
			}
			return a.InterestRate < b.InterestRate
		}
	}
	sort.SliceStable(products, func(i, j int) bool {
		return less(products[i], products[j])
	})
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
