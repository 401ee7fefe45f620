package offer

import "math"

// PricingTerms is the snapshot of platform settings an offer is priced
// against. Providers never supply a price; it is derived entirely from
// these terms to prevent tampering.
type PricingTerms struct {
	BasePricePerLiterCents int64
	CommissionPct          float64
	UrgencySurchargePct    float64
}

type PriceQuoter interface {
	QuoteCents(terms PricingTerms, amountLiters int, urgent bool) int64
}

// StandardPriceQuoter prices an offer as base volume cost plus platform
// commission, with an urgency surcharge applied before commission.
type StandardPriceQuoter struct{}

func NewStandardPriceQuoter() *StandardPriceQuoter {
	return &StandardPriceQuoter{}
}

func (q *StandardPriceQuoter) QuoteCents(terms PricingTerms, amountLiters int, urgent bool) int64 {
	base := float64(terms.BasePricePerLiterCents) * float64(amountLiters)
	if urgent {
		base *= 1 + terms.UrgencySurchargePct/100.0
	}
	total := base * (1 + terms.CommissionPct/100.0)
	if total < 0 {
		return 0
	}
	return int64(math.Round(total))
}
