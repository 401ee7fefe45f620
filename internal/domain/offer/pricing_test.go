//go:build unit

package offer_test

import (
	"testing"

	"aguamarket/internal/domain/offer"

	"github.com/stretchr/testify/assert"
)

func TestStandardPriceQuoter(t *testing.T) {
	quoter := offer.NewStandardPriceQuoter()

	terms := offer.PricingTerms{
		BasePricePerLiterCents: 50,
		CommissionPct:          10.0,
		UrgencySurchargePct:    25.0,
	}

	tests := []struct {
		name   string
		terms  offer.PricingTerms
		liters int
		urgent bool
		want   int64
	}{
		{
			name:   "base price plus commission",
			terms:  terms,
			liters: 1000,
			// 50 * 1000 = 50000, +10% commission
			want: 55000,
		},
		{
			name:   "urgency surcharge applied before commission",
			terms:  terms,
			liters: 1000,
			urgent: true,
			// 50000 * 1.25 = 62500, then * 1.10
			want: 68750,
		},
		{
			name: "fractional result rounds half up",
			terms: offer.PricingTerms{
				BasePricePerLiterCents: 7,
				CommissionPct:          7.5,
			},
			liters: 33,
			// 231 * 1.075 = 248.325
			want: 248,
		},
		{
			name: "zero commission and surcharge",
			terms: offer.PricingTerms{
				BasePricePerLiterCents: 50,
			},
			liters: 200,
			urgent: true,
			want:   10000,
		},
		{
			name:   "minimum volume",
			terms:  terms,
			liters: 20,
			want:   1100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quoter.QuoteCents(tt.terms, tt.liters, tt.urgent)
			assert.Equal(t, tt.want, got)
		})
	}
}
