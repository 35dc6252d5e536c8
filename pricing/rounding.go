package pricing

import "math"

// PsychologicalRound applies the final rounding rule. Large accounts round to the
// nearest thousand (ties away from zero). Everyone else gets an anchor-minus-one
// price: the next multiple of 100 minus 1 from 1000 upward, otherwise the next
// multiple of 10 minus 1.
func PsychologicalRound(segment Segment, price float64) float64 {
	if segment.LargeAccount() {
		return math.Round(price/1000) * 1000
	}
	if price >= 1000 {
		return math.Ceil(price/100)*100 - 1
	}
	return math.Ceil(price/10)*10 - 1
}

// DiscountPercentage is max(0, (base - final) / base * 100).
func DiscountPercentage(base, final float64) float64 {
	if base <= 0 {
		return 0
	}
	return math.Max(0, (base-final)/base*100)
}
