// README: Price sanity validation against an expected range.
package pricing

// ValidateStability reports whether a computed price falls inside the expected
// range. Advisory: callers surface the result as a stability flag, they never
// block a quote on it.
func ValidateStability(priceCents, loCents, hiCents int64) bool {
	return priceCents >= loCents && priceCents <= hiCents
}

// plausibleCeiling bounds what a sane quote can reach: the metered subtotal at
// the maximum surge the platform ever applies, plus the fee, with headroom for
// rounding.
func plausibleCeiling(subtotalCents, feeCents int64) int64 {
	const maxPlausibleSurge = 1.5
	return roundCents(float64(subtotalCents)*maxPlausibleSurge) + feeCents + 1
}
