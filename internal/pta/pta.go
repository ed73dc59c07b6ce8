// Package pta computes projected times of arrival. All computation happens in
// UTC: adding whole or fractional hours to a UTC instant rolls day, month and
// year boundaries correctly and is immune to DST transitions.
package pta

import "time"

// Built-in fallback buffers, applied when no rule row exists for a trip type.
const (
	DefaultLongHaulBufferHours  = 8
	DefaultShortHaulBufferHours = 4
)

// Rule is a resolved buffer rule. Either bound may be absent.
type Rule struct {
	MinHours *float64
	MaxHours *float64
}

// BufferHours selects the buffer to apply: the rule's MaxHours if present,
// else its MinHours, else the built-in default for the trip type. Values are
// taken as given, even if fractional or zero.
func BufferHours(tripType string, rule *Rule) float64 {
	if rule != nil {
		if rule.MaxHours != nil {
			return *rule.MaxHours
		}
		if rule.MinHours != nil {
			return *rule.MinHours
		}
	}
	if tripType == "long" {
		return DefaultLongHaulBufferHours
	}
	return DefaultShortHaulBufferHours
}

// Compute projects the time of arrival from a base timestamp. It returns the
// projected timestamp in UTC and the buffer that was applied.
func Compute(base time.Time, tripType string, rule *Rule) (time.Time, float64) {
	buffer := BufferHours(tripType, rule)
	return base.UTC().Add(time.Duration(buffer * float64(time.Hour))), buffer
}
