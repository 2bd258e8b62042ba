// Package confidence maps a resource's age against a rule's threshold
// configuration to an ordered confidence tier.
package confidence

import "github.com/skysweep/skysweep/internal/domain/rule"

// Tier expresses how certain the system is that a resource is truly
// wasted, derived from age thresholds.
type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// Valid reports whether t is one of the four known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierCritical, TierHigh, TierMedium, TierLow:
		return true
	}
	return false
}

// Resource-type-independent fallback day counts, used for any tiered
// threshold a rule does not set explicitly. Never zero: a missing key
// falls back here, not to an unset value.
const (
	DefaultCriticalDays = 90
	DefaultHighDays     = 30
	DefaultMediumDays   = 7
)

// Scheme discriminates the two threshold configurations a rule can
// carry. The legacy single-threshold scheme only ever distinguished
// "high" from "not high"; it applies only when no tiered key is
// present on the rule.
type Scheme int

const (
	SchemeTiered Scheme = iota
	SchemeLegacy
)

// Thresholds is a resolved threshold configuration. For SchemeTiered
// the three day counts are always populated (explicit values or the
// package defaults); for SchemeLegacy only Legacy is meaningful.
type Thresholds struct {
	Scheme   Scheme
	Critical int
	High     int
	Medium   int
	Legacy   int
}

// Default returns the tiered fallback configuration.
func Default() Thresholds {
	return Thresholds{
		Scheme:   SchemeTiered,
		Critical: DefaultCriticalDays,
		High:     DefaultHighDays,
		Medium:   DefaultMediumDays,
	}
}

// FromSettings resolves the threshold scheme a settings map carries.
// Any tiered key present selects the tiered scheme, with defaults
// filling the gaps; the legacy key is consulted only when no tiered
// key exists. A map with neither yields the tiered defaults.
func FromSettings(s rule.Settings) Thresholds {
	t := Default()

	tiered := false
	if days, ok := s.Int(rule.KeyConfidenceCriticalDays); ok {
		t.Critical = days
		tiered = true
	}
	if days, ok := s.Int(rule.KeyConfidenceHighDays); ok {
		t.High = days
		tiered = true
	}
	if days, ok := s.Int(rule.KeyConfidenceMediumDays); ok {
		t.Medium = days
		tiered = true
	}
	if tiered {
		return t
	}

	if days, ok := s.Int(rule.KeyConfidenceThresholdDays); ok {
		return Thresholds{Scheme: SchemeLegacy, Legacy: days}
	}
	return t
}

// FromRule resolves the thresholds a rule's current settings carry.
func FromRule(r rule.DetectionRule) Thresholds {
	return FromSettings(r.CurrentSettings)
}

// Classify maps an age in days to a tier. An unknown age (negative
// sentinel) is always low: staleness cannot be asserted without an
// age. Tiered thresholds are evaluated critical, high, medium in that
// fixed order, so critical wins ties even when a user configures the
// day counts out of order.
func Classify(ageDays int, t Thresholds) Tier {
	if ageDays < 0 {
		return TierLow
	}

	if t.Scheme == SchemeLegacy {
		if ageDays >= t.Legacy {
			return TierHigh
		}
		return TierLow
	}

	switch {
	case ageDays >= t.Critical:
		return TierCritical
	case ageDays >= t.High:
		return TierHigh
	case ageDays >= t.Medium:
		return TierMedium
	default:
		return TierLow
	}
}
