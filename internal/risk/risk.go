// Package risk scores conjunction events for operator triage, combining
// miss distance, relative velocity, object size, maneuverability and time
// urgency into a 0-100 score with an action recommendation.
package risk

import (
	"math"
	"strings"
	"time"
)

// Category is a severity bucket for a scored conjunction.
type Category string

const (
	Critical   Category = "CRITICAL"
	High       Category = "HIGH"
	Medium     Category = "MEDIUM"
	Low        Category = "LOW"
	Negligible Category = "NEGLIGIBLE"
)

// Input describes one conjunction to score. RCS size categories are SMALL,
// MEDIUM, LARGE or UNKNOWN (case-insensitive; anything else counts as
// UNKNOWN). A zero TCA leaves time urgency out of the score; a zero Now
// means the current time.
type Input struct {
	MissDistanceKm      float64
	RelativeVelocityKmS float64
	Object1RCS          string
	Object2RCS          string
	Object1Maneuverable bool
	Object2Maneuverable bool
	TCA                 time.Time
	Now                 time.Time
}

// Factors is the per-component breakdown behind a score.
type Factors struct {
	DistanceScore      float64 `json:"distance_score"`
	VelocityScore      float64 `json:"velocity_score"`
	SizeMultiplier     float64 `json:"size_multiplier"`
	ManeuverMultiplier float64 `json:"maneuver_multiplier"`
	UrgencyMultiplier  float64 `json:"urgency_multiplier"`
	BaseScore          float64 `json:"base_score"`
}

// Assessment is the scored result for one conjunction.
type Assessment struct {
	Score               float64  `json:"score"`
	Category            Category `json:"category"`
	MissDistanceKm      float64  `json:"miss_distance_km"`
	RelativeVelocityKmS float64  `json:"relative_velocity_km_s"`
	TimeToTCAHours      *float64 `json:"time_to_tca_hours,omitempty"`
	Factors             Factors  `json:"factors"`
	Recommendation      string   `json:"recommendation"`
}

// Assess scores a conjunction event.
//
// The base score blends distance (60%) and velocity (40%) components, then
// size, maneuverability and urgency multipliers scale it. Approaches under
// 0.5 km with meaningful relative velocity are floored at 85 regardless of
// multipliers, and the result is clamped to [0, 100].
func Assess(in Input) Assessment {
	distanceScore := distanceScore(in.MissDistanceKm)
	velocityScore := velocityScore(in.RelativeVelocityKmS)
	sizeMult := sizeMultiplier(in.Object1RCS, in.Object2RCS)
	maneuverMult := maneuverMultiplier(in.Object1Maneuverable, in.Object2Maneuverable)

	urgencyMult := 1.0
	var timeToTCA *float64
	if !in.TCA.IsZero() {
		now := in.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		hours := in.TCA.Sub(now).Hours()
		urgencyMult = urgencyMultiplier(hours)
		rounded := round2(hours)
		timeToTCA = &rounded
	}

	baseScore := distanceScore*0.6 + velocityScore*0.4
	adjusted := baseScore * sizeMult * maneuverMult * urgencyMult

	// Extremely close approaches stay critical no matter what the
	// multipliers say.
	if in.MissDistanceKm < 0.5 && in.RelativeVelocityKmS > 0.1 {
		adjusted = math.Max(adjusted, 85.0)
	}

	finalScore := math.Max(0, math.Min(100, adjusted))
	category := categorize(finalScore)

	return Assessment{
		Score:               round2(finalScore),
		Category:            category,
		MissDistanceKm:      in.MissDistanceKm,
		RelativeVelocityKmS: in.RelativeVelocityKmS,
		TimeToTCAHours:      timeToTCA,
		Factors: Factors{
			DistanceScore:      round2(distanceScore),
			VelocityScore:      round2(velocityScore),
			SizeMultiplier:     round2(sizeMult),
			ManeuverMultiplier: round2(maneuverMult),
			UrgencyMultiplier:  round2(urgencyMult),
			BaseScore:          round2(baseScore),
		},
		Recommendation: recommendation(category, in.Object1Maneuverable || in.Object2Maneuverable),
	}
}

// distanceScore decays exponentially with miss distance: near-maximum
// inside 1 km, negligible beyond 25 km.
func distanceScore(missDistanceKm float64) float64 {
	if missDistanceKm < 0 {
		missDistanceKm = 0
	}
	const k = 0.15
	return 100 * math.Exp(-k*missDistanceKm)
}

// velocityScore scales linearly with relative velocity, saturating at
// 10 km/s where collision energy is already catastrophic.
func velocityScore(relVelKmS float64) float64 {
	if relVelKmS < 0 {
		relVelKmS = 0
	}
	const maxVelocity = 10.0
	return math.Min(100, relVelKmS/maxVelocity*100)
}

func sizeMultiplier(rcs1, rcs2 string) float64 {
	return math.Max(sizeWeight(rcs1), sizeWeight(rcs2))
}

func sizeWeight(rcs string) float64 {
	switch strings.ToUpper(rcs) {
	case "SMALL":
		return 0.8
	case "LARGE":
		return 1.3
	default: // MEDIUM, UNKNOWN and anything unrecognized
		return 1.0
	}
}

func maneuverMultiplier(m1, m2 bool) float64 {
	switch {
	case !m1 && !m2:
		return 1.2
	case m1 && m2:
		return 0.7
	default:
		return 0.85
	}
}

func urgencyMultiplier(hoursToTCA float64) float64 {
	switch {
	case hoursToTCA < 0:
		return 1.0
	case hoursToTCA < 6:
		return 1.2
	case hoursToTCA < 24:
		return 1.1
	default:
		return 1.0
	}
}

func categorize(score float64) Category {
	switch {
	case score >= 80:
		return Critical
	case score >= 60:
		return High
	case score >= 40:
		return Medium
	case score >= 20:
		return Low
	default:
		return Negligible
	}
}

func recommendation(category Category, canManeuver bool) string {
	switch category {
	case Critical:
		if canManeuver {
			return "IMMEDIATE ACTION REQUIRED: Execute collision avoidance maneuver now"
		}
		return "CRITICAL ALERT: Neither object can maneuver - coordinate with operators immediately"
	case High:
		if canManeuver {
			return "Continuous monitoring required - prepare collision avoidance maneuver"
		}
		return "High risk event - coordinate tracking and assessment with all operators"
	case Medium:
		return "Monitor conjunction closely and update assessment as tracking improves"
	case Low:
		return "Maintain awareness - routine monitoring sufficient"
	default:
		return "Negligible risk - standard catalog maintenance"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
