// Package metabolic implements the caloric planning math behind weight
// goals: basal metabolic rate, total daily energy expenditure, the daily
// caloric target required to reach a target weight by a target date, and
// the pace assessment for that plan.
package metabolic

import (
	"math"
	"time"

	"github.com/rmsalud/salud-api/internal/apperrors"
	"github.com/rmsalud/salud-api/internal/utils"
)

// Sex values accepted for BMR computation.
const (
	SexMale   = "M"
	SexFemale = "F"
	SexOther  = "O"
)

// ActivityLevel is one of five physical activity tiers.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

// activityFactors maps each tier to its TDEE multiplier.
var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary:  1.2,
	ActivityLight:      1.375,
	ActivityModerate:   1.55,
	ActivityActive:     1.725,
	ActivityVeryActive: 1.9,
}

// KcalPerKg is the standard approximation of the energy stored in one
// kilogram of body weight.
const KcalPerKg = 7700

// MinDailyTarget is the safety floor for the daily caloric target.
const MinDailyTarget = 1200

// MaxWeightDelta is the largest current-to-target difference accepted
// for a single goal, in kilograms.
const MaxWeightDelta = 50

// GoalType distinguishes weight-loss goals from weight-gain goals.
type GoalType string

const (
	GoalLoss GoalType = "loss"
	GoalGain GoalType = "gain"
)

// Pace classifies how aggressive a plan's daily caloric adjustment is.
type Pace string

const (
	// PaceExtreme flags plans demanding 1000 kcal/day or more; sustained
	// adjustments of that size carry health risk.
	PaceExtreme Pace = "extreme"
	// PaceHealthy covers the 500-1000 kcal/day band.
	PaceHealthy Pace = "healthy"
	// PaceSlow covers plans under 300 kcal/day, where an earlier target
	// date is worth suggesting.
	PaceSlow Pace = "slow"
	// PaceNeutral covers the 300-500 kcal/day band. Neither a warning nor
	// a suggestion applies there, so no advisory message is emitted.
	PaceNeutral Pace = "neutral"
)

// Advisory returns the user-facing message for a pace, empty for neutral.
func (p Pace) Advisory() string {
	switch p {
	case PaceExtreme:
		return "The selected target date requires a very aggressive daily caloric adjustment (1000 kcal or more). This may be unsustainable or unsafe; please extend your target date."
	case PaceHealthy:
		return "Excellent pace. Your goal is sustainable and safe."
	case PaceSlow:
		return "Slow pace. To make meaningful progress by your target date the daily adjustment should be larger; consider a closer target date or a higher activity level."
	default:
		return ""
	}
}

// ClassifyPace buckets an absolute daily caloric adjustment.
func ClassifyPace(dailyDelta float64) Pace {
	delta := math.Abs(dailyDelta)
	switch {
	case delta >= 1000:
		return PaceExtreme
	case delta >= 500:
		return PaceHealthy
	case delta < 300:
		return PaceSlow
	default:
		return PaceNeutral
	}
}

// Profile carries the body metrics BMR depends on.
type Profile struct {
	Age      int
	WeightKg float64
	HeightCm float64
	Sex      string
}

// Complete reports whether every metric needed for planning is present.
func (p Profile) Complete() bool {
	return p.Age > 0 && p.WeightKg > 0 && p.HeightCm > 0 && p.Sex != ""
}

// PlanInput is a weight-goal request prior to validation.
type PlanInput struct {
	CurrentWeightKg float64
	TargetWeightKg  float64
	TargetDate      time.Time
	ActivityLevel   ActivityLevel
}

// Plan is the derived caloric plan for a validated goal.
type Plan struct {
	BMR         float64
	TDEE        float64
	DailyDelta  float64 // required daily deficit (loss) or surplus (gain), kcal
	DailyTarget float64 // daily caloric intake target, kcal
	TotalDays   int
	GoalType    GoalType
	Pace        Pace
}

// BMR computes the basal metabolic rate with the Mifflin-St Jeor formula
// for the given weight. The sex adjustment is +5 for male and -161
// otherwise.
func BMR(weightKg float64, p Profile) float64 {
	bmr := 10*weightKg + 6.25*p.HeightCm - 5*float64(p.Age)
	if p.Sex == SexMale {
		bmr += 5
	} else {
		bmr -= 161
	}
	return round2(bmr)
}

// TDEE scales a BMR by the activity factor of the given tier. Unknown
// tiers fall back to sedentary.
func TDEE(bmr float64, level ActivityLevel) float64 {
	factor, ok := activityFactors[level]
	if !ok {
		factor = activityFactors[ActivitySedentary]
	}
	return round2(bmr * factor)
}

// ValidateInput checks a goal request without computing anything.
// Failures are user-facing validation errors, never internal ones.
func ValidateInput(in PlanInput) error {
	if in.CurrentWeightKg <= 0 || in.TargetWeightKg <= 0 || in.TargetDate.IsZero() || in.ActivityLevel == "" {
		return apperrors.NewValidationError("current weight, target weight, target date and activity level are all required")
	}
	if _, ok := activityFactors[in.ActivityLevel]; !ok {
		return apperrors.NewValidationError("unknown activity level")
	}
	if in.CurrentWeightKg == in.TargetWeightKg {
		return apperrors.NewValidationError("current weight and target weight cannot be equal")
	}
	if math.Abs(in.CurrentWeightKg-in.TargetWeightKg) > MaxWeightDelta {
		return apperrors.NewValidationError("the difference between current and target weight cannot exceed 50 kg; set smaller, achievable goals")
	}
	// The request may carry a time of day; only the calendar date decides
	// whether the target is in the future.
	if !utils.StartOfDay(in.TargetDate).After(utils.Today()) {
		return apperrors.NewValidationError("the target date must be after today")
	}
	return nil
}

// ComputePlan validates the request and derives the full caloric plan
// from it and the user's profile. Pure computation, no side effects.
func ComputePlan(in PlanInput, profile Profile) (Plan, error) {
	if err := ValidateInput(in); err != nil {
		return Plan{}, err
	}
	if !profile.Complete() {
		return Plan{}, apperrors.NewValidationError("complete your profile (age, weight, height, sex) before setting a goal")
	}

	bmr := BMR(in.CurrentWeightKg, profile)
	tdee := TDEE(bmr, in.ActivityLevel)

	totalDays := utils.DaysBetween(utils.Today(), in.TargetDate)
	if totalDays < 1 {
		// Unreachable after validation; kept so the division below can
		// never run on a zero window.
		return Plan{}, apperrors.NewValidationError("the target date must be after today")
	}
	weightDelta := math.Abs(in.CurrentWeightKg - in.TargetWeightKg)
	dailyDelta := round2(weightDelta * KcalPerKg / float64(totalDays))

	goalType := GoalLoss
	target := tdee - dailyDelta
	if in.TargetWeightKg > in.CurrentWeightKg {
		goalType = GoalGain
		target = tdee + dailyDelta
	}

	return Plan{
		BMR:         bmr,
		TDEE:        tdee,
		DailyDelta:  dailyDelta,
		DailyTarget: round2(math.Max(target, MinDailyTarget)),
		TotalDays:   totalDays,
		GoalType:    goalType,
		Pace:        ClassifyPace(dailyDelta),
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
