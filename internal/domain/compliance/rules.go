package compliance

import (
	"fmt"
)

// Rules carries the regulatory constants and schedule offsets used by the engine.
type Rules struct {
	LaborHourBenchmark     float64
	TargetedBenchmark      float64
	FallbackThreshold      float64
	ActionPlanDueDays      int
	VerificationLogDueDays int
	FirstQuarterlyDueDays  int
	FinalReportDueDays     int
	QuarterlyReportDueDays int
	OverdueGraceDays       int
	QuarterLengthDays      int
}

// DefaultRules returns the 24 CFR 75 defaults.
func DefaultRules() Rules {
	return Rules{
		LaborHourBenchmark:     25,
		TargetedBenchmark:      5,
		FallbackThreshold:      200000,
		ActionPlanDueDays:      14,
		VerificationLogDueDays: 30,
		FirstQuarterlyDueDays:  90,
		FinalReportDueDays:     15,
		QuarterlyReportDueDays: 15,
		OverdueGraceDays:       3,
		QuarterLengthDays:      90,
	}
}

func (r Rules) Validate() error {
	if r.LaborHourBenchmark < 0 || r.LaborHourBenchmark > 100 {
		return fmt.Errorf("%w: labor hour benchmark %v out of [0,100]", ErrInvalidRules, r.LaborHourBenchmark)
	}
	if r.TargetedBenchmark < 0 || r.TargetedBenchmark > 100 {
		return fmt.Errorf("%w: targeted benchmark %v out of [0,100]", ErrInvalidRules, r.TargetedBenchmark)
	}
	if r.FallbackThreshold < 0 {
		return fmt.Errorf("%w: fallback threshold must not be negative", ErrInvalidRules)
	}
	if r.QuarterLengthDays <= 0 {
		return fmt.Errorf("%w: quarter length days must be positive", ErrInvalidRules)
	}
	if r.OverdueGraceDays < 0 {
		return fmt.Errorf("%w: overdue grace days must not be negative", ErrInvalidRules)
	}
	for name, days := range map[string]int{
		"action plan":          r.ActionPlanDueDays,
		"verification log":     r.VerificationLogDueDays,
		"first quarterly":      r.FirstQuarterlyDueDays,
		"final report":         r.FinalReportDueDays,
		"quarterly report due": r.QuarterlyReportDueDays,
	} {
		if days < 0 {
			return fmt.Errorf("%w: %s days must not be negative", ErrInvalidRules, name)
		}
	}
	return nil
}
