package compliance

// CalculateComplianceRate returns qualifying/total on a 0-100 scale.
// Zero total hours is a zero rate, never compliant by default.
func CalculateComplianceRate(totalHours, qualifyingHours float64) float64 {
	if totalHours <= 0 {
		return 0
	}
	return qualifyingHours / totalHours * 100
}

type BenchmarkCheck struct {
	IsMet    bool
	Variance float64
}

func CheckBenchmarkCompliance(actualRate, requiredBenchmark float64) BenchmarkCheck {
	return BenchmarkCheck{
		IsMet:    actualRate >= requiredBenchmark,
		Variance: actualRate - requiredBenchmark,
	}
}

// LaborEntry is one labor-hour record resolved to its worker's classification.
type LaborEntry struct {
	WorkerID         string
	Hours            float64
	IsSection3       bool
	IsTargetedWorker bool
}

type LaborTotals struct {
	TotalHours      float64
	Section3Hours   float64
	TargetedHours   float64
	TotalWorkers    int
	Section3Workers int
	TargetedWorkers int
}

// AggregateLabor sums hours and counts distinct workers per classification.
func AggregateLabor(entries []LaborEntry) (LaborTotals, error) {
	var totals LaborTotals
	all := make(map[string]struct{})
	section3 := make(map[string]struct{})
	targeted := make(map[string]struct{})

	for _, e := range entries {
		if e.Hours < 0 {
			return LaborTotals{}, ErrNegativeHours
		}
		totals.TotalHours += e.Hours
		all[e.WorkerID] = struct{}{}
		if e.IsSection3 {
			totals.Section3Hours += e.Hours
			section3[e.WorkerID] = struct{}{}
		}
		if e.IsTargetedWorker {
			totals.TargetedHours += e.Hours
			targeted[e.WorkerID] = struct{}{}
		}
	}

	totals.TotalWorkers = len(all)
	totals.Section3Workers = len(section3)
	totals.TargetedWorkers = len(targeted)
	return totals, nil
}
