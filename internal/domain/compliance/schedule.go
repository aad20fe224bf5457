package compliance

import (
	"fmt"
	"time"
)

// ScheduledTask is a task the engine must create, before persistence.
type ScheduledTask struct {
	Slot        string
	Title       string
	Description string
	TaskType    string
	Priority    string
	DueDate     time.Time
}

const (
	SlotActionPlan         = "action_plan"
	SlotVerificationLog    = "worker_verification_log"
	SlotFirstQuarterly     = "first_quarterly_report"
	SlotFinalReport        = "final_report"
	onboardingTaskSetCount = 4
)

// OnboardingTaskCount is the size of the fixed onboarding schedule.
func OnboardingTaskCount() int { return onboardingTaskSetCount }

// OnboardingSchedule returns the four mandatory tasks for an applicable contract.
func OnboardingSchedule(rules Rules, start, end time.Time) ([]ScheduledTask, error) {
	if start.IsZero() || end.IsZero() {
		return nil, ErrContractDatesMissing
	}

	return []ScheduledTask{
		{
			Slot:        SlotActionPlan,
			Title:       "Action Plan Submission",
			Description: "Submit the Section 3 action plan describing how the contractor will meet its labor hour commitments.",
			TaskType:    TaskTypeDocumentUpload,
			Priority:    PriorityHigh,
			DueDate:     addDays(start, rules.ActionPlanDueDays),
		},
		{
			Slot:        SlotVerificationLog,
			Title:       "Worker Verification Log Setup",
			Description: "Set up the worker verification log used to certify Section 3 and Targeted Section 3 workers.",
			TaskType:    TaskTypeWorkerVerification,
			Priority:    PriorityHigh,
			DueDate:     addDays(start, rules.VerificationLogDueDays),
		},
		{
			Slot:        SlotFirstQuarterly,
			Title:       "First Quarterly Report",
			Description: "Submit the first quarterly Section 3 labor hour report.",
			TaskType:    TaskTypeReportSubmission,
			Priority:    PriorityHigh,
			DueDate:     addDays(start, rules.FirstQuarterlyDueDays),
		},
		{
			Slot:        SlotFinalReport,
			Title:       "Final Report",
			Description: "Submit the final Section 3 compliance report for the contract period.",
			TaskType:    TaskTypeReportSubmission,
			Priority:    PriorityHigh,
			DueDate:     addDays(end, rules.FinalReportDueDays),
		},
	}, nil
}

// OnboardingGenerationKey identifies one slot of a contract's onboarding schedule.
func OnboardingGenerationKey(contractID, slot string) string {
	return RuleOnCreateContract + ":" + contractID + ":" + slot
}

// QuarterlyGenerationKey identifies a contract's reminder for one quarter.
func QuarterlyGenerationKey(contractID string, year, quarter int) string {
	return fmt.Sprintf("%s:%s:%dQ%d", RuleOnQuarterEnd, contractID, year, quarter)
}

// Quarter returns the calendar year and quarter (1-4) containing t, in UTC.
func Quarter(t time.Time) (int, int) {
	t = t.UTC()
	return t.Year(), (int(t.Month())-1)/3 + 1
}

// QuarterStart is midnight UTC of the first day of t's quarter.
func QuarterStart(t time.Time) time.Time {
	year, q := Quarter(t)
	return time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
}

// QuarterEnd is midnight UTC of the last day of t's quarter.
func QuarterEnd(t time.Time) time.Time {
	return QuarterStart(t).AddDate(0, 3, -1)
}

// MonthStart is midnight UTC of the first day of t's month.
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodWindow returns the [start, end] window of a labor summary computed at now.
// The end is the calculation day so repeated runs on one day replace the same row.
func PeriodWindow(period Period, now, contractStart time.Time) (time.Time, time.Time, error) {
	end := StartOfDay(now)
	switch period {
	case PeriodMonthly:
		return MonthStart(now), end, nil
	case PeriodQuarterly:
		return QuarterStart(now), end, nil
	case PeriodTotal:
		if contractStart.IsZero() {
			return time.Time{}, time.Time{}, ErrContractDatesMissing
		}
		return StartOfDay(contractStart), end, nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, period)
	}
}

func addDays(t time.Time, days int) time.Time {
	return t.UTC().AddDate(0, 0, days)
}
