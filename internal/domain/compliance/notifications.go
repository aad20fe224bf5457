package compliance

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// NotificationDraft is a notification before it is addressed to recipients.
type NotificationDraft struct {
	Type              string
	Title             string
	Message           string
	Priority          string
	RelatedContractID string
	RelatedTaskID     string
}

// OverdueCutoff is the latest due date that counts as overdue at now.
func OverdueCutoff(rules Rules, now time.Time) time.Time {
	return now.UTC().AddDate(0, 0, -rules.OverdueGraceDays)
}

// DaysOverdue is the number of whole days between due and now.
func DaysOverdue(now, due time.Time) int {
	d := now.Sub(due)
	if d <= 0 {
		return 0
	}
	return int(math.Floor(d.Hours() / 24))
}

// QuartersElapsed counts whole reporting quarters between start and now.
func QuartersElapsed(rules Rules, now, start time.Time) int {
	if start.IsZero() || !now.After(start) || rules.QuarterLengthDays <= 0 {
		return 0
	}
	quarter := time.Duration(rules.QuarterLengthDays) * 24 * time.Hour
	return int(now.Sub(start) / quarter)
}

func OverdueTaskDraft(taskID, contractID, title string, due time.Time, daysOverdue int) NotificationDraft {
	return NotificationDraft{
		Type:     NotificationOverdueTask,
		Title:    "Overdue task: " + title,
		Message:  fmt.Sprintf("Task %q was due on %s and is %d days overdue.", title, due.UTC().Format("2006-01-02"), daysOverdue),
		Priority: PriorityHigh,

		RelatedContractID: contractID,
		RelatedTaskID:     taskID,
	}
}

func MissingReportDraft(contractID, contractLabel string, submitted, required int) NotificationDraft {
	return NotificationDraft{
		Type:  NotificationMissingReport,
		Title: "Missing quarterly report: " + contractLabel,
		Message: fmt.Sprintf("Contract %s has %d of %d required quarterly Section 3 reports on file.",
			contractLabel, submitted, required),
		Priority:          PriorityHigh,
		RelatedContractID: contractID,
	}
}

func BelowBenchmarkDraft(contractID, contractLabel string, actualRate, benchmark float64) NotificationDraft {
	check := CheckBenchmarkCompliance(actualRate, benchmark)
	return NotificationDraft{
		Type:  NotificationBelowBenchmark,
		Title: "Below Section 3 benchmark: " + contractLabel,
		Message: fmt.Sprintf("Section 3 labor hours for contract %s are at %.1f%%, below the required %s%% benchmark (variance %.1f points).",
			contractLabel, actualRate, strconv.FormatFloat(benchmark, 'f', -1, 64), check.Variance),
		Priority:          PriorityHigh,
		RelatedContractID: contractID,
	}
}

// QuarterlyReminderTitle names the reminder task for a quarter.
func QuarterlyReminderTitle(year, quarter int) string {
	return fmt.Sprintf("Q%d %d Section 3 Quarterly Report", quarter, year)
}
