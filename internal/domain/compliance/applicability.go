package compliance

import (
	"fmt"
	"strings"
)

// FundingSourceRule is the part of a funding source record the calculator reads.
type FundingSourceRule struct {
	Name string
	// DefaultThreshold <= 0 means the source carries no threshold of its own.
	DefaultThreshold float64
	// Subpart is SubpartC, SubpartD, SubpartNotApplicable or empty when unclassified.
	Subpart string
}

type ApplicabilityInput struct {
	ContractType     string
	HUDFundingAmount *float64
	TotalProjectCost *float64
	FundingSources   []FundingSourceRule
}

type ApplicabilityDecision struct {
	IsApplicable         bool    `json:"is_applicable"`
	Subpart              string  `json:"subpart"`
	Threshold            float64 `json:"threshold"`
	Reason               string  `json:"reason"`
	LaborHourBenchmark   float64 `json:"labor_hour_benchmark"`
	TargetedBenchmark    float64 `json:"targeted_benchmark"`
	MissingFinancialData bool    `json:"missing_financial_data"`
}

// CalculateApplicability decides whether Section 3 applies to a contract.
//
// Subpart C work is measured on the HUD funding amount, Subpart D work on the total
// project cost. Missing amounts count as zero and set MissingFinancialData.
func CalculateApplicability(rules Rules, in ApplicabilityInput) ApplicabilityDecision {
	contractType := NormalizeContractType(in.ContractType)

	if exempt, ok := exemptingSource(in.FundingSources); ok {
		return ApplicabilityDecision{
			Subpart:   SubpartNotApplicable,
			Threshold: resolveThreshold(rules, in.FundingSources, "").value,
			Reason:    fmt.Sprintf("Not applicable: funding source %s is exempt from Section 3.", exempt),
		}
	}

	subpart := determineSubpart(contractType, in.FundingSources)
	threshold := resolveThreshold(rules, in.FundingSources, subpart)

	if subpart == SubpartNotApplicable {
		return ApplicabilityDecision{
			Subpart:   SubpartNotApplicable,
			Threshold: threshold.value,
			Reason:    fmt.Sprintf("Not applicable: contract type %s has no Section 3 subpart classification.", contractType),
		}
	}

	measure, label, missing := measuredAmount(subpart, in)
	decision := ApplicabilityDecision{
		Subpart:              subpart,
		Threshold:            threshold.value,
		MissingFinancialData: missing,
	}

	var b strings.Builder
	if measure >= threshold.value {
		decision.IsApplicable = true
		decision.LaborHourBenchmark = rules.LaborHourBenchmark
		decision.TargetedBenchmark = rules.TargetedBenchmark
		fmt.Fprintf(&b, "%s applies: %s of %s meets the %s threshold (%s).",
			SubpartLabel(subpart), label, formatMoney(measure), formatMoney(threshold.value), threshold.source)
	} else {
		fmt.Fprintf(&b, "Not applicable under %s: %s of %s is below the %s threshold (%s).",
			SubpartLabel(subpart), label, formatMoney(measure), formatMoney(threshold.value), threshold.source)
	}
	if missing {
		fmt.Fprintf(&b, " The %s was missing and treated as %s.", label, formatMoney(0))
	}
	decision.Reason = b.String()
	return decision
}

// NormalizeContractType maps free-form contract type input to the known set.
func NormalizeContractType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	switch t {
	case ContractTypeConstruction:
		return ContractTypeConstruction
	case ContractTypeNonConstruction, "professional_services", "service", "services":
		return ContractTypeNonConstruction
	default:
		return ContractTypeOther
	}
}

// SubpartLabel renders a subpart code for people.
func SubpartLabel(subpart string) string {
	switch subpart {
	case SubpartC:
		return "Subpart C"
	case SubpartD:
		return "Subpart D"
	default:
		return "Not applicable"
	}
}

// NormalizeSubpart accepts "C", "subpart-c", "Subpart C" and friends.
func NormalizeSubpart(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	switch s {
	case "c", SubpartC:
		return SubpartC
	case "d", SubpartD:
		return SubpartD
	case SubpartNotApplicable, "n/a", "na", "exempt":
		return SubpartNotApplicable
	default:
		return ""
	}
}

func exemptingSource(sources []FundingSourceRule) (string, bool) {
	for _, src := range sources {
		if NormalizeSubpart(src.Subpart) == SubpartNotApplicable {
			return src.Name, true
		}
	}
	return "", false
}

func determineSubpart(contractType string, sources []FundingSourceRule) string {
	switch contractType {
	case ContractTypeConstruction:
		return SubpartC
	case ContractTypeNonConstruction:
		return SubpartD
	}
	for _, src := range sources {
		if s := NormalizeSubpart(src.Subpart); s == SubpartC || s == SubpartD {
			return s
		}
	}
	return SubpartNotApplicable
}

type thresholdChoice struct {
	value  float64
	source string
}

// resolveThreshold picks the lowest positive threshold among sources that match the
// subpart or are unclassified, so a contract is never let off by the laxest source.
func resolveThreshold(rules Rules, sources []FundingSourceRule, subpart string) thresholdChoice {
	choice := thresholdChoice{}
	found := false
	for _, src := range sources {
		if src.DefaultThreshold <= 0 {
			continue
		}
		if classified := NormalizeSubpart(src.Subpart); subpart != "" && classified != "" && classified != subpart {
			continue
		}
		if !found || src.DefaultThreshold < choice.value {
			choice = thresholdChoice{value: src.DefaultThreshold, source: src.Name}
			found = true
		}
	}
	if !found {
		return thresholdChoice{value: rules.FallbackThreshold, source: "system default"}
	}
	return choice
}

func measuredAmount(subpart string, in ApplicabilityInput) (float64, string, bool) {
	if subpart == SubpartD {
		v, missing := amountOrZero(in.TotalProjectCost)
		return v, "total project cost", missing
	}
	v, missing := amountOrZero(in.HUDFundingAmount)
	return v, "HUD funding amount", missing
}

func amountOrZero(v *float64) (float64, bool) {
	if v == nil {
		return 0, true
	}
	return *v, false
}

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
