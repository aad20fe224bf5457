package compliance

import (
	"strings"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestCalculateApplicability(t *testing.T) {
	rules := DefaultRules()

	testCases := []struct {
		name          string
		input         ApplicabilityInput
		wantApply     bool
		wantSubpart   string
		wantThreshold float64
		wantMissing   bool
		reasonHas     string
	}{
		{
			name: "construction over source threshold",
			input: ApplicabilityInput{
				ContractType:     "construction",
				HUDFundingAmount: ptr(250000),
				FundingSources:   []FundingSourceRule{{Name: "HOME", DefaultThreshold: 200000, Subpart: "subpart_c"}},
			},
			wantApply:     true,
			wantSubpart:   SubpartC,
			wantThreshold: 200000,
			reasonHas:     "Subpart C applies",
		},
		{
			name: "construction at exact threshold applies",
			input: ApplicabilityInput{
				ContractType:     "construction",
				HUDFundingAmount: ptr(200000),
			},
			wantApply:     true,
			wantSubpart:   SubpartC,
			wantThreshold: 200000,
			reasonHas:     "system default",
		},
		{
			name: "construction below threshold",
			input: ApplicabilityInput{
				ContractType:     "construction",
				HUDFundingAmount: ptr(150000),
				TotalProjectCost: ptr(900000),
			},
			wantApply:     false,
			wantSubpart:   SubpartC,
			wantThreshold: 200000,
			reasonHas:     "below",
		},
		{
			name: "non-construction measures total project cost",
			input: ApplicabilityInput{
				ContractType:     "non-construction",
				HUDFundingAmount: ptr(10),
				TotalProjectCost: ptr(120000),
				FundingSources:   []FundingSourceRule{{Name: "Lead Hazard", DefaultThreshold: 100000, Subpart: "D"}},
			},
			wantApply:     true,
			wantSubpart:   SubpartD,
			wantThreshold: 100000,
			reasonHas:     "total project cost",
		},
		{
			name: "lowest matching threshold wins",
			input: ApplicabilityInput{
				ContractType:     "construction",
				HUDFundingAmount: ptr(120000),
				FundingSources: []FundingSourceRule{
					{Name: "CDBG", DefaultThreshold: 200000},
					{Name: "Lead", DefaultThreshold: 100000, Subpart: "subpart_c"},
					{Name: "Other D", DefaultThreshold: 50000, Subpart: "subpart_d"},
				},
			},
			wantApply:     true,
			wantSubpart:   SubpartC,
			wantThreshold: 100000,
			reasonHas:     "(Lead)",
		},
		{
			name: "other type follows funding source classification",
			input: ApplicabilityInput{
				ContractType:     "other",
				TotalProjectCost: ptr(500000),
				FundingSources:   []FundingSourceRule{{Name: "PH Capital", Subpart: "subpart_d"}},
			},
			wantApply:     true,
			wantSubpart:   SubpartD,
			wantThreshold: 200000,
		},
		{
			name: "other type without classification",
			input: ApplicabilityInput{
				ContractType:     "other",
				HUDFundingAmount: ptr(5000000),
			},
			wantApply:     false,
			wantSubpart:   SubpartNotApplicable,
			wantThreshold: 200000,
			reasonHas:     "no Section 3 subpart",
		},
		{
			name: "exempt funding source",
			input: ApplicabilityInput{
				ContractType:     "construction",
				HUDFundingAmount: ptr(5000000),
				FundingSources:   []FundingSourceRule{{Name: "Private", Subpart: "exempt"}},
			},
			wantApply:     false,
			wantSubpart:   SubpartNotApplicable,
			wantThreshold: 200000,
			reasonHas:     "exempt",
		},
		{
			name: "missing amount treated as zero",
			input: ApplicabilityInput{
				ContractType: "construction",
			},
			wantApply:     false,
			wantSubpart:   SubpartC,
			wantThreshold: 200000,
			wantMissing:   true,
			reasonHas:     "was missing",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateApplicability(rules, tc.input)
			if got.IsApplicable != tc.wantApply {
				t.Fatalf("IsApplicable = %v, want %v (reason %q)", got.IsApplicable, tc.wantApply, got.Reason)
			}
			if got.Subpart != tc.wantSubpart {
				t.Fatalf("Subpart = %q, want %q", got.Subpart, tc.wantSubpart)
			}
			if got.Threshold != tc.wantThreshold {
				t.Fatalf("Threshold = %v, want %v", got.Threshold, tc.wantThreshold)
			}
			if got.MissingFinancialData != tc.wantMissing {
				t.Fatalf("MissingFinancialData = %v, want %v", got.MissingFinancialData, tc.wantMissing)
			}
			if tc.reasonHas != "" && !strings.Contains(got.Reason, tc.reasonHas) {
				t.Fatalf("Reason = %q, want substring %q", got.Reason, tc.reasonHas)
			}
			if got.IsApplicable {
				if got.LaborHourBenchmark != 25 || got.TargetedBenchmark != 5 {
					t.Fatalf("benchmarks = %v/%v", got.LaborHourBenchmark, got.TargetedBenchmark)
				}
			} else if got.LaborHourBenchmark != 0 || got.TargetedBenchmark != 0 {
				t.Fatalf("non-applicable benchmarks = %v/%v", got.LaborHourBenchmark, got.TargetedBenchmark)
			}
		})
	}
}

func TestCalculateApplicabilityIsDeterministic(t *testing.T) {
	rules := DefaultRules()
	in := ApplicabilityInput{
		ContractType:     "construction",
		HUDFundingAmount: ptr(300000),
		FundingSources:   []FundingSourceRule{{Name: "HOME", DefaultThreshold: 200000}},
	}

	first := CalculateApplicability(rules, in)
	for i := 0; i < 10; i++ {
		if got := CalculateApplicability(rules, in); got != first {
			t.Fatalf("CalculateApplicability() run %d = %#v, want %#v", i, got, first)
		}
	}
}

func TestNormalizeContractType(t *testing.T) {
	for raw, want := range map[string]string{
		"Construction":          ContractTypeConstruction,
		"non-construction":      ContractTypeNonConstruction,
		"Professional Services": ContractTypeNonConstruction,
		"":                      ContractTypeOther,
		"maintenance":           ContractTypeOther,
	} {
		if got := NormalizeContractType(raw); got != want {
			t.Fatalf("NormalizeContractType(%q) = %q, want %q", raw, got, want)
		}
	}
}
