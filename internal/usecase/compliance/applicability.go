package compliance

import (
	"context"

	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
)

type ApplicabilityRequest struct {
	ContractType       string   `json:"contract_type"`
	HUDFundingAmount   *float64 `json:"hud_funding_amount"`
	TotalProjectCost   *float64 `json:"total_project_cost"`
	FundingSourceNames []string `json:"funding_sources"`
}

// EvaluateApplicability runs the calculator against stored funding sources
// without touching any contract.
func (s *Service) EvaluateApplicability(ctx context.Context, req ApplicabilityRequest) (domain.ApplicabilityDecision, error) {
	if err := s.ready(ctx); err != nil {
		return domain.ApplicabilityDecision{}, err
	}

	sources, err := s.lookupFundingSources(ctx, req.FundingSourceNames)
	if err != nil {
		return domain.ApplicabilityDecision{}, errs.Wrap(err, "load funding sources")
	}
	rules := make([]domain.FundingSourceRule, 0, len(sources))
	for _, src := range sources {
		rules = append(rules, domain.FundingSourceRule{
			Name:             src.Name,
			DefaultThreshold: src.DefaultThreshold,
			Subpart:          src.Subpart,
		})
	}

	return domain.CalculateApplicability(s.rules, domain.ApplicabilityInput{
		ContractType:     req.ContractType,
		HUDFundingAmount: req.HUDFundingAmount,
		TotalProjectCost: req.TotalProjectCost,
		FundingSources:   rules,
	}), nil
}
