package compliance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"section3/internal/bootstrap/logging"
	domain "section3/internal/domain/compliance"
	"section3/internal/errs"
	"section3/internal/ports"
)

type RegisterContractInput struct {
	ClientID           string    `json:"client_id"`
	ContractNumber     string    `json:"contract_number"`
	Title              string    `json:"title"`
	ContractType       string    `json:"contract_type"`
	HUDFundingAmount   *float64  `json:"hud_funding_amount"`
	TotalProjectCost   *float64  `json:"total_project_cost"`
	StartDate          time.Time `json:"start_date"`
	EndDate            time.Time `json:"end_date"`
	Status             string    `json:"status"`
	FundingSourceNames []string  `json:"funding_sources"`
	ActorID            *string   `json:"actor_id"`
}

type RegisterContractResult struct {
	Contract   ports.Contract   `json:"contract"`
	Onboarding OnboardingResult `json:"onboarding"`
}

// RegisterContract stores a new contract with its funding source links and
// onboards it in the same transaction.
func (s *Service) RegisterContract(ctx context.Context, input RegisterContractInput) (RegisterContractResult, error) {
	if err := s.ready(ctx); err != nil {
		return RegisterContractResult{}, err
	}

	contract, err := validateRegistration(input)
	if err != nil {
		return RegisterContractResult{}, err
	}

	var result RegisterContractResult
	if err := s.uow.WithTx(ctx, func(txCtx context.Context) error {
		sources, err := s.lookupFundingSources(txCtx, input.FundingSourceNames)
		if err != nil {
			return err
		}
		sourceIDs := make([]string, 0, len(sources))
		for _, src := range sources {
			sourceIDs = append(sourceIDs, src.ID)
		}

		created, err := s.repo.CreateContract(txCtx, contract, sourceIDs)
		if err != nil {
			return errs.Wrap(err, "create contract")
		}

		onboarding, err := s.ProcessNewContract(txCtx, ProcessNewContractInput{
			ContractID: created.ID,
			ActorID:    input.ActorID,
		})
		if err != nil {
			return err
		}

		refreshed, err := s.repo.GetContract(txCtx, created.ID)
		if err != nil {
			return err
		}
		result = RegisterContractResult{Contract: refreshed, Onboarding: onboarding}
		return nil
	}); err != nil {
		return RegisterContractResult{}, errs.Wrap(err, "register contract")
	}

	logging.Info(logContext(ctx, "usecase.register_contract"), "contract registered",
		slog.String("contract_id", result.Contract.ID),
		slog.String("client_id", result.Contract.ClientID),
		slog.Int("funding_sources", len(result.Contract.FundingSources)),
	)
	return result, nil
}

func validateRegistration(input RegisterContractInput) (ports.Contract, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return ports.Contract{}, errs.Ef(errs.KindInvalidInput, "client id is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return ports.Contract{}, errs.E(errs.KindInvalidInput, domain.ErrContractDatesMissing)
	}
	if input.EndDate.Before(input.StartDate) {
		return ports.Contract{}, errs.Ef(errs.KindInvalidInput, "end date %s is before start date %s",
			input.EndDate.Format("2006-01-02"), input.StartDate.Format("2006-01-02"))
	}
	for name, amount := range map[string]*float64{
		"hud funding amount": input.HUDFundingAmount,
		"total project cost": input.TotalProjectCost,
	} {
		if amount != nil && *amount < 0 {
			return ports.Contract{}, errs.Ef(errs.KindInvalidInput, "%s must not be negative", name)
		}
	}

	status := strings.TrimSpace(input.Status)
	if status == "" {
		status = domain.ContractStatusActive
	}
	return ports.Contract{
		ClientID:         clientID,
		ContractNumber:   strings.TrimSpace(input.ContractNumber),
		Title:            strings.TrimSpace(input.Title),
		ContractType:     domain.NormalizeContractType(input.ContractType),
		HUDFundingAmount: input.HUDFundingAmount,
		TotalProjectCost: input.TotalProjectCost,
		StartDate:        domain.StartOfDay(input.StartDate),
		EndDate:          domain.StartOfDay(input.EndDate),
		Status:           status,
	}, nil
}

// lookupFundingSources loads sources by name in the caller's order. Unknown
// names are a not-found error.
func (s *Service) lookupFundingSources(ctx context.Context, names []string) ([]ports.FundingSource, error) {
	wanted := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	sources, err := s.repo.ListFundingSourcesByName(ctx, wanted)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]ports.FundingSource, len(sources))
	for _, src := range sources {
		byName[src.Name] = src
	}

	ordered := make([]ports.FundingSource, 0, len(wanted))
	for _, name := range wanted {
		src, ok := byName[name]
		if !ok {
			return nil, errs.Ef(errs.KindNotFound, "funding source %q not found", name)
		}
		ordered = append(ordered, src)
	}
	return ordered, nil
}
