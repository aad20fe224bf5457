package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

type ComplianceRepository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ ports.ComplianceRepository = (*ComplianceRepository)(nil)

func NewComplianceRepository(db *gorm.DB) *ComplianceRepository {
	return &ComplianceRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (r *ComplianceRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func newID() string {
	return uuid.NewString()
}

func (r *ComplianceRepository) GetContract(ctx context.Context, contractID string) (ports.Contract, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Contract{}, err
	}

	contractID = strings.TrimSpace(contractID)
	if contractID == "" {
		return ports.Contract{}, errs.Ef(errs.KindInvalidInput, "contract id is required")
	}

	var row model.Contract
	if err := db.Where("id = ?", contractID).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Contract{}, errs.Wrapf(ports.ErrContractNotFound, "contract %s", contractID)
		}
		return ports.Contract{}, errs.Store(err, "query contract")
	}

	sources, err := loadFundingSources(db, []string{row.ID})
	if err != nil {
		return ports.Contract{}, err
	}

	contract := mapContract(row)
	contract.FundingSources = sources[row.ID]
	return contract, nil
}

func (r *ComplianceRepository) ListContracts(ctx context.Context, filter ports.ContractFilter) ([]ports.Contract, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Contract{})
	if filter.Section3Applicable != nil {
		query = query.Where("section3_applicable = ?", *filter.Section3Applicable)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var rows []model.Contract
	if err := query.Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query contracts")
	}
	if len(rows) == 0 {
		return []ports.Contract{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	sources, err := loadFundingSources(db, ids)
	if err != nil {
		return nil, err
	}

	items := make([]ports.Contract, 0, len(rows))
	for _, row := range rows {
		contract := mapContract(row)
		contract.FundingSources = sources[row.ID]
		items = append(items, contract)
	}
	return items, nil
}

func (r *ComplianceRepository) CreateContract(ctx context.Context, contract ports.Contract, fundingSourceIDs []string) (ports.Contract, error) {
	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return ports.Contract{}, err
		}

		now := r.now()
		row := model.Contract{
			ID:               strings.TrimSpace(contract.ID),
			ClientID:         contract.ClientID,
			ContractNumber:   contract.ContractNumber,
			Title:            contract.Title,
			ContractType:     contract.ContractType,
			HUDFundingAmount: contract.HUDFundingAmount,
			TotalProjectCost: contract.TotalProjectCost,
			StartDate:        contract.StartDate.UTC(),
			EndDate:          contract.EndDate.UTC(),
			Status:           contract.Status,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if row.ID == "" {
			row.ID = newID()
		}
		if err := db.Create(&row).Error; err != nil {
			return ports.Contract{}, errs.Store(err, "insert contract")
		}

		if len(fundingSourceIDs) > 0 {
			links := make([]model.ContractFundingSource, 0, len(fundingSourceIDs))
			for i, id := range fundingSourceIDs {
				links = append(links, model.ContractFundingSource{
					ContractID:      row.ID,
					FundingSourceID: id,
					Position:        i,
				})
			}
			if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error; err != nil {
				return ports.Contract{}, errs.Store(err, "insert contract funding sources")
			}
		}

		sources, err := loadFundingSources(db, []string{row.ID})
		if err != nil {
			return ports.Contract{}, err
		}
		created := mapContract(row)
		created.FundingSources = sources[row.ID]
		return created, nil
	}

	var created ports.Contract
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		row, err := r.CreateContract(txCtx, contract, fundingSourceIDs)
		if err != nil {
			return err
		}
		created = row
		return nil
	}); err != nil {
		return ports.Contract{}, err
	}
	return created, nil
}

func (r *ComplianceRepository) UpdateContractApplicability(ctx context.Context, contractID string, applicability ports.ContractApplicability) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	calculatedAt := applicability.CalculatedAt.UTC()
	result := db.Model(&model.Contract{}).
		Where("id = ?", contractID).
		Updates(map[string]any{
			"section3_applicable":         applicability.Section3Applicable,
			"applicability_subpart":       applicability.Subpart,
			"applicability_threshold":     applicability.Threshold,
			"labor_hour_benchmark":        applicability.LaborHourBenchmark,
			"targeted_section3_benchmark": applicability.TargetedBenchmark,
			"applicability_reason":        applicability.Reason,
			"applicability_calculated_at": calculatedAt,
			"updated_at":                  r.now(),
		})
	if result.Error != nil {
		return errs.Store(result.Error, "update contract applicability")
	}
	if result.RowsAffected == 0 {
		return errs.Wrapf(ports.ErrContractNotFound, "contract %s", contractID)
	}
	return nil
}

func (r *ComplianceRepository) ListFundingSourcesByName(ctx context.Context, names []string) ([]ports.FundingSource, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []ports.FundingSource{}, nil
	}

	var rows []model.FundingSource
	if err := db.Where("name IN ?", names).Order("name asc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query funding sources")
	}

	items := make([]ports.FundingSource, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapFundingSource(row))
	}
	return items, nil
}

// UpsertFundingSources matches on name; an existing row keeps its id.
func (r *ComplianceRepository) UpsertFundingSources(ctx context.Context, sources []ports.FundingSource) (int, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(sources) == 0 {
		return 0, nil
	}

	now := r.now()
	rows := make([]model.FundingSource, 0, len(sources))
	for _, source := range sources {
		id := strings.TrimSpace(source.ID)
		if id == "" {
			id = newID()
		}
		rows = append(rows, model.FundingSource{
			ID:               id,
			Name:             strings.TrimSpace(source.Name),
			SourceType:       source.Type,
			DefaultThreshold: source.DefaultThreshold,
			Subpart:          source.Subpart,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"source_type", "default_threshold", "subpart", "updated_at"}),
	}).Create(&rows)
	if result.Error != nil {
		return 0, errs.Store(result.Error, "upsert funding sources")
	}
	return int(result.RowsAffected), nil
}

func loadFundingSources(db *gorm.DB, contractIDs []string) (map[string][]ports.FundingSource, error) {
	out := make(map[string][]ports.FundingSource, len(contractIDs))
	if len(contractIDs) == 0 {
		return out, nil
	}

	var links []model.ContractFundingSource
	if err := db.Where("contract_id IN ?", contractIDs).
		Order("contract_id asc, position asc").
		Find(&links).Error; err != nil {
		return nil, errs.Store(err, "query contract funding sources")
	}
	if len(links) == 0 {
		return out, nil
	}

	sourceIDs := make([]string, 0, len(links))
	for _, link := range links {
		sourceIDs = append(sourceIDs, link.FundingSourceID)
	}
	var rows []model.FundingSource
	if err := db.Where("id IN ?", sourceIDs).Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query funding sources by id")
	}
	byID := make(map[string]model.FundingSource, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	for _, link := range links {
		row, ok := byID[link.FundingSourceID]
		if !ok {
			continue
		}
		out[link.ContractID] = append(out[link.ContractID], mapFundingSource(row))
	}
	return out, nil
}

func mapContract(row model.Contract) ports.Contract {
	contract := ports.Contract{
		ID:               row.ID,
		ClientID:         row.ClientID,
		ContractNumber:   row.ContractNumber,
		Title:            row.Title,
		ContractType:     row.ContractType,
		HUDFundingAmount: row.HUDFundingAmount,
		TotalProjectCost: row.TotalProjectCost,
		StartDate:        row.StartDate.UTC(),
		EndDate:          row.EndDate.UTC(),
		Status:           row.Status,
		FundingSources:   []ports.FundingSource{},
		CreatedAt:        row.CreatedAt.UTC(),
		UpdatedAt:        row.UpdatedAt.UTC(),
	}
	if row.Section3Applicable != nil {
		applicability := &ports.ContractApplicability{
			Section3Applicable: *row.Section3Applicable,
			Subpart:            derefString(row.ApplicabilitySubpart),
			Threshold:          derefFloat(row.ApplicabilityThreshold),
			LaborHourBenchmark: derefFloat(row.LaborHourBenchmark),
			TargetedBenchmark:  derefFloat(row.TargetedSection3Benchmark),
			Reason:             derefString(row.ApplicabilityReason),
		}
		if row.ApplicabilityCalculatedAt != nil {
			applicability.CalculatedAt = row.ApplicabilityCalculatedAt.UTC()
		}
		contract.Applicability = applicability
	}
	return contract
}

func mapFundingSource(row model.FundingSource) ports.FundingSource {
	return ports.FundingSource{
		ID:               row.ID,
		Name:             row.Name,
		Type:             row.SourceType,
		DefaultThreshold: row.DefaultThreshold,
		Subpart:          row.Subpart,
	}
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefFloat(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
