package repository

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"section3/internal/errs"
	"section3/internal/infrastructure/persistence/sqlite/model"
	"section3/internal/ports"
)

func (r *ComplianceRepository) CreateNotifications(ctx context.Context, notifications []ports.Notification) ([]ports.Notification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return []ports.Notification{}, nil
	}

	now := r.now()
	rows := make([]model.Notification, 0, len(notifications))
	for _, notification := range notifications {
		id := strings.TrimSpace(notification.ID)
		if id == "" {
			id = newID()
		}
		createdAt := notification.CreatedAt.UTC()
		if notification.CreatedAt.IsZero() {
			createdAt = now
		}
		rows = append(rows, model.Notification{
			ID:                id,
			UserID:            notification.UserID,
			NotificationType:  notification.Type,
			Title:             notification.Title,
			Message:           notification.Message,
			Priority:          notification.Priority,
			RelatedContractID: notification.RelatedContractID,
			RelatedTaskID:     notification.RelatedTaskID,
			IsRead:            notification.IsRead,
			CreatedAt:         createdAt,
		})
	}
	if err := db.Create(&rows).Error; err != nil {
		return nil, errs.Store(err, "insert notifications")
	}

	items := make([]ports.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

func (r *ComplianceRepository) ListNotifications(ctx context.Context, filter ports.NotificationFilter) ([]ports.Notification, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Notification{})
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if notificationType := strings.TrimSpace(filter.Type); notificationType != "" {
		query = query.Where("notification_type = ?", notificationType)
	}
	if contractID := strings.TrimSpace(filter.RelatedContractID); contractID != "" {
		query = query.Where("related_contract_id = ?", contractID)
	}

	var rows []model.Notification
	if err := query.Order("created_at asc, id asc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query notifications")
	}

	items := make([]ports.Notification, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapNotification(row))
	}
	return items, nil
}

func (r *ComplianceRepository) AppendAuditLog(ctx context.Context, entry ports.AuditLogEntry) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	createdAt := entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		createdAt = r.now()
	}
	row := model.AuditLog{
		ID:          newID(),
		UserID:      entry.UserID,
		ContractID:  entry.ContractID,
		ActionType:  entry.ActionType,
		Description: entry.Description,
		Metadata:    datatypes.JSONMap(entry.Metadata),
		CreatedAt:   createdAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return errs.Store(err, "insert audit log")
	}
	return nil
}

func (r *ComplianceRepository) ListAuditLogs(ctx context.Context, contractID string) ([]ports.AuditLogEntry, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var rows []model.AuditLog
	if err := db.Where("contract_id = ?", contractID).
		Order("created_at asc, id asc").
		Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query audit logs")
	}

	items := make([]ports.AuditLogEntry, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.AuditLogEntry{
			ID:          row.ID,
			UserID:      row.UserID,
			ContractID:  row.ContractID,
			ActionType:  row.ActionType,
			Description: row.Description,
			Metadata:    map[string]any(row.Metadata),
			CreatedAt:   row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

// CreateProfile inserts or refreshes the profile row for UserID.
func (r *ComplianceRepository) CreateProfile(ctx context.Context, profile ports.Profile) error {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return err
	}

	row := model.Profile{
		UserID:    strings.TrimSpace(profile.UserID),
		ClientID:  profile.ClientID,
		FullName:  profile.FullName,
		Email:     profile.Email,
		Role:      profile.Role,
		CreatedAt: r.now(),
	}
	if row.UserID == "" {
		return errs.Ef(errs.KindInvalidInput, "profile user id is required")
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"client_id", "full_name", "email", "role"}),
	}).Create(&row).Error; err != nil {
		return errs.Store(err, "upsert profile")
	}
	return nil
}

func (r *ComplianceRepository) ListProfilesForClient(ctx context.Context, clientID string, roles []string) ([]ports.Profile, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Profile{}).Where("client_id = ?", clientID)
	if roles = sortedUnique(roles); len(roles) > 0 {
		query = query.Where("role IN ?", roles)
	}

	var rows []model.Profile
	if err := query.Order("user_id asc").Find(&rows).Error; err != nil {
		return nil, errs.Store(err, "query profiles")
	}

	items := make([]ports.Profile, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.Profile{
			UserID:   row.UserID,
			ClientID: row.ClientID,
			FullName: row.FullName,
			Email:    row.Email,
			Role:     row.Role,
		})
	}
	return items, nil
}

func (r *ComplianceRepository) CreateComplianceForm(ctx context.Context, form ports.ComplianceForm) (ports.ComplianceForm, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.ComplianceForm{}, err
	}

	row := model.ComplianceForm{
		ID:          strings.TrimSpace(form.ID),
		ContractID:  form.ContractID,
		FormType:    form.FormType,
		PeriodStart: form.PeriodStart.UTC(),
		PeriodEnd:   form.PeriodEnd.UTC(),
		CreatedAt:   r.now(),
	}
	if row.ID == "" {
		row.ID = newID()
	}
	if form.SubmittedAt != nil {
		submittedAt := form.SubmittedAt.UTC()
		row.SubmittedAt = &submittedAt
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.ComplianceForm{}, errs.Store(err, "insert compliance form")
	}

	form.ID = row.ID
	return form, nil
}

// CountComplianceForms counts forms of formType on record for the contract,
// submitted or not.
func (r *ComplianceRepository) CountComplianceForms(ctx context.Context, contractID string, formType string) (int64, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int64
	if err := db.Model(&model.ComplianceForm{}).
		Where("contract_id = ? AND form_type = ?", contractID, formType).
		Count(&count).Error; err != nil {
		return 0, errs.Store(err, "count compliance forms")
	}
	return count, nil
}

func mapNotification(row model.Notification) ports.Notification {
	return ports.Notification{
		ID:                row.ID,
		UserID:            row.UserID,
		Type:              row.NotificationType,
		Title:             row.Title,
		Message:           row.Message,
		Priority:          row.Priority,
		RelatedContractID: row.RelatedContractID,
		RelatedTaskID:     row.RelatedTaskID,
		IsRead:            row.IsRead,
		CreatedAt:         row.CreatedAt.UTC(),
	}
}
