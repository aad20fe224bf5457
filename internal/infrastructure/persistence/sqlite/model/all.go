package model

// All lists every table the schema migration manages.
func All() []any {
	return []any{
		&FundingSource{},
		&Contract{},
		&ContractFundingSource{},
		&Task{},
		&Benchmark{},
		&Worker{},
		&LaborHours{},
		&ContractLaborSummary{},
		&Notification{},
		&AuditLog{},
		&Profile{},
		&ComplianceForm{},
		&KVEntry{},
		&SchemaMeta{},
	}
}
