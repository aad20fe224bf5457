package compliance

import "errors"

var (
	ErrInvalidRules         = errors.New("invalid compliance rules")
	ErrInvalidPeriod        = errors.New("invalid labor summary period")
	ErrNegativeHours        = errors.New("hours worked must not be negative")
	ErrContractDatesMissing = errors.New("contract start and end dates are required")
	ErrInvalidTaskStatus    = errors.New("invalid task status")
)
