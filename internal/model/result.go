package model

// OperationDetails reports the outcome of the per-vehicle save loop plus the
// identifiers involved in a bulk mutation.
type OperationDetails struct {
	OldLocalID  string `json:"old_local_id,omitempty"`
	NewLocalID  string `json:"new_local_id"`
	CarsUpdated int    `json:"cars_updated"`
	CarsFailed  int    `json:"cars_failed"`
	TotalCars   int    `json:"total_cars"`

	// Clone-only: identity of the account the data was written to
	TargetEmail     string `json:"target_email,omitempty"`
	TargetAccountID string `json:"target_account_id,omitempty"`
}

// OperationResult is the sole output contract of a bulk mutation. Vehicle
// failures are counted in Details, never swallowed; Success reflects only
// the fatal steps (auth, account fetch, account save).
type OperationResult struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Details *OperationDetails `json:"details,omitempty"`
}
