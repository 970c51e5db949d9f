// Package payments checks plan credit before work is delegated and tops the
// plan up once when the balance falls short.
package payments

import "context"

// Balance represents plan credit
type Balance struct {
	PlanDid string `json:"plan_did"`
	Balance int    `json:"balance"`
}

// OrderResult represents plan order outcome
type OrderResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Ledger represents plan balance operations
type Ledger interface {
	GetPlanBalance(ctx context.Context, planDid string) (*Balance, error)

	// OrderPlan purchases plan credit
	OrderPlan(ctx context.Context, planDid string) (*OrderResult, error)
}
