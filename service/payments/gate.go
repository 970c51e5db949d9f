package payments

import (
	"context"
	"fmt"
	"log/slog"
)

// Gate ensures a plan has enough credit for the requested units
type Gate struct {
	ledger Ledger
	logger *slog.Logger
}

// NewGate creates a balance gate
func NewGate(ledger Ledger, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{ledger: ledger, logger: logger}
}

// Ensure returns true when the plan balance covers required units, ordering
// the plan once when it does not.
func (g *Gate) Ensure(ctx context.Context, planDid string, required int) (bool, error) {
	g.logger.Info("checking plan balance", "plan_did", planDid, "required", required)
	balance, err := g.ledger.GetPlanBalance(ctx, planDid)
	if err != nil {
		return false, fmt.Errorf("failed to get balance of plan %v: %w", planDid, err)
	}
	current := 0
	if balance != nil {
		current = balance.Balance
	}
	g.logger.Info("plan balance", "plan_did", planDid, "balance", current)
	if current >= required {
		return true, nil
	}
	g.logger.Warn("insufficient plan balance, ordering plan", "plan_did", planDid, "balance", current, "required", required)
	order, err := g.ledger.OrderPlan(ctx, planDid)
	if err != nil {
		return false, fmt.Errorf("failed to order plan %v: %w", planDid, err)
	}
	if order == nil || !order.Success {
		g.logger.Error("plan order failed", "plan_did", planDid)
		return false, nil
	}
	g.logger.Info("plan ordered", "plan_did", planDid)
	return true, nil
}
