// Package memory provides an in-memory plan ledger.
package memory

import (
	"context"
	"sync"

	"github.com/viant/storyflow/service/payments"
)

// Ledger keeps plan balances in memory
type Ledger struct {
	mu       sync.Mutex
	balances map[string]int
	orders   map[string]int
	credits  int
	refuse   bool
}

// Option customises ledger
type Option func(l *Ledger)

// WithCredits sets credits granted per successful order
func WithCredits(credits int) Option {
	return func(l *Ledger) {
		l.credits = credits
	}
}

// WithBalance sets initial plan balance
func WithBalance(planDid string, balance int) Option {
	return func(l *Ledger) {
		l.balances[planDid] = balance
	}
}

// New creates a ledger
func New(options ...Option) *Ledger {
	l := &Ledger{
		balances: make(map[string]int),
		orders:   make(map[string]int),
		credits:  100,
	}
	for _, opt := range options {
		opt(l)
	}
	return l
}

// GetPlanBalance returns plan balance
func (l *Ledger) GetPlanBalance(_ context.Context, planDid string) (*payments.Balance, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &payments.Balance{PlanDid: planDid, Balance: l.balances[planDid]}, nil
}

// OrderPlan adds credits unless orders are refused
func (l *Ledger) OrderPlan(_ context.Context, planDid string) (*payments.OrderResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.orders[planDid]++
	if l.refuse {
		return &payments.OrderResult{Success: false, Message: "order refused"}, nil
	}
	l.balances[planDid] += l.credits
	return &payments.OrderResult{Success: true}, nil
}

// Consume deducts units from plan balance
func (l *Ledger) Consume(planDid string, units int) {
	l.mu.Lock()
	l.balances[planDid] -= units
	l.mu.Unlock()
}

// SetBalance sets plan balance
func (l *Ledger) SetBalance(planDid string, balance int) {
	l.mu.Lock()
	l.balances[planDid] = balance
	l.mu.Unlock()
}

// RefuseOrders toggles order refusal
func (l *Ledger) RefuseOrders(refuse bool) {
	l.mu.Lock()
	l.refuse = refuse
	l.mu.Unlock()
}

// Orders returns number of orders placed for plan
func (l *Ledger) Orders(planDid string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.orders[planDid]
}
