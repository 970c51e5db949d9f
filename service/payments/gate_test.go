package payments_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/storyflow/service/payments"
	"github.com/viant/storyflow/service/payments/memory"
)

type brokenLedger struct{}

func (brokenLedger) GetPlanBalance(ctx context.Context, planDid string) (*payments.Balance, error) {
	return nil, errors.New("ledger down")
}

func (brokenLedger) OrderPlan(ctx context.Context, planDid string) (*payments.OrderResult, error) {
	return nil, errors.New("ledger down")
}

func TestGate_Ensure(t *testing.T) {
	var testCases = []struct {
		description  string
		balance      int
		required     int
		refuseOrders bool
		expect       bool
		expectOrders int
	}{
		{description: "balance covers required", balance: 3, required: 3, expect: true},
		{description: "top up succeeds", balance: 0, required: 1, expect: true, expectOrders: 1},
		{description: "top up refused", balance: 1, required: 2, refuseOrders: true, expectOrders: 1},
		{description: "zero required", balance: 0, required: 0, expect: true},
	}
	for _, tc := range testCases {
		ledger := memory.New(memory.WithCredits(10))
		ledger.SetBalance("plan", tc.balance)
		ledger.RefuseOrders(tc.refuseOrders)
		gate := payments.NewGate(ledger, nil)
		ok, err := gate.Ensure(context.Background(), "plan", tc.required)
		assert.NoError(t, err, tc.description)
		assert.Equal(t, tc.expect, ok, tc.description)
		assert.Equal(t, tc.expectOrders, ledger.Orders("plan"), tc.description)
	}
}

func TestGate_LedgerError(t *testing.T) {
	gate := payments.NewGate(brokenLedger{}, nil)
	ok, err := gate.Ensure(context.Background(), "plan", 1)
	assert.Error(t, err)
	assert.False(t, ok)
}
