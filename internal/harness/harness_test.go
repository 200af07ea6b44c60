package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		name := strings.TrimSuffix(filepath.Base(file), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(file)
			require.NoError(t, err)
			assert.Equal(t, name, scenario.Name, "scenario name should match file name")

			result, err := RunWithGolden(t, scenario)
			require.NoError(t, err)
			assert.True(t, result.Pass, "scenario failed: %v", result.Errors)
		})
	}
}

func TestRun_SequenceNumbersIncrease(t *testing.T) {
	scenario := &Scenario{
		Name:        "seq",
		Description: "seq",
		Flow: []FlowStep{
			{Invoke: ActionListProducts},
			{Invoke: ActionToggleWishlist, Args: map[string]any{"product_id": "1"}},
		},
		Assertions: []Assertion{{Type: AssertTraceCount, Action: ActionListProducts, Count: 1}},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)
	require.True(t, result.Pass, result.Errors)
	require.Len(t, result.Trace, 4)

	for i, event := range result.Trace {
		assert.Equal(t, int64(i+1), event.Seq)
	}
	assert.Equal(t, EventInvocation, result.Trace[0].Type)
	assert.Equal(t, EventCompletion, result.Trace[1].Type)
	assert.Equal(t, CaseOK, result.Trace[1].OutputCase)
}

func TestRun_UnexpectedCaseFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "bad_size",
		Description: "size not offered",
		Flow: []FlowStep{
			{Invoke: ActionAddToCart, Args: map[string]any{"product_id": "6", "size": "XS", "color": "Indigo"}},
		},
		Assertions: []Assertion{{Type: AssertTraceCount, Action: ActionAddToCart, Count: 1}},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `expected case "ok", got "validation_error"`)
}

func TestRun_ResultMismatchFails(t *testing.T) {
	scenario := &Scenario{
		Name:        "wrong_total",
		Description: "total mismatch",
		Flow: []FlowStep{
			{
				Invoke: ActionAddToCart,
				Args:   map[string]any{"product_id": "1", "size": "M", "color": "White"},
				Expect: &ExpectClause{Case: CaseOK, Result: map[string]any{"cart_total": "36.00"}},
			},
		},
		Assertions: []Assertion{{Type: AssertSessionState, Expect: map[string]any{"cart_count": 1}}},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "result.cart_total")
}

func TestRun_SetupFailureStopsScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "setup_fails",
		Description: "reprice of a missing product",
		Setup: []ActionStep{
			{Action: ActionReprice, Args: map[string]any{"product_id": "99", "price": "10"}},
		},
		Flow:       []FlowStep{{Invoke: ActionListProducts}},
		Assertions: []Assertion{{Type: AssertTraceCount, Action: ActionListProducts, Count: 0}},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "setup[0] reprice")
	assert.Len(t, result.Trace, 2, "flow must not run after a failed setup")
}

func TestRun_CheckoutRecordsOwner(t *testing.T) {
	scenario := &Scenario{
		Name:        "owner",
		Description: "anonymous and owned checkouts",
		Flow: []FlowStep{
			{Invoke: ActionAddToCart, Args: map[string]any{"product_id": "2", "size": "L", "color": "Sand"}},
			{
				Invoke: ActionCheckout,
				Args:   map[string]any{"name": "Grace", "owner_id": "5b0c6f5e-2a8d-4c53-9a36-2f4f4f1a9b10", "email": "grace@example.com"},
				Expect: &ExpectClause{Case: CaseOK, Result: map[string]any{"total": "61.84"}},
			},
		},
		Assertions: []Assertion{{
			Type:   AssertFinalState,
			Table:  "orders",
			Where:  map[string]any{"id": "ORD-000000001"},
			Expect: map[string]any{"user_id": "5b0c6f5e-2a8d-4c53-9a36-2f4f4f1a9b10", "status": "confirmed"},
		}},
	}

	result, err := Run(context.Background(), scenario, Options{})
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}
