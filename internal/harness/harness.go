package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/verixa/internal/app"
	"github.com/roach88/verixa/internal/config"
	"github.com/roach88/verixa/internal/session"
	"github.com/roach88/verixa/internal/testutil"
)

// Options configures a harness run.
type Options struct {
	// Logger receives application logs. Defaults to discard.
	Logger *slog.Logger
}

// Run executes a scenario against a freshly booted application and returns
// the result. Every run gets its own in-memory engine and session, starts
// at testutil.Epoch and issues order ids ORD-000000001, ORD-000000002, ...
//
// The returned error is reserved for infrastructure failures (the engine
// could not boot). Scenario failures are reported in Result.Errors.
func Run(ctx context.Context, scenario *Scenario, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	cfg := config.Default()
	cfg.DatabasePath = ":memory:"

	clock := testutil.NewDeterministicClock()
	a, err := app.Boot(ctx, cfg, logger,
		app.WithIDGenerator(testutil.NewSequenceIDGenerator()),
		app.WithClock(clock.Now),
		app.WithSessionStorage(session.NewMemoryStorage()),
	)
	if err != nil {
		return nil, fmt.Errorf("boot scenario %q: %w", scenario.Name, err)
	}
	defer a.Close()

	h := &runner{app: a, result: NewResult()}

	for i, step := range scenario.Setup {
		outcome, res := h.execute(ctx, step.Action, step.Args)
		if outcome != CaseOK {
			h.result.AddError(fmt.Sprintf("setup[%d] %s: completed with %s %v", i, step.Action, outcome, res))
			return h.result, nil
		}
	}

	for i, step := range scenario.Flow {
		outcome, res := h.execute(ctx, step.Invoke, step.Args)
		expect := step.Expect
		if expect == nil {
			expect = &ExpectClause{Case: CaseOK}
		}
		if outcome != expect.Case {
			h.result.AddError(fmt.Sprintf("flow[%d] %s: expected case %q, got %q %v",
				i, step.Invoke, expect.Case, outcome, res))
			continue
		}
		for key, want := range expect.Result {
			got, ok := res[key]
			if !ok {
				h.result.AddError(fmt.Sprintf("flow[%d] %s: result has no field %q", i, step.Invoke, key))
				continue
			}
			if !valuesEqual(want, got) {
				h.result.AddError(fmt.Sprintf("flow[%d] %s: result.%s expected %v, got %v",
					i, step.Invoke, key, want, got))
			}
		}
	}

	actx := &AssertionContext{Ctx: ctx, Engine: a.Engine, Session: a.Session}
	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, actx) {
		h.result.AddError(msg)
	}

	return h.result, nil
}

type runner struct {
	app    *app.App
	result *Result
	seq    int64
}

func (h *runner) next() int64 {
	h.seq++
	return h.seq
}

// execute records the invocation, runs the action and records its
// completion.
func (h *runner) execute(ctx context.Context, action string, args map[string]any) (string, map[string]any) {
	h.result.AddInvocationTrace(action, args, h.next())

	fn, ok := actions[action]
	if !ok {
		h.result.AddCompletionTrace(action, CaseError, nil, h.next())
		return CaseError, nil
	}

	res, err := fn(ctx, h.app, args)
	outcome := outputCase(err)
	if err != nil {
		res = errorResult(err)
		h.app.Logger.Debug("scenario step failed", "action", action, "case", outcome, "error", err)
	}
	h.result.AddCompletionTrace(action, outcome, res, h.next())
	return outcome, res
}
