// Package dispatch fans a query out to the active providers in parallel
// and collects whatever arrives before the deadlines expire.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	fatherrors "github.com/fathom-search/fathom/internal/errors"
	"github.com/fathom-search/fathom/internal/provider"
)

// Status classifies how one provider call ended.
type Status string

const (
	StatusOK      Status = "ok"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// ProviderStatus is the per-provider outcome of one dispatch.
type ProviderStatus struct {
	Status    Status `json:"status"`
	Results   int    `json:"results"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Options bounds one dispatch.
type Options struct {
	// ProviderTimeout bounds each individual provider call.
	ProviderTimeout time.Duration

	// OverallDeadline bounds the whole dispatch; calls still pending when
	// it expires are cancelled and reported as timeouts.
	OverallDeadline time.Duration
}

// Dispatch queries every provider concurrently and merges their results.
// Provider failures degrade the result set instead of failing the
// dispatch; only the case where every provider fails returns an error.
// Results keep provider registration order, so equal inputs produce
// equal output order.
func Dispatch(ctx context.Context, providers []provider.Provider, q provider.Query, opts Options) ([]provider.RawResult, map[string]ProviderStatus, error) {
	if len(providers) == 0 {
		return nil, nil, fatherrors.AllProvidersUnavailable(errors.New("no providers configured"))
	}

	if opts.OverallDeadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.OverallDeadline)
		defer cancel()
	}

	perProvider := make([][]provider.RawResult, len(providers))
	statuses := make([]ProviderStatus, len(providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range providers {
		i, p := i, p
		g.Go(func() error {
			callCtx := gctx
			if opts.ProviderTimeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, opts.ProviderTimeout)
				defer cancel()
			}

			start := time.Now()
			results, err := p.Search(callCtx, q)
			elapsed := time.Since(start).Milliseconds()

			statuses[i] = ProviderStatus{
				Status:    StatusOK,
				Results:   len(results),
				ElapsedMs: elapsed,
			}
			if err != nil {
				statuses[i].Status = statusFor(err)
				statuses[i].Results = 0
				statuses[i].Error = err.Error()
				slog.Warn("provider failed",
					slog.String("provider", p.ID()),
					slog.String("status", string(statuses[i].Status)),
					slog.Int64("elapsed_ms", elapsed),
					slog.String("error", err.Error()))
				// Degrade, do not cancel the siblings.
				return nil
			}

			perProvider[i] = results
			slog.Debug("provider responded",
				slog.String("provider", p.ID()),
				slog.Int("results", len(results)),
				slog.Int64("elapsed_ms", elapsed))
			return nil
		})
	}
	g.Wait()

	var merged []provider.RawResult
	statusByID := make(map[string]ProviderStatus, len(providers))
	failures := 0
	var lastErr error
	for i, p := range providers {
		merged = append(merged, perProvider[i]...)
		statusByID[p.ID()] = statuses[i]
		if statuses[i].Status != StatusOK {
			failures++
			lastErr = fmt.Errorf("provider %s: %s", p.ID(), statuses[i].Error)
		}
	}

	if failures == len(providers) {
		return nil, statusByID, fatherrors.AllProvidersUnavailable(lastErr)
	}
	return merged, statusByID, nil
}

// statusFor maps a provider error to its reported status.
func statusFor(err error) Status {
	if errors.Is(err, context.DeadlineExceeded) {
		return StatusTimeout
	}
	return StatusError
}

// Degraded returns the sorted IDs of providers that did not complete.
func Degraded(statuses map[string]ProviderStatus) []string {
	var ids []string
	for id, st := range statuses {
		if st.Status != StatusOK {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
