// SPDX-License-Identifier: Apache-2.0

package llm

import (
	"context"
	"time"

	"github.com/dlanger/typecast/pkg/resilience"
)

// ResilientProvider decorates a Provider with retry and a per-call timeout.
// Bounded-time behavior lives here, outside the workflow engine: the engine
// only ever sees the final error of the last attempt.
type ResilientProvider struct {
	next    Provider
	retry   resilience.RetryConfig
	timeout time.Duration
}

// Resilient wraps provider with the given retry policy and per-call timeout.
// A zero timeout disables the deadline.
func Resilient(provider Provider, retry resilience.RetryConfig, timeout time.Duration) *ResilientProvider {
	return &ResilientProvider{next: provider, retry: retry, timeout: timeout}
}

// Chat calls the wrapped provider, retrying recoverable failures.
func (p *ResilientProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp *ChatResponse
	err := p.retry.Do(ctx, func() error {
		callCtx := ctx
		if p.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, p.timeout)
			defer cancel()
		}
		var callErr error
		resp, callErr = p.next.Chat(callCtx, req)
		return callErr
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
