// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/dlanger/typecast/pkg/llm"
)

// ScriptedProvider returns queued responses in order and captures every
// request, which suits multi-step workflow tests where each agent call
// should see a distinct canned reply.
type ScriptedProvider struct {
	mu           sync.Mutex
	responses    []ScriptedResponse
	currentIndex int
	requests     []llm.ChatRequest
	defaultError error
}

// ScriptedResponse defines one queued reply.
type ScriptedResponse struct {
	Content string
	Error   error
	Usage   llm.Usage
}

// NewScriptedProvider creates an empty scripted provider.
func NewScriptedProvider() *ScriptedProvider {
	return &ScriptedProvider{}
}

// AddResponse queues a content reply.
func (p *ScriptedProvider) AddResponse(content string) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Content: content})
	return p
}

// AddErrorResponse queues an error reply.
func (p *ScriptedProvider) AddErrorResponse(err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, ScriptedResponse{Error: err})
	return p
}

// WithDefaultError sets the error returned after the queue runs out. The
// default is a plain exhaustion error.
func (p *ScriptedProvider) WithDefaultError(err error) *ScriptedProvider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.defaultError = err
	return p
}

// Chat returns the next queued response.
func (p *ScriptedProvider) Chat(_ context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.requests = append(p.requests, req)

	if p.currentIndex >= len(p.responses) {
		if p.defaultError != nil {
			return nil, p.defaultError
		}
		return nil, fmt.Errorf("scripted provider exhausted after %d responses", len(p.responses))
	}

	resp := p.responses[p.currentIndex]
	p.currentIndex++

	if resp.Error != nil {
		return nil, resp.Error
	}
	return &llm.ChatResponse{Content: resp.Content, Usage: resp.Usage}, nil
}

// Requests returns a copy of all captured requests.
func (p *ScriptedProvider) Requests() []llm.ChatRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.ChatRequest, len(p.requests))
	copy(out, p.requests)
	return out
}

// RequestCount returns the number of captured requests.
func (p *ScriptedProvider) RequestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Reset clears the queue position and captured requests.
func (p *ScriptedProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentIndex = 0
	p.requests = nil
}
