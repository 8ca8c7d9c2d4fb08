// Copyright © 2024 Rak Laptudirm <rak@laptudirm.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package engine

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrBusy = errors.New("engine: too many running invocations")

// DefaultWorkers is the number of invocations a Registry allows to run at
// the same time if no limit is given.
const DefaultWorkers = 4

// Registry keeps track of the running invocations so that they can be
// aborted by id. It is bounded, so engines which hang can not pile up
// forever.
type Registry struct {
	limit int

	mu      sync.Mutex
	workers map[uuid.UUID]func()

	wg sync.WaitGroup
}

// NewRegistry returns a Registry allowing at most limit invocations.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultWorkers
	}

	return &Registry{
		limit:   limit,
		workers: make(map[uuid.UUID]func()),
	}
}

// Register adds a running invocation. Every successful Register must be
// paired with a release once the invocation's goroutine exits.
func (registry *Registry) Register(id uuid.UUID, cancel func()) error {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if len(registry.workers) >= registry.limit {
		return ErrBusy
	}

	registry.workers[id] = cancel
	registry.wg.Add(1)
	return nil
}

func (registry *Registry) release(id uuid.UUID) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, found := registry.workers[id]; found {
		delete(registry.workers, id)
		registry.wg.Done()
	}
}

// Abort cancels the invocation with the given id. It reports whether such
// an invocation was running.
func (registry *Registry) Abort(id uuid.UUID) bool {
	registry.mu.Lock()
	cancel, found := registry.workers[id]
	registry.mu.Unlock()

	if found {
		cancel()
	}

	return found
}

// AbortAll cancels every running invocation.
func (registry *Registry) AbortAll() {
	registry.mu.Lock()
	cancels := make([]func(), 0, len(registry.workers))
	for _, cancel := range registry.workers {
		cancels = append(cancels, cancel)
	}
	registry.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}

// Len returns the number of running invocations.
func (registry *Registry) Len() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	return len(registry.workers)
}

// Wait blocks until every registered invocation has exited.
func (registry *Registry) Wait() {
	registry.wg.Wait()
}
