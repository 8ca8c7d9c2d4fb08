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

	"github.com/google/uuid"
)

var ErrPromiseConsumed = errors.New("engine: promise already consumed")

// Result is the outcome of a single engine invocation.
type Result struct {
	Output   string // the engine's standard output
	Stderr   string
	ExitCode int

	Err error
}

// Promise is a handle to the result of an invocation which is still
// running. It never blocks, and yields its result exactly once.
type Promise struct {
	id      uuid.UUID
	results <-chan Result
	cancel  func()

	consumed bool
}

// NewPromise returns a Promise which resolves with the first value received
// from results. cancel is called by Abort and may be nil.
func NewPromise(id uuid.UUID, results <-chan Result, cancel func()) *Promise {
	return &Promise{
		id:      id,
		results: results,
		cancel:  cancel,
	}
}

// resolved returns a Promise which is already resolved with result.
func resolved(result Result) *Promise {
	results := make(chan Result, 1)
	results <- result
	return NewPromise(uuid.New(), results, nil)
}

// ID returns the id of the invocation behind the promise.
func (promise *Promise) ID() uuid.UUID {
	return promise.id
}

// Poll checks if the invocation has finished. If it has, the result is
// returned with true and the promise is consumed; polling it again yields
// ErrPromiseConsumed.
func (promise *Promise) Poll() (Result, bool) {
	if promise.consumed {
		return Result{Err: ErrPromiseConsumed}, true
	}

	select {
	case result := <-promise.results:
		promise.consumed = true
		return result, true
	default:
		return Result{}, false
	}
}

// Abort cancels the invocation behind the promise, killing the engine
// process if it is still running.
func (promise *Promise) Abort() {
	if promise.cancel != nil {
		promise.cancel()
	}
}
