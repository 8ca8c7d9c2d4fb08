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
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrProcessSpawn  = errors.New("engine: unable to start process")
	ErrProcessOutput = errors.New("engine: bad process output")
	ErrDeadline      = errors.New("engine: deadline exceeded")
	ErrAborted       = errors.New("engine: invocation aborted")
)

// DefaultFlag is the flag which precedes the position's fen string in an
// engine's command line.
const DefaultFlag = "--board"

// waitDelay is how long a killed engine's output pipes are waited upon.
const waitDelay = time.Second

// Invoker runs engine executables, one process per move.
type Invoker struct {
	Flag    string        // defaults to DefaultFlag
	Timeout time.Duration // no deadline if zero

	registry *Registry
}

// NewInvoker returns an Invoker which tracks its invocations in registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{
		Flag:     DefaultFlag,
		registry: registry,
	}
}

// Registry returns the registry of running invocations.
func (invoker *Invoker) Registry() *Registry {
	return invoker.registry
}

// Invoke starts the engine at path on the given position and returns a
// promise of its move without waiting for the engine to finish.
func (invoker *Invoker) Invoke(path, position string) *Promise {
	id := uuid.New()

	var ctx context.Context
	var cancel context.CancelFunc
	if invoker.Timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), invoker.Timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	if err := invoker.registry.Register(id, cancel); err != nil {
		cancel()
		return resolved(Result{ExitCode: -1, Err: err})
	}

	results := make(chan Result, 1)
	go func() {
		defer invoker.registry.release(id)
		defer cancel()

		results <- invoker.run(ctx, id, path, position)
	}()

	return NewPromise(id, results, cancel)
}

func (invoker *Invoker) run(ctx context.Context, id uuid.UUID, path, position string) Result {
	flag := invoker.Flag
	if flag == "" {
		flag = DefaultFlag
	}

	logrus.Debugf("\x1b[34m%s\x1b[0m %s %q (%s)", path, flag, position, id)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, flag, position)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	result := Result{
		Output:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: -1,
	}

	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if result.Stderr != "" {
		logrus.Debugf("info: (%s)! %s", id, strings.TrimSpace(result.Stderr))
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		if !utf8.ValidString(result.Output) {
			result.Err = fmt.Errorf("%w: output is not valid utf-8", ErrProcessOutput)
		}

	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		result.Err = fmt.Errorf("%w: no move after %s", ErrDeadline, invoker.Timeout)

	case errors.Is(ctx.Err(), context.Canceled):
		result.Err = ErrAborted

	case errors.As(err, &exitErr):
		result.Err = fmt.Errorf("%w: exit status %d", ErrProcessOutput, result.ExitCode)

	default:
		result.Err = fmt.Errorf("%w: %v", ErrProcessSpawn, err)
	}

	logrus.Debugf("info: (%s)> exit %d: %q", id, result.ExitCode, strings.TrimSpace(result.Output))
	return result
}
