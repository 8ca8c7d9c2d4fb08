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
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath  = errors.New("engine: empty executable path")
	ErrConfigured = errors.New("engine: path is locked in")
)

// Engine is a side whose moves are computed by an external executable.
// The path can be edited until the engine is configured, after which it is
// locked in until Unconfigure is called.
type Engine struct {
	Name string

	path       string
	configured bool
}

// New returns an unconfigured engine with an empty path.
func New(name string) *Engine {
	return &Engine{Name: name}
}

// SetPath changes the engine's executable path.
func (engine *Engine) SetPath(path string) error {
	if engine.configured {
		return ErrConfigured
	}

	engine.path = strings.TrimSpace(path)
	return nil
}

// Configure locks in the engine's path.
func (engine *Engine) Configure() error {
	if engine.path == "" {
		return ErrEmptyPath
	}

	engine.configured = true
	return nil
}

// Unconfigure unlocks the engine's path so that it can be edited again.
func (engine *Engine) Unconfigure() {
	engine.configured = false
}

func (engine *Engine) Path() string {
	return engine.path
}

func (engine *Engine) Configured() bool {
	return engine.configured
}

func (engine *Engine) String() string {
	switch {
	case engine.Name != "":
		return engine.Name
	case engine.path != "":
		return filepath.Base(engine.path)
	default:
		return "engine"
	}
}
