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

package util

import (
	"os"
	"time"

	"github.com/briandowns/spinner"
	"golang.org/x/term"
)

// Spinner is a ~working~ indicator which is only shown on terminals.
type Spinner struct {
	spinner *spinner.Spinner
	enabled bool
}

// NewSpinner returns a stopped spinner writing to file.
func NewSpinner(file *os.File) *Spinner {
	return &Spinner{
		spinner: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(file)),
		enabled: term.IsTerminal(int(file.Fd())),
	}
}

// Start shows the spinner with the given message.
func (s *Spinner) Start(message string) {
	if !s.enabled || s.spinner.Active() {
		return
	}

	s.spinner.Suffix = " " + message
	s.spinner.Start()
}

func (s *Spinner) Stop() {
	if s.enabled && s.spinner.Active() {
		s.spinner.Stop()
	}
}
