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

// Package session implements the interactive terminal front-end of a game:
// it picks the sides, feeds in the player's moves and reports on the game
// as the match advances.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chessbot/internal/util"
	"laptudirm.com/x/chessbot/pkg/config"
	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/match"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// ErrQuit is returned by Handle when the user asks to leave.
var ErrQuit = errors.New("session: quit")

var help = heredoc.Doc(`
	Commands:
	  <color> player [name]        let a human play <color>
	  <color> engine [name|path]   let an engine play <color>; with an
	                               argument the engine is confirmed at once
	  <color> path <path>          change the path of <color>'s engine
	  <color> confirm              lock in <color>'s engine path
	  <color> unlock               unlock <color>'s engine path
	  <color> unset                remove <color>'s side
	  <move>                       play a move, like e2e4 or e7e8q
	  resign                       resign as the player to move
	  fen                          print the current position
	  status                       print both sides and the game's phase
	  reset                        start a new game with the same sides
	  quit                         leave
	<color> is either white or black.
`)

// Session is the terminal interface of a match.
type Session struct {
	Out     io.Writer
	Spinner *util.Spinner // optional

	config *config.Config
	match  *match.Orchestrator
}

func New(cfg *config.Config, o *match.Orchestrator, out io.Writer) *Session {
	return &Session{
		Out:    out,
		config: cfg,
		match:  o,
	}
}

// Run advances the match every tick and handles lines of input as they
// arrive, until the input is closed, the context is done, or the user
// quits.
func (s *Session) Run(ctx context.Context, lines <-chan string) error {
	ticker := time.NewTicker(s.config.Tick)
	defer ticker.Stop()
	defer s.stopSpinner()
	defer s.match.Close()

	s.printf("%s", help)
	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}

			err := s.Handle(line)
			if errors.Is(err, ErrQuit) {
				return nil
			}

			if err != nil {
				s.printf("\x1b[31merror\x1b[0m: %v\n", err)
			}

		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances the match once and reports what happened.
func (s *Session) Tick() {
	s.report(s.match.Advance())
}

func (s *Session) report(report match.Report) {
	switch report.Event {
	case match.Idle:
		if !s.match.Pending() {
			s.stopSpinner()
		}

	case match.Thinking:
		if s.Spinner != nil {
			s.Spinner.Start(report.String())
		}

	case match.Moved, match.GameOver:
		s.stopSpinner()
		s.printf("%s\n", report)

	case match.Disqualified:
		s.stopSpinner()
		s.printf("\x1b[31m%s\x1b[0m\n", report)
		s.printf("pick a new side for %s to restart the game\n", report.Color)
	}
}

// Handle executes a single line of input.
func (s *Session) Handle(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "white":
		return s.side(rules.White, fields[1:])
	case "black":
		return s.side(rules.Black, fields[1:])

	case "fen", "position":
		s.printf("%s\n", s.match.Position())
	case "status":
		s.status()
	case "reset":
		s.match.Reset()
		s.printf("new game: %s\n", s.match.Position())
	case "help":
		s.printf("%s", help)
	case "quit", "exit":
		return ErrQuit

	default:
		report, err := s.match.PlayerMove(fields[0])
		if err != nil {
			return err
		}

		s.report(report)
	}

	return nil
}

func (s *Session) side(color rules.Color, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command for %s", color)
	}

	rest := strings.Join(args[1:], " ")

	switch strings.ToLower(args[0]) {
	case "player":
		s.match.SetSide(color, &match.Player{Name: rest})
	case "engine":
		e := engine.New(rest)
		if rest != "" {
			if err := e.SetPath(s.config.EnginePath(rest)); err != nil {
				return err
			}

			if err := e.Configure(); err != nil {
				return err
			}
		}

		s.match.SetSide(color, e)
	case "unset":
		s.match.SetSide(color, nil)

	case "path":
		e, err := s.engine(color)
		if err != nil {
			return err
		}

		if err := e.SetPath(s.config.EnginePath(rest)); err != nil {
			return err
		}
	case "confirm":
		e, err := s.engine(color)
		if err != nil {
			return err
		}

		if err := e.Configure(); err != nil {
			return err
		}
	case "unlock":
		if err := s.match.Unconfigure(color); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown command %q for %s", args[0], color)
	}

	logrus.Debugf("%s is now %s", color, describe(s.match.Side(color)))
	s.printf("%s: %s\n", color, describe(s.match.Side(color)))
	return nil
}

func (s *Session) engine(color rules.Color) (*engine.Engine, error) {
	e, ok := s.match.Side(color).(*engine.Engine)
	if !ok {
		return nil, fmt.Errorf("%s is not played by an engine", color)
	}

	return e, nil
}

func (s *Session) status() {
	s.printf("white: %s\n", describe(s.match.Side(rules.White)))
	s.printf("black: %s\n", describe(s.match.Side(rules.Black)))
	s.printf("game %s, %s to move\n", s.match.Phase(), s.match.SideToMove())
}

func (s *Session) stopSpinner() {
	if s.Spinner != nil {
		s.Spinner.Stop()
	}
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.Out, format, a...)
}

// describe returns a human readable description of a side.
func describe(side match.Side) string {
	switch side := side.(type) {
	case nil:
		return "unset"
	case *engine.Engine:
		if side.Configured() {
			return fmt.Sprintf("engine %s (%s)", side, side.Path())
		}

		return fmt.Sprintf("engine %s (unconfirmed path %q)", side, side.Path())
	default:
		return side.String()
	}
}
