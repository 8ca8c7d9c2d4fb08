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

// Package match drives a game between two sides, asking engines for their
// moves without ever blocking the caller's loop.
package match

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/move"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// Rules is a game which knows which moves are legal.
type Rules interface {
	Position() string
	SideToMove() rules.Color
	Apply(move.Move) (rules.Outcome, error)
}

// Invoker starts an engine on a position.
type Invoker interface {
	Invoke(path, position string) *engine.Promise
}

var (
	_ Rules   = (*rules.Chess)(nil)
	_ Invoker = (*engine.Invoker)(nil)
)

var (
	ErrNotInProgress  = errors.New("match: game is not in progress")
	ErrNotPlayersTurn = errors.New("match: side to move is not a player")
)

// Phase is the state of the game as a whole.
type Phase int

const (
	WaitingForSides Phase = iota
	InProgress
	Terminated
)

func (phase Phase) String() string {
	switch phase {
	case WaitingForSides:
		return "waiting for sides"
	case InProgress:
		return "in progress"
	case Terminated:
		return "terminated"
	default:
		return "?"
	}
}

// Event is what happened during a call to Advance.
type Event int

const (
	Idle Event = iota
	Thinking
	Moved
	GameOver
	Disqualified
)

// Report describes the effect of a single tick or player move.
type Report struct {
	Event Event
	Color rules.Color // the side the event concerns

	Move    move.Move     // Moved and GameOver
	Outcome rules.Outcome // Moved and GameOver
	Err     error         // a *Disqualification if Disqualified
}

func (report Report) String() string {
	switch report.Event {
	case Thinking:
		return fmt.Sprintf("%s is thinking", report.Color)
	case Moved:
		return fmt.Sprintf("%s played %s", report.Color, report.Move)
	case GameOver:
		return fmt.Sprintf("%s played %s: %s", report.Color, report.Move, report.Outcome)
	case Disqualified:
		return report.Err.Error()
	default:
		return ""
	}
}

// Orchestrator runs a single game. It owns both sides, the position and the
// one invocation which may be outstanding at any time. It is not safe for
// concurrent use: a single loop is expected to call Advance every tick.
type Orchestrator struct {
	sides [rules.ColorN]Side

	game    Rules
	newGame func() Rules

	invoker Invoker
	promise *engine.Promise

	over bool
}

// New creates an Orchestrator with both sides unset. newGame is called for
// the initial position and every time the game is reset.
func New(newGame func() Rules, invoker Invoker) *Orchestrator {
	return &Orchestrator{
		game:    newGame(),
		newGame: newGame,
		invoker: invoker,
	}
}

// Advance moves the game forward by one tick without blocking.
func (o *Orchestrator) Advance() Report {
	if o.Phase() != InProgress {
		return Report{}
	}

	color := o.game.SideToMove()

	side, ok := asEngine(o.sides[color])
	if !ok || !side.Configured() {
		// waiting on the player or the engine's configuration
		return Report{Color: color}
	}

	if o.promise == nil {
		o.promise = o.invoker.Invoke(side.Path(), o.game.Position())
		logrus.Debugf("Invoked %s for %s (%s)", side, color, o.promise.ID())
		return Report{Event: Thinking, Color: color}
	}

	result, resolved := o.promise.Poll()
	if !resolved {
		return Report{Color: color}
	}

	o.promise = nil

	if errors.Is(result.Err, engine.ErrBusy) {
		// an aborted invocation is still holding its slot, retry next tick
		logrus.Debugf("No free worker for %s (%s), retrying", side, color)
		return Report{Event: Thinking, Color: color}
	}

	if result.Err != nil {
		return o.disqualify(color, result.Err)
	}

	text := strings.TrimSpace(result.Output)
	if move.IsResign(text) {
		return o.disqualify(color, ErrResigned)
	}

	m, ok := move.Parse(text)
	if !ok {
		return o.disqualify(color, fmt.Errorf("%w %q", ErrMoveParse, text))
	}

	report, err := o.apply(color, m)
	if err != nil {
		return o.disqualify(color, err)
	}

	return report
}

// PlayerMove plays a move entered by the player whose turn it is. Malformed
// or illegal moves are rejected with an error, leaving the game untouched.
func (o *Orchestrator) PlayerMove(text string) (Report, error) {
	if o.Phase() != InProgress {
		return Report{}, ErrNotInProgress
	}

	color := o.game.SideToMove()
	if _, ok := o.sides[color].(*Player); !ok {
		return Report{}, ErrNotPlayersTurn
	}

	text = strings.TrimSpace(text)
	if move.IsResign(text) {
		return o.disqualify(color, ErrResigned), nil
	}

	m, ok := move.Parse(text)
	if !ok {
		return Report{}, fmt.Errorf("%w %q", ErrMoveParse, text)
	}

	return o.apply(color, m)
}

func (o *Orchestrator) apply(color rules.Color, m move.Move) (Report, error) {
	outcome, err := o.game.Apply(m)
	if err != nil {
		return Report{}, err
	}

	report := Report{Event: Moved, Color: color, Move: m, Outcome: outcome}
	logrus.Debugf("\x1b[32mMove\x1b[0m %s (%s): %s", color, o.sides[color], m)

	if outcome.Ended() {
		o.over = true
		report.Event = GameOver
		logrus.Debugf("\x1b[32mFinished\x1b[0m %s vs %s: %s", o.sides[rules.White], o.sides[rules.Black], outcome)
	}

	return report, nil
}

// disqualify removes the given side and restarts the game. The opponent
// keeps its assignment.
func (o *Orchestrator) disqualify(color rules.Color, err error) Report {
	dq := &Disqualification{Color: color, Side: o.sides[color], Err: err}
	logrus.Warn(dq)

	o.sides[color] = nil
	o.Reset()

	return Report{Event: Disqualified, Color: color, Err: dq}
}

// SetSide assigns a side to the given color; nil unsets it. An outstanding
// invocation of the replaced side is aborted.
func (o *Orchestrator) SetSide(color rules.Color, side Side) {
	if o.promise != nil && color == o.game.SideToMove() {
		o.abort()
	}

	o.sides[color] = side
}

// Side returns the side playing the given color, or nil.
func (o *Orchestrator) Side(color rules.Color) Side {
	return o.sides[color]
}

// Unconfigure unlocks the engine playing the given color so that its path
// can be changed, aborting its invocation if one is outstanding.
func (o *Orchestrator) Unconfigure(color rules.Color) error {
	side, ok := asEngine(o.sides[color])
	if !ok {
		return fmt.Errorf("match: %s is not an engine", color)
	}

	if color == o.game.SideToMove() {
		o.abort()
	}

	side.Unconfigure()
	return nil
}

// Reset starts a fresh game, keeping both sides.
func (o *Orchestrator) Reset() {
	o.abort()
	o.game = o.newGame()
	o.over = false
}

// Close aborts the outstanding invocation, if any.
func (o *Orchestrator) Close() {
	o.abort()
}

func (o *Orchestrator) abort() {
	if o.promise != nil {
		o.promise.Abort()
		o.promise = nil
	}
}

func (o *Orchestrator) Phase() Phase {
	switch {
	case o.sides[rules.White] == nil || o.sides[rules.Black] == nil:
		return WaitingForSides
	case o.over:
		return Terminated
	default:
		return InProgress
	}
}

// Pending reports whether an invocation is outstanding.
func (o *Orchestrator) Pending() bool {
	return o.promise != nil
}

func (o *Orchestrator) Position() string {
	return o.game.Position()
}

func (o *Orchestrator) SideToMove() rules.Color {
	return o.game.SideToMove()
}
