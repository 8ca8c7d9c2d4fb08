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

package match

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/uuid"

	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/move"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// recordingGame accepts every move and remembers them.
type recordingGame struct {
	id      int
	played  []move.Move
	illegal bool
	outcome rules.Outcome
}

func (game *recordingGame) Position() string {
	return fmt.Sprintf("game %d after %d moves", game.id, len(game.played))
}

func (game *recordingGame) SideToMove() rules.Color {
	return rules.Color(len(game.played) % 2)
}

func (game *recordingGame) Apply(m move.Move) (rules.Outcome, error) {
	if game.illegal {
		return rules.Outcome{}, rules.ErrIllegalMove
	}

	game.played = append(game.played, m)
	return game.outcome, nil
}

// fakeInvoker hands out promises which the test resolves by hand.
type fakeInvoker struct {
	calls   []string
	results chan engine.Result
	aborted int
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{results: make(chan engine.Result, 1)}
}

func (invoker *fakeInvoker) Invoke(path, position string) *engine.Promise {
	invoker.calls = append(invoker.calls, path+" "+position)
	return engine.NewPromise(uuid.New(), invoker.results, func() { invoker.aborted++ })
}

type fixture struct {
	*Orchestrator

	games   []*recordingGame
	invoker *fakeInvoker
}

func newFixture() *fixture {
	f := &fixture{invoker: newFakeInvoker()}
	f.Orchestrator = New(func() Rules {
		game := &recordingGame{id: len(f.games)}
		f.games = append(f.games, game)
		return game
	}, f.invoker)
	return f
}

func (f *fixture) game() *recordingGame {
	return f.games[len(f.games)-1]
}

func configured(t *testing.T, path string) *engine.Engine {
	t.Helper()

	e := engine.New("")
	if err := e.SetPath(path); err != nil {
		t.Fatal(err)
	}
	if err := e.Configure(); err != nil {
		t.Fatal(err)
	}

	return e
}

func TestAdvanceWaitsForSides(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "mess"))

	if f.Phase() != WaitingForSides {
		t.Fatalf("phase = %s", f.Phase())
	}

	if report := f.Advance(); report.Event != Idle || len(f.invoker.calls) != 0 {
		t.Fatalf("advance with black unset = %+v, calls %v", report, f.invoker.calls)
	}
}

func TestAdvanceUnconfiguredEngine(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, engine.New("mess"))
	f.SetSide(rules.Black, &Player{})

	position := f.Position()
	for i := 0; i < 3; i++ {
		if report := f.Advance(); report.Event != Idle {
			t.Fatalf("report = %+v, want idle", report)
		}
	}

	if len(f.invoker.calls) != 0 || f.Pending() || f.Position() != position {
		t.Fatalf("unconfigured engine was invoked: %v", f.invoker.calls)
	}
}

func TestAdvancePlayerToMove(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, &Player{})
	f.SetSide(rules.Black, configured(t, "mess"))

	if report := f.Advance(); report.Event != Idle || len(f.invoker.calls) != 0 {
		t.Fatalf("report = %+v, calls %v", report, f.invoker.calls)
	}
}

func TestAdvanceAppliesEngineMove(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "./mess"))
	f.SetSide(rules.Black, &Player{})

	if report := f.Advance(); report.Event != Thinking || report.Color != rules.White {
		t.Fatalf("first tick = %+v, want white thinking", report)
	}

	if len(f.invoker.calls) != 1 || f.invoker.calls[0] != "./mess game 0 after 0 moves" {
		t.Fatalf("calls = %q", f.invoker.calls)
	}

	// pending promises are kept and never re-invoked
	for i := 0; i < 3; i++ {
		if report := f.Advance(); report.Event != Idle || !f.Pending() {
			t.Fatalf("pending tick = %+v", report)
		}
	}

	f.invoker.results <- engine.Result{Output: " e2e4\n"}

	report := f.Advance()
	if report.Event != Moved {
		t.Fatalf("report = %+v, want moved", report)
	}

	want := move.Move{
		Source:      move.Square{File: 4, Rank: 1},
		Destination: move.Square{File: 4, Rank: 3},
	}
	if len(f.game().played) != 1 || f.game().played[0] != want {
		t.Fatalf("played = %v, want [%v]", f.game().played, want)
	}

	if f.Pending() || f.SideToMove() != rules.Black || len(f.invoker.calls) != 1 {
		t.Fatal("promise not cleared or side to move not flipped")
	}
}

func TestAdvanceWithChess(t *testing.T) {
	invoker := newFakeInvoker()
	o := New(func() Rules { return rules.NewChess(rules.StartFEN) }, invoker)
	o.SetSide(rules.White, configured(t, "mess"))
	o.SetSide(rules.Black, configured(t, "mess"))

	o.Advance()
	invoker.results <- engine.Result{Output: "e2e4"}
	if report := o.Advance(); report.Event != Moved {
		t.Fatalf("report = %+v", report)
	}

	if o.SideToMove() != rules.Black {
		t.Fatal("side to move did not flip")
	}

	if report := o.Advance(); report.Event != Thinking || report.Color != rules.Black {
		t.Fatalf("black's turn = %+v", report)
	}

	if invoker.calls[1] != "mess rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1" &&
		invoker.calls[1] != "mess rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1" {
		t.Fatalf("black invoked with %q", invoker.calls[1])
	}
}

func TestAdvanceDisqualifies(t *testing.T) {
	tests := []struct {
		name    string
		result  engine.Result
		illegal bool
		want    error
	}{
		{"resign", engine.Result{Output: "resign\n"}, false, ErrResigned},
		{"resign upper case", engine.Result{Output: "RESIGN"}, false, ErrResigned},
		{"malformed", engine.Result{Output: "z9z9"}, false, ErrMoveParse},
		{"empty", engine.Result{Output: ""}, false, ErrMoveParse},
		{"illegal", engine.Result{Output: "e2e5"}, true, rules.ErrIllegalMove},
		{"spawn", engine.Result{Err: fmt.Errorf("%w: no such file", engine.ErrProcessSpawn)}, false, engine.ErrProcessSpawn},
		{"crash", engine.Result{Output: "e2e4", ExitCode: 1, Err: engine.ErrProcessOutput}, false, engine.ErrProcessOutput},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := newFixture()
			black := &Player{Name: "human"}
			f.SetSide(rules.White, configured(t, "mess"))
			f.SetSide(rules.Black, black)
			f.game().illegal = test.illegal

			f.Advance()
			f.invoker.results <- test.result

			report := f.Advance()
			if report.Event != Disqualified || report.Color != rules.White {
				t.Fatalf("report = %+v, want white disqualified", report)
			}

			if !errors.Is(report.Err, test.want) {
				t.Fatalf("err = %v, want %v", report.Err, test.want)
			}

			var dq *Disqualification
			if !errors.As(report.Err, &dq) || dq.Color != rules.White {
				t.Fatalf("err = %#v, want a disqualification of white", report.Err)
			}

			if f.Side(rules.White) != nil || f.Side(rules.Black) != black {
				t.Fatal("wrong side was unset")
			}

			if len(f.games) != 2 || f.Pending() || f.Phase() != WaitingForSides {
				t.Fatalf("game not reset: %d games, phase %s", len(f.games), f.Phase())
			}
		})
	}
}

func TestAdvanceRetriesWhenBusy(t *testing.T) {
	f := newFixture()
	white := configured(t, "mess")
	f.SetSide(rules.White, white)
	f.SetSide(rules.Black, &Player{})

	f.Advance()
	f.invoker.results <- engine.Result{ExitCode: -1, Err: engine.ErrBusy}

	if report := f.Advance(); report.Event != Thinking || report.Color != rules.White {
		t.Fatalf("busy tick = %+v, want white still thinking", report)
	}

	if f.Side(rules.White) != white || len(f.games) != 1 || f.Pending() {
		t.Fatal("a busy registry disqualified the engine")
	}

	f.Advance()
	if len(f.invoker.calls) != 2 || !f.Pending() {
		t.Fatalf("engine not invoked again: %v", f.invoker.calls)
	}

	f.invoker.results <- engine.Result{Output: "e2e4"}
	if report := f.Advance(); report.Event != Moved {
		t.Fatalf("report = %+v, want moved", report)
	}
}

func TestAdvanceAfterAbortWithOneWorker(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("engine scripts need a posix shell")
	}

	path := filepath.Join(t.TempDir(), "slow")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nsleep 30\necho e2e4\n"), 0755); err != nil {
		t.Fatal(err)
	}

	invoker := engine.NewInvoker(engine.NewRegistry(1))
	defer invoker.Registry().Wait()

	o := New(func() Rules { return rules.NewChess(rules.StartFEN) }, invoker)
	defer o.Close()

	white := configured(t, path)
	o.SetSide(rules.White, white)
	o.SetSide(rules.Black, &Player{})

	o.Advance()
	o.Reset()

	for i := 0; i < 5; i++ {
		if report := o.Advance(); report.Event == Disqualified {
			t.Fatalf("engine disqualified after an abort: %v", report.Err)
		}
	}

	if o.Side(rules.White) != white {
		t.Fatal("white was unset")
	}
}

func TestAdvanceSurfacesDiagnostic(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "mess"))
	f.SetSide(rules.Black, &Player{})

	f.Advance()
	f.invoker.results <- engine.Result{Err: errors.New("Error: no such file")}

	report := f.Advance()
	if report.Event != Disqualified {
		t.Fatalf("report = %+v", report)
	}

	if got := report.String(); got != "white (mess) disqualified: Error: no such file" {
		t.Fatalf("diagnostic = %q", got)
	}
}

func TestGameOver(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "mess"))
	f.SetSide(rules.Black, configured(t, "mess"))
	f.game().outcome = rules.Outcome{Score: rules.WhiteWins, Reason: rules.ByCheckmate}

	f.Advance()
	f.invoker.results <- engine.Result{Output: "d1h5"}

	if report := f.Advance(); report.Event != GameOver || report.Outcome.Score != rules.WhiteWins {
		t.Fatalf("report = %+v, want game over", report)
	}

	if f.Phase() != Terminated {
		t.Fatalf("phase = %s", f.Phase())
	}

	if report := f.Advance(); report.Event != Idle || len(f.invoker.calls) != 1 {
		t.Fatal("terminated game kept invoking engines")
	}

	f.Reset()
	if f.Phase() != InProgress || len(f.games) != 2 {
		t.Fatal("Reset did not start a new game")
	}
}

func TestPlayerMove(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, &Player{})
	f.SetSide(rules.Black, configured(t, "mess"))

	if _, err := f.PlayerMove("e2e9"); !errors.Is(err, ErrMoveParse) {
		t.Fatalf("malformed player move = %v", err)
	}

	f.game().illegal = true
	if _, err := f.PlayerMove("e2e5"); !errors.Is(err, rules.ErrIllegalMove) {
		t.Fatalf("illegal player move = %v", err)
	}

	f.game().illegal = false
	report, err := f.PlayerMove("e2e4")
	if err != nil || report.Event != Moved {
		t.Fatalf("PlayerMove(e2e4) = %+v, %v", report, err)
	}

	if _, err := f.PlayerMove("e7e5"); !errors.Is(err, ErrNotPlayersTurn) {
		t.Fatalf("move on engine's turn = %v", err)
	}

	if f.Side(rules.White) == nil || len(f.games) != 1 {
		t.Fatal("rejected player moves disqualified the player")
	}
}

func TestPlayerResigns(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, &Player{})
	f.SetSide(rules.Black, &Player{})

	report, err := f.PlayerMove("Resign")
	if err != nil || report.Event != Disqualified || !errors.Is(report.Err, ErrResigned) {
		t.Fatalf("PlayerMove(resign) = %+v, %v", report, err)
	}

	if _, err := f.PlayerMove("e2e4"); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("move while waiting for sides = %v", err)
	}
}

func TestUnconfigureAbortsInvocation(t *testing.T) {
	f := newFixture()
	white := configured(t, "mess")
	f.SetSide(rules.White, white)
	f.SetSide(rules.Black, &Player{})

	f.Advance()
	if err := f.Unconfigure(rules.White); err != nil {
		t.Fatal(err)
	}

	if f.Pending() || f.invoker.aborted != 1 || white.Configured() {
		t.Fatal("outstanding invocation survived Unconfigure")
	}

	if err := f.Unconfigure(rules.Black); err == nil {
		t.Fatal("unconfigured a player")
	}

	_ = white.SetPath("stockfish")
	_ = white.Configure()
	f.Advance()
	if got := f.invoker.calls[1]; got != "stockfish game 0 after 0 moves" {
		t.Fatalf("reconfigured engine invoked as %q", got)
	}
}

func TestSetSideAbortsInvocation(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "mess"))
	f.SetSide(rules.Black, &Player{})

	f.Advance()
	f.SetSide(rules.Black, &Player{Name: "other"})
	if !f.Pending() {
		t.Fatal("replacing the waiting side aborted the invocation")
	}

	f.SetSide(rules.White, nil)
	if f.Pending() || f.invoker.aborted != 1 {
		t.Fatal("unsetting the thinking side kept its invocation")
	}

	f.Close()
}

func TestResetAbortsInvocation(t *testing.T) {
	f := newFixture()
	f.SetSide(rules.White, configured(t, "mess"))
	f.SetSide(rules.Black, &Player{})

	f.Advance()
	f.Reset()

	if f.Pending() || f.invoker.aborted != 1 || len(f.games) != 2 {
		t.Fatal("Reset did not abort the outstanding invocation")
	}
}
