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

package session

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"laptudirm.com/x/chessbot/pkg/config"
	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/match"
	"laptudirm.com/x/chessbot/pkg/rules"
)

type fakeInvoker struct {
	paths   []string
	results chan engine.Result
}

func (invoker *fakeInvoker) Invoke(path, position string) *engine.Promise {
	invoker.paths = append(invoker.paths, path)
	return engine.NewPromise(uuid.New(), invoker.results, nil)
}

func newSession(t *testing.T) (*Session, *fakeInvoker, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Engines["mess"] = "/opt/engines/mess"

	games, err := Games(cfg)
	if err != nil {
		t.Fatal(err)
	}

	invoker := &fakeInvoker{results: make(chan engine.Result, 1)}
	out := &bytes.Buffer{}
	return New(cfg, match.New(games, invoker), out), invoker, out
}

func handle(t *testing.T, s *Session, lines ...string) {
	t.Helper()

	for _, line := range lines {
		if err := s.Handle(line); err != nil {
			t.Fatalf("Handle(%q): %v", line, err)
		}
	}
}

func TestSessionEngineVsPlayer(t *testing.T) {
	s, invoker, out := newSession(t)
	handle(t, s, "white engine mess", "black player Rak")

	s.Tick()
	if len(invoker.paths) != 1 || invoker.paths[0] != "/opt/engines/mess" {
		t.Fatalf("invoked %v", invoker.paths)
	}

	invoker.results <- engine.Result{Output: "e2e4\n"}
	s.Tick()
	if !strings.Contains(out.String(), "white played e2e4") {
		t.Fatalf("output = %q", out.String())
	}

	handle(t, s, "e7e5")
	if !strings.Contains(out.String(), "black played e7e5") {
		t.Fatalf("output = %q", out.String())
	}

	if err := s.Handle("e7e5"); err == nil {
		t.Fatal("player moved on the engine's turn")
	}
}

func TestSessionConfirmPath(t *testing.T) {
	s, invoker, out := newSession(t)
	handle(t, s, "black player", "white engine")

	s.Tick()
	if len(invoker.paths) != 0 {
		t.Fatal("unconfirmed engine was invoked")
	}

	if err := s.Handle("white confirm"); !errors.Is(err, engine.ErrEmptyPath) {
		t.Fatalf("confirm with empty path = %v", err)
	}

	handle(t, s, "white path ./stash", "white confirm")
	if !strings.Contains(out.String(), "white: engine stash (./stash)") {
		t.Fatalf("output = %q", out.String())
	}

	if err := s.Handle("white path ./other"); !errors.Is(err, engine.ErrConfigured) {
		t.Fatalf("path change on confirmed engine = %v", err)
	}

	s.Tick()
	handle(t, s, "white unlock", "white path ./other", "white confirm")

	s.Tick()
	if len(invoker.paths) != 2 || invoker.paths[1] != "./other" {
		t.Fatalf("invoked %v", invoker.paths)
	}
}

func TestSessionDisqualification(t *testing.T) {
	s, invoker, out := newSession(t)
	handle(t, s, "white engine mess", "black player")

	s.Tick()
	invoker.results <- engine.Result{Output: "resign"}
	s.Tick()

	if !strings.Contains(out.String(), "white (mess) disqualified") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	handle(t, s, "status")
	if !strings.Contains(out.String(), "white: unset") || !strings.Contains(out.String(), "waiting for sides") {
		t.Fatalf("status = %q", out.String())
	}
}

func TestSessionCommands(t *testing.T) {
	s, _, out := newSession(t)

	handle(t, s, "", "fen")
	if !strings.Contains(out.String(), rules.StartFEN[:20]) {
		t.Fatalf("fen = %q", out.String())
	}

	for _, line := range []string{"white", "white dance", "black confirm", "white unlock", "e2e4"} {
		if err := s.Handle(line); err == nil {
			t.Errorf("Handle(%q) succeeded", line)
		}
	}

	if err := s.Handle("quit"); !errors.Is(err, ErrQuit) {
		t.Fatalf("quit = %v", err)
	}
}

func TestSessionRun(t *testing.T) {
	s, _, out := newSession(t)
	s.config.Tick = time.Millisecond

	lines := make(chan string, 3)
	lines <- "white player"
	lines <- "black player"
	lines <- "quit"

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Run(ctx, lines); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(out.String(), "black: player") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestGamesFromBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.epd")
	second := "8/P6k/8/8/8/8/8/K7 w - - 0 1"
	if err := os.WriteFile(path, []byte(rules.StartFEN+"\n"+second+"\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Book = path

	games, err := Games(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if game := games(); game.SideToMove() != rules.White || !strings.HasPrefix(game.Position(), "rnbqkbnr/") {
		t.Fatalf("first game = %q", game.Position())
	}

	if game := games(); !strings.HasPrefix(game.Position(), "8/P6k/") {
		t.Fatalf("second game = %q", game.Position())
	}

	cfg.Book = filepath.Join(t.TempDir(), "missing")
	if _, err := Games(cfg); err == nil {
		t.Fatal("missing book accepted")
	}
}
