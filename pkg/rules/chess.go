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

package rules

import (
	"errors"
	"fmt"
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/board/piece"
	"laptudirm.com/x/mess/pkg/formats/fen"

	"laptudirm.com/x/chessbot/pkg/move"
)

// StartFEN is the fen string of the standard starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var ErrIllegalMove = errors.New("rules: illegal move")

// Chess is a game of chess which only accepts legal moves.
type Chess struct {
	board   *board.Board
	outcome Outcome
}

// NewChess returns a game of chess starting from the given position, which
// should have been checked with ValidateFEN.
func NewChess(fenstr string) *Chess {
	chess := &Chess{board: board.New(board.FEN(fen.FromString(fenstr)))}
	chess.outcome = chess.result()
	return chess
}

// Position returns the fen string of the current position.
func (chess *Chess) Position() string {
	fen := [6]string(chess.board.FEN())
	return strings.Join(fen[:], " ")
}

func (chess *Chess) SideToMove() Color {
	if chess.board.SideToMove == piece.White {
		return White
	}

	return Black
}

// Outcome returns the state of the game after the last move.
func (chess *Chess) Outcome() Outcome {
	return chess.outcome
}

// Apply plays the given move if it is legal in the current position.
func (chess *Chess) Apply(m move.Move) (Outcome, error) {
	if chess.outcome.Ended() {
		return chess.outcome, fmt.Errorf("%w: game is over (%s)", ErrIllegalMove, chess.outcome)
	}

	uci := m.UCI()
	for _, legal := range chess.board.GenerateMoves(false) {
		if legal.String() == uci {
			chess.board.MakeMove(legal)
			chess.outcome = chess.result()
			return chess.outcome, nil
		}
	}

	return chess.outcome, fmt.Errorf("%w %s in %s", ErrIllegalMove, uci, chess.Position())
}

func (chess *Chess) result() Outcome {
	movelist := chess.board.GenerateMoves(false)

	switch {
	case len(movelist) == 0:
		if chess.board.IsInCheck(chess.board.SideToMove) {
			return Outcome{Score: GameLostBy[chess.SideToMove()], Reason: ByCheckmate}
		}

		return Outcome{Score: Draw, Reason: ByStalemate}

	case chess.board.DrawClock >= 100:
		return Outcome{Score: Draw, Reason: ByFiftyMoveRule}

	case chess.board.IsThreefoldRepetition():
		return Outcome{Score: Draw, Reason: ByThreefoldRepetition}

	case chess.board.IsInsufficientMaterial():
		return Outcome{Score: Draw, Reason: ByInsufficientMaterial}
	}

	return Outcome{}
}
