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
	"strconv"
	"strings"

	"laptudirm.com/x/mess/pkg/board"
	"laptudirm.com/x/mess/pkg/formats/fen"

	"laptudirm.com/x/chessbot/pkg/move"
)

var ErrInvalidFEN = errors.New("rules: invalid fen")

// ValidateFEN checks that fenstr is a complete, six field fen string which
// NewChess can set up. Positions which are read from files or the command
// line should be validated before a game is started from them.
func ValidateFEN(fenstr string) (err error) {
	invalid := func(format string, a ...any) error {
		return fmt.Errorf("%w %q: %s", ErrInvalidFEN, fenstr, fmt.Sprintf(format, a...))
	}

	fields := strings.Fields(fenstr)
	if len(fields) != 6 {
		return invalid("%d fields, want 6", len(fields))
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return invalid("%d ranks, want 8", len(ranks))
	}

	kings := map[rune]int{}
	for _, rank := range ranks {
		files := 0
		for _, r := range rank {
			switch {
			case r >= '1' && r <= '8':
				files += int(r - '0')
			case strings.ContainsRune("pnbrqkPNBRQK", r):
				files++
				kings[r]++
			default:
				return invalid("bad piece %q", r)
			}
		}

		if files != 8 {
			return invalid("rank %q has %d files", rank, files)
		}
	}

	if kings['K'] != 1 || kings['k'] != 1 {
		return invalid("need one king per side")
	}

	if fields[1] != "w" && fields[1] != "b" {
		return invalid("bad side to move %q", fields[1])
	}

	if castling := fields[2]; castling != "-" && strings.Trim(castling, "KQkq") != "" {
		return invalid("bad castling rights %q", castling)
	}

	if target := fields[3]; target != "-" {
		if sq, ok := move.ParseSquare(target); !ok || (sq.Rank != 2 && sq.Rank != 5) {
			return invalid("bad en passant square %q", target)
		}
	}

	if clock, err := strconv.Atoi(fields[4]); err != nil || clock < 0 {
		return invalid("bad half-move clock %q", fields[4])
	}

	if number, err := strconv.Atoi(fields[5]); err != nil || number < 1 {
		return invalid("bad move number %q", fields[5])
	}

	// mess panics on positions it can't set up
	defer func() {
		if r := recover(); r != nil {
			err = invalid("%v", r)
		}
	}()

	board.New(board.FEN(fen.FromString(fenstr)))
	return nil
}
