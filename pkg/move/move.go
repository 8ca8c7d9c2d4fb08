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

// Package move implements the textual move format spoken by engines: a
// source square, a destination square and an optional promotion letter,
// like e2e4 or a7a8q.
package move

import "strings"

// Resign is the move string with which a side forfeits the game.
const Resign = "resign"

// Square is a board coordinate. File 0 is the a-file and rank 0 is the
// first rank.
type Square struct {
	File, Rank int
}

// ParseSquare decodes an algebraic square like e4.
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return Square{}, false
	}

	file, rank := s[0], s[1]
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Square{}, false
	}

	return Square{File: int(file - 'a'), Rank: int(rank - '1')}, true
}

func (sq Square) String() string {
	return string([]byte{byte('a' + sq.File), byte('1' + sq.Rank)})
}

// PieceKind is the piece a pawn promotes to.
type PieceKind int

const (
	NoPiece PieceKind = iota
	Queen
	Rook
	Knight
	Bishop
)

// promotions maps the promotion letter of a move string to its piece.
var promotions = map[byte]PieceKind{
	'q': Queen,
	'r': Rook,
	'k': Knight,
	'b': Bishop,
}

func (kind PieceKind) letter() string {
	switch kind {
	case Queen:
		return "q"
	case Rook:
		return "r"
	case Knight:
		return "k"
	case Bishop:
		return "b"
	default:
		return ""
	}
}

// Move is a decoded move string. Legality is not checked here.
type Move struct {
	Source      Square
	Destination Square
	Promotion   PieceKind
}

// Parse decodes a move string. Parse fails for the resignation string,
// use IsResign to tell it apart from a malformed move.
func Parse(text string) (Move, bool) {
	text = strings.ToLower(text)
	if text == Resign {
		return Move{}, false
	}

	if len(text) != 4 && len(text) != 5 {
		return Move{}, false
	}

	source, ok := ParseSquare(text[0:2])
	if !ok {
		return Move{}, false
	}

	destination, ok := ParseSquare(text[2:4])
	if !ok {
		return Move{}, false
	}

	m := Move{Source: source, Destination: destination}
	if len(text) == 5 {
		if m.Promotion, ok = promotions[text[4]]; !ok {
			return Move{}, false
		}
	}

	return m, true
}

// IsResign reports whether text is the resignation string.
func IsResign(text string) bool {
	return strings.EqualFold(text, Resign)
}

// String returns the move in the format accepted by Parse.
func (m Move) String() string {
	return m.Source.String() + m.Destination.String() + m.Promotion.letter()
}

// UCI returns the move in standard coordinate notation, which spells a
// knight promotion with an n.
func (m Move) UCI() string {
	if m.Promotion == Knight {
		return m.Source.String() + m.Destination.String() + "n"
	}

	return m.String()
}
