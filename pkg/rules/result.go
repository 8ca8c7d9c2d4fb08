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

// Color is one of the two sides of a game.
type Color int

const (
	White Color = iota
	Black

	ColorN = 2
)

// Other returns the opponent of color.
func (color Color) Other() Color {
	return color ^ 1
}

func (color Color) String() string {
	switch color {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "?"
	}
}

// Score represents the result of a single game.
type Score int

const (
	Ongoing   Score = 0
	WhiteWins Score = +1
	BlackWins Score = -1
	Draw      Score = 2
)

// GameLostBy maps the losing side to the game's Score.
var GameLostBy = [ColorN]Score{
	White: BlackWins,
	Black: WhiteWins,
}

// String returns a string representation of the given Score.
func (score Score) String() string {
	switch score {
	case WhiteWins:
		return "1-0"
	case Draw:
		return "1/2-1/2"
	case BlackWins:
		return "0-1"
	default:
		return "*"
	}
}

const (
	ByCheckmate            = "checkmate"
	ByStalemate            = "stalemate"
	ByFiftyMoveRule        = "50 move rule"
	ByThreefoldRepetition  = "threefold repetition"
	ByInsufficientMaterial = "insufficient material"
)

// Outcome is the state of a game after a move has been played.
type Outcome struct {
	Score  Score
	Reason string
}

// Ended reports whether the game is over.
func (outcome Outcome) Ended() bool {
	return outcome.Score != Ongoing
}

func (outcome Outcome) String() string {
	if !outcome.Ended() {
		return "ongoing"
	}

	return outcome.Score.String() + " by " + outcome.Reason
}
