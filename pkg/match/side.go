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

	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// Side is a participant of a game: either a *Player or an *engine.Engine.
// A nil Side is a side which has not been picked yet.
type Side interface {
	String() string
}

// Player is a side whose moves are entered by a human.
type Player struct {
	Name string
}

func (player *Player) String() string {
	if player.Name == "" {
		return "player"
	}

	return player.Name
}

var (
	ErrMoveParse = errors.New("match: unparsable move")
	ErrResigned  = errors.New("match: side resigned")
)

// Disqualification is the reason a side was removed from the game.
type Disqualification struct {
	Color rules.Color
	Side  Side

	Err error
}

func (dq *Disqualification) Error() string {
	return fmt.Sprintf("%s (%s) disqualified: %v", dq.Color, dq.Side, dq.Err)
}

func (dq *Disqualification) Unwrap() error {
	return dq.Err
}

// asEngine returns the side as an engine, if it is one.
func asEngine(side Side) (*engine.Engine, bool) {
	e, ok := side.(*engine.Engine)
	return e, ok
}
