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
	"laptudirm.com/x/chessbot/pkg/config"
	"laptudirm.com/x/chessbot/pkg/match"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// Games returns the constructor of a session's games. Every new game starts
// from the next position of the configured book, or from the configured
// starting position if there is no book.
func Games(cfg *config.Config) (func() match.Rules, error) {
	if cfg.Book == "" {
		return func() match.Rules {
			return rules.NewChess(cfg.StartFEN)
		}, nil
	}

	book, err := rules.NewBook(cfg.Book, cfg.BookOrder)
	if err != nil {
		return nil, err
	}

	started := false
	return func() match.Rules {
		if started {
			book.Next()
		}

		started = true
		return rules.NewChess(book.Current())
	}, nil
}
