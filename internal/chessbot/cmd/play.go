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

package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/chzyer/readline"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"laptudirm.com/x/chessbot/internal/chessbot/session"
	"laptudirm.com/x/chessbot/internal/util"
	"laptudirm.com/x/chessbot/pkg/common"
	"laptudirm.com/x/chessbot/pkg/match"
)

// chessbot play
func Play() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game between players and engines",
		Args:  cobra.NoArgs,
		Long: heredoc.Doc(`play starts an interactive game of chess. Each side is
			played either by you, entering moves at the prompt, or by an
			engine executable which is run once for every move.

			An engine is run as "<path> --board <fen>" and must print a
			single move, like e2e4 or e7e8q, or the word resign. An engine
			which crashes, resigns, or plays an illegal move is removed
			from the game and the game starts over.

			Sides can be picked with the --white and --black flags, which
			take either "player" or the name or path of an engine, or at
			the prompt; type help there for the list of commands.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if book, _ := cmd.Flags().GetString("book"); book != "" {
				cfg.Book = book
			}

			games, err := session.Games(cfg)
			if err != nil {
				return err
			}

			invoker := newInvoker(cfg)
			defer func() {
				invoker.Registry().AbortAll()
				invoker.Registry().Wait()
			}()

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "chessbot> ",
				HistoryFile:     filepath.Join(common.Directory, "history"),
				InterruptPrompt: "^C",
				EOFPrompt:       "quit",
			})
			if err != nil {
				return err
			}
			defer rl.Close()

			s := session.New(cfg, match.New(games, invoker), rl.Stdout())
			s.Spinner = util.NewSpinner(os.Stderr)

			for _, color := range []string{"white", "black"} {
				side, _ := cmd.Flags().GetString(color)
				if side == "" {
					continue
				}

				line := color + " engine " + side
				if side == "player" {
					line = color + " player"
				}

				if err := s.Handle(line); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return s.Run(ctx, readLines(ctx, rl))
		},
	}

	cmd.Flags().String("white", "", "Side playing white: player or an engine")
	cmd.Flags().String("black", "", "Side playing black: player or an engine")
	cmd.Flags().StringP("book", "b", "", "File of starting positions")

	return cmd
}

// readLines sends the lines read by rl over the returned channel, which is
// closed once the input ends.
func readLines(ctx context.Context, rl *readline.Instance) <-chan string {
	lines := make(chan string)

	go func() {
		defer close(lines)

		for {
			line, err := rl.Readline()
			if err != nil {
				logrus.Debugf("input closed: %v", err)
				return
			}

			select {
			case lines <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return lines
}
