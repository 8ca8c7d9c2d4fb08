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
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"laptudirm.com/x/chessbot/internal/util"
	"laptudirm.com/x/chessbot/pkg/match"
	"laptudirm.com/x/chessbot/pkg/move"
	"laptudirm.com/x/chessbot/pkg/rules"
)

// chessbot ask
func Ask() *cobra.Command {
	return &cobra.Command{
		Use:   "ask engine [fen]",
		Short: "Ask an engine for a single move",
		Args:  cobra.RangeArgs(1, 2),
		Long: heredoc.Doc(`ask runs the given engine once on a position, the
			starting position by default, and checks the move it prints
			the same way a game would. Use it to debug an engine before
			letting it play.`),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			position := cfg.StartFEN
			if len(args) == 2 {
				position = args[1]
			}

			if err := rules.ValidateFEN(position); err != nil {
				return err
			}

			invoker := newInvoker(cfg)
			s := util.NewSpinner(os.Stderr)

			path := cfg.EnginePath(args[0])
			promise := invoker.Invoke(path, position)
			s.Start(fmt.Sprintf("%s is thinking", args[0]))

			result, resolved := promise.Poll()
			for ; !resolved; result, resolved = promise.Poll() {
				time.Sleep(cfg.Tick)
			}

			s.Stop()

			if result.Err != nil {
				return result.Err
			}

			out := cmd.OutOrStdout()
			text := strings.TrimSpace(result.Output)
			if move.IsResign(text) {
				fmt.Fprintf(out, "%s resigns\n", args[0])
				return nil
			}

			m, ok := move.Parse(text)
			if !ok {
				return fmt.Errorf("%w %q", match.ErrMoveParse, text)
			}

			if _, err := rules.NewChess(position).Apply(m); err != nil {
				return err
			}

			fmt.Fprintf(out, "%s plays \x1b[32m%s\x1b[0m\n", args[0], m)
			return nil
		},
	}
}
