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

	"github.com/spf13/cobra"

	"laptudirm.com/x/chessbot/internal/util"
)

func Engines() *cobra.Command {
	return &cobra.Command{
		Use:   "engines",
		Short: "Lists the engines which can be picked by name",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			if len(cfg.Engines) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "\x1b[31mNo Engines Configured.\x1b[0m")
				return nil
			}

			names := make([]string, 0, len(cfg.Engines))
			for name := range cfg.Engines {
				names = append(names, name)
			}

			util.SortNatural(names)

			fmt.Fprintln(cmd.OutOrStdout(), "\u001B[32mConfigured Engines\u001B[0m:")
			for _, name := range names {
				fmt.Fprintf(cmd.OutOrStdout(), "- %-20s %s\n", fmt.Sprintf("\x1b[34m%s\x1b[0m:", name), cfg.Engines[name])
			}

			return nil
		},
	}
}
