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

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"laptudirm.com/x/chessbot/pkg/common"
	"laptudirm.com/x/chessbot/pkg/engine"
	"laptudirm.com/x/chessbot/pkg/rules"
)

//go:embed config.yaml
var BaseConfigFile []byte

type Config struct {
	// Engines maps engine names to their executables.
	Engines map[string]string `yaml:"engines"`

	Timeout   time.Duration `yaml:"timeout" env:"CHESSBOT_TIMEOUT"`
	Workers   int           `yaml:"workers" env:"CHESSBOT_WORKERS"`
	Tick      time.Duration `yaml:"tick" env:"CHESSBOT_TICK"`
	BoardFlag string        `yaml:"board-flag" env:"CHESSBOT_BOARD_FLAG"`

	StartFEN  string `yaml:"start-fen" env:"CHESSBOT_START_FEN"`
	Book      string `yaml:"book" env:"CHESSBOT_BOOK"`
	BookOrder string `yaml:"book-order" env:"CHESSBOT_BOOK_ORDER"`
}

// Default returns the configuration used for missing keys.
func Default() *Config {
	return &Config{
		Engines:   map[string]string{},
		Timeout:   time.Minute,
		Workers:   engine.DefaultWorkers,
		Tick:      50 * time.Millisecond,
		BoardFlag: engine.DefaultFlag,
		StartFEN:  rules.StartFEN,
		BookOrder: "sequential",
	}
}

// Load reads the configuration file at path and applies the environment's
// overrides. An empty path means the default configuration file, which is
// created if it doesn't exist yet.
func Load(path string) (*Config, error) {
	if path == "" {
		path = common.ConfigFile

		if err := common.TryMkdir(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}

		if err := common.TryCreate(path, BaseConfigFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	config := Default()

	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// use the defaults
	case err != nil:
		return nil, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := env.Parse(config); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	return config, config.Validate()
}

// Validate checks that the configuration is usable.
func (config *Config) Validate() error {
	switch {
	case config.Timeout < 0:
		return fmt.Errorf("config: negative timeout %s", config.Timeout)
	case config.Workers < 1:
		return fmt.Errorf("config: need at least one worker, have %d", config.Workers)
	case config.Tick <= 0:
		return fmt.Errorf("config: non-positive tick %s", config.Tick)
	case config.StartFEN == "" && config.Book == "":
		return errors.New("config: no starting position")
	}

	if config.StartFEN != "" {
		if err := rules.ValidateFEN(config.StartFEN); err != nil {
			return fmt.Errorf("config: start-fen: %w", err)
		}
	}

	return nil
}

// EnginePath resolves an engine's name to its executable. Unknown names
// are returned as they are.
func (config *Config) EnginePath(name string) string {
	if path, found := config.Engines[name]; found {
		return path
	}

	return name
}
