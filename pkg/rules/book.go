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
	"math/rand"
	"os"
	"strings"
)

var ErrEmptyBook = errors.New("book: no positions found")

// Book is a list of starting positions, one fen string per line.
type Book struct {
	entries  []string
	strategy string
	current  int
}

// NewBook reads the book from the given file. The strategy is either
// "random" or "sequential".
func NewBook(name string, strategy string) (*Book, error) {
	file, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("book: %w", err)
	}

	return ParseBook(string(file), strategy)
}

// ParseBook creates a Book from the contents of a book file.
func ParseBook(contents string, strategy string) (*Book, error) {
	var book Book
	for i, entry := range strings.Split(contents, "\n") {
		entry = strings.Trim(entry, "\n\r\t ")
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}

		if err := ValidateFEN(entry); err != nil {
			return nil, fmt.Errorf("book: line %d: %w", i+1, err)
		}

		book.entries = append(book.entries, entry)
	}

	if len(book.entries) == 0 {
		return nil, ErrEmptyBook
	}

	switch strategy {
	case "random":
		book.current = rand.Intn(len(book.entries))
	case "sequential", "":
	default:
		return nil, fmt.Errorf("book: invalid order %s", strategy)
	}

	book.strategy = strategy
	return &book, nil
}

// Next moves to the next position of the book.
func (book *Book) Next() {
	switch book.strategy {
	case "random":
		book.current = rand.Intn(len(book.entries))
	default:
		book.current = (book.current + 1) % len(book.entries)
	}
}

// Current returns the current position of the book.
func (book *Book) Current() string {
	return book.entries[book.current]
}

func (book *Book) Len() int {
	return len(book.entries)
}
