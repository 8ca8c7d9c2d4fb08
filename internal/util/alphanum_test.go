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

package util

import (
	"reflect"
	"testing"
)

func TestSortNatural(t *testing.T) {
	names := []string{"stash10", "mess", "stash9", "ethereal", "stash9b", "stash"}
	SortNatural(names)

	want := []string{"ethereal", "mess", "stash", "stash9", "stash9b", "stash10"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("SortNatural = %v, want %v", names, want)
	}
}

func TestNaturalLess(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"v2", "v10", true},
		{"v10", "v2", false},
		{"a", "a", false},
		{"a", "a1", true},
		{"007", "7", true},
	}

	for _, test := range tests {
		if got := NaturalLess(test.a, test.b); got != test.want {
			t.Errorf("NaturalLess(%q, %q) = %v, want %v", test.a, test.b, got, test.want)
		}
	}
}
