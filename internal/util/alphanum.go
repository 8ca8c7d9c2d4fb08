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
	"regexp"
	"sort"
	"strconv"
)

var chunkifyRegexp = regexp.MustCompile(`(\d+|\D+)`)

// NaturalLess reports whether a precedes b in natural order, where runs
// of digits are compared by their numeric value: stash9 < stash10.
func NaturalLess(a, b string) bool {
	chunksA := chunkifyRegexp.FindAllString(a, -1)
	chunksB := chunkifyRegexp.FindAllString(b, -1)

	for i := 0; i < len(chunksA) && i < len(chunksB); i++ {
		x, y := chunksA[i], chunksB[i]
		if x == y {
			continue
		}

		xInt, xErr := strconv.Atoi(x)
		yInt, yErr := strconv.Atoi(y)
		if xErr == nil && yErr == nil && xInt != yInt {
			return xInt < yInt
		}

		return x < y
	}

	return len(chunksA) < len(chunksB)
}

// SortNatural sorts names in natural order.
func SortNatural(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return NaturalLess(names[i], names[j])
	})
}
