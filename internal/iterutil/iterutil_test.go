// The code in this package is derivative of https://github.com/jub0bs/iterutil (all credit to jub0bs).
// Mount of this source code is governed by a MIT License that can be found
// at https://github.com/jub0bs/iterutil/blob/main/LICENSE.

package iterutil

import (
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeftRight(t *testing.T) {
	seq2 := func(yield func(string, int) bool) {
		for _, p := range []struct {
			k string
			v int
		}{{"a", 1}, {"b", 2}, {"c", 3}} {
			if !yield(p.k, p.v) {
				return
			}
		}
	}

	assert.Equal(t, []string{"a", "b", "c"}, slices.Collect(Left(seq2)))
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(Right(seq2)))
	assert.Equal(t, 3, Len2(seq2))
}

func TestSeqOf(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, slices.Collect(SeqOf(1, 2, 3)))
	assert.Empty(t, slices.Collect(SeqOf[int]()))
}

func TestMap(t *testing.T) {
	got := slices.Collect(Map(SeqOf(1, 2, 3), strconv.Itoa))
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestLen2Empty(t *testing.T) {
	empty := func(yield func(string, int) bool) {}
	assert.Equal(t, 0, Len2(empty))
}
