package subset_test

import (
	"testing"

	"github.com/FriendsInGlobalHealth/fghextractor/pkg/subset"
	"github.com/stretchr/testify/assert"
)

func TestBatches(t *testing.T) {
	tests := []struct {
		msg          string
		total, batch int64
		exp          int64
	}{
		{"empty", 0, 10, 0},
		{"below batch", 7, 10, 1},
		{"equal to batch", 10, 10, 1},
		{"exact multiple", 30, 10, 3},
		{"remainder", 25, 10, 3},
		{"one over", 11, 10, 2},
		{"no batch", 5, 0, 1},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			assert.Equal(t, v.exp, subset.Batches(v.total, v.batch))
		})
	}
}

func TestPageNext(t *testing.T) {
	p := subset.FirstPage(3)
	assert.Equal(t, subset.Page{Size: 3}, p)

	p = p.Next(17).Next(42)
	assert.Equal(t, subset.Page{Size: 3, After: 42, Follows: true}, p)
}

// Pages cut at the last key of each window visit every key once, even
// when every page removes its rows from the filtered set.
func TestPagesShrinkingSet(t *testing.T) {
	for total := 1; total <= 60; total++ {
		for _, batch := range []int{1, 3, 7, 20, 100} {
			keys := make(map[int]bool, total)
			for i := 1; i <= total; i++ {
				keys[i*2] = true
			}
			var copied int
			var pages int64
			page := subset.FirstPage(int64(batch))
			for {
				// rows still selected past the page start, in key order
				var window []int
				for k := 1; k <= total*2 && len(window) < batch; k++ {
					if keys[k] && (!page.Follows || int64(k) > page.After) {
						window = append(window, k)
					}
				}
				if len(window) == 0 {
					break
				}
				last := window[len(window)-1]
				for _, k := range window {
					delete(keys, k)
					copied++
				}
				pages++
				page = page.Next(int64(last))
			}
			assert.Equal(t, total, copied)
			assert.Empty(t, keys)
			assert.Equal(t, subset.Batches(int64(total), int64(batch)), pages)
		}
	}
}
