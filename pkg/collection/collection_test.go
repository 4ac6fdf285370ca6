package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type line struct {
	name  string
	price float64
	qty   int
}

func TestHelpers(t *testing.T) {
	lines := []line{{"paneer", 250, 2}, {"dosa", 150, 1}, {"thali", 300, 1}}

	assert.Equal(t, []string{"paneer", "dosa", "thali"}, Map(lines, func(l line) string { return l.name }))
	assert.Len(t, Filter(lines, func(l line) bool { return l.qty > 1 }), 1)
	assert.Equal(t, 950.0, Sum(lines, func(l line) float64 { return l.price * float64(l.qty) }))

	byName := KeyBy(lines, func(l line) string { return l.name })
	assert.Equal(t, 150.0, byName["dosa"].price)
}

func TestSortBy_Stable(t *testing.T) {
	lines := []line{{"a", 1, 1}, {"b", 2, 1}, {"c", 1, 1}}
	SortBy(lines, func(x, y line) bool { return x.price > y.price })
	assert.Equal(t, []string{"b", "a", "c"}, Map(lines, func(l line) string { return l.name }))
}

func TestFilter_NoneMatch(t *testing.T) {
	assert.Empty(t, Filter([]int{1, 2}, func(int) bool { return false }))
}
