package palette

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lifeweave/lifeweave/pkg/core"
)

func TestColorForPerson_Deterministic(t *testing.T) {
	a := ColorForPerson("alice", 0)
	b := ColorForPerson("alice", 0)
	assert.Equal(t, a, b)
}

func TestColorForPerson_DistinctLowLanes(t *testing.T) {
	seen := make(map[core.Color]bool)
	for i := 0; i < 10; i++ {
		c := ColorForPerson("anyone", i)
		assert.False(t, seen[c], "lane %d reuses a color", i)
		seen[c] = true
	}
}

func TestColorForPerson_OverflowLanesHashByID(t *testing.T) {
	a := ColorForPerson("alice", 42)
	b := ColorForPerson("alice", 99)
	assert.Equal(t, a, b, "beyond the fixed palette, color depends on the person only")

	c := ColorForPerson("bob", 42)
	assert.NotEqual(t, a, c)
}
