package concurrent

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapStoreLoadDelete(t *testing.T) {
	t.Parallel()

	m := NewMap[string, int]()
	m.Store("a", 1)
	m.Store("b", 2)

	v, ok := m.Load("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 2, m.Length())

	m.Delete("a")
	_, ok = m.Load("a")
	assert.False(t, ok)
	assert.Equal(t, 1, m.Length())
}

func TestMapRangeStopsEarly(t *testing.T) {
	t.Parallel()

	m := NewMap[int, int]()
	for i := range 10 {
		m.Store(i, i)
	}

	seen := 0
	m.Range(func(int, int) bool {
		seen++
		return seen < 3
	})
	assert.Equal(t, 3, seen)
}

func TestMapConcurrentAccess(t *testing.T) {
	t.Parallel()

	m := NewMap[int, int]()
	var wg sync.WaitGroup
	for i := range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Store(i, i)
			m.Load(i)
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, m.Length())
}
