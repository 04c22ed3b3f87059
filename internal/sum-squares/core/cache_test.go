package core

import (
	"math/big"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfeasibilityCache(t *testing.T) {
	c := NewInfeasibilityCache()
	assert.False(t, c.Contains(big.NewInt(21)))
	assert.Equal(t, 0, c.Len())

	assert.True(t, c.Add(big.NewInt(21)))
	assert.False(t, c.Add(big.NewInt(21)), "second insert is a no-op")
	assert.True(t, c.Contains(big.NewInt(21)))
	assert.False(t, c.Contains(big.NewInt(22)))
	assert.Equal(t, 1, c.Len())
}

func TestInfeasibilityCacheNil(t *testing.T) {
	var c *InfeasibilityCache
	assert.False(t, c.Add(big.NewInt(21)))
	assert.False(t, c.Contains(big.NewInt(21)))
	assert.Equal(t, 0, c.Len())
}

func TestInfeasibilityCacheConcurrentInsert(t *testing.T) {
	c := NewInfeasibilityCache()
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := int64(0); n < 100; n++ {
				c.Add(big.NewInt(n))
				c.Contains(big.NewInt(n))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 100, c.Len())
}
