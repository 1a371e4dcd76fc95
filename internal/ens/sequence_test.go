package ens

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequenceSource_Next(t *testing.T) {
	seq := NewSequenceSource()

	assert.Equal(t, uint64(1), seq.Next("wallet"))
	assert.Equal(t, uint64(2), seq.Next("wallet"))
	assert.Equal(t, uint64(3), seq.Next("wallet"))

	// Fields are independent
	assert.Equal(t, uint64(1), seq.Next("recipient"))
	assert.Equal(t, uint64(4), seq.Next("wallet"))
}

func TestSequenceSource_IsCurrent(t *testing.T) {
	seq := NewSequenceSource()

	first := seq.Next("wallet")
	assert.True(t, seq.IsCurrent("wallet", first))

	// A newer request supersedes the first
	second := seq.Next("wallet")
	assert.False(t, seq.IsCurrent("wallet", first))
	assert.True(t, seq.IsCurrent("wallet", second))

	// A sequence for another field never matches
	assert.False(t, seq.IsCurrent("recipient", second))
}

func TestSequenceSource_Latest(t *testing.T) {
	seq := NewSequenceSource()

	assert.Equal(t, uint64(0), seq.Latest("wallet"))
	seq.Next("wallet")
	seq.Next("wallet")
	assert.Equal(t, uint64(2), seq.Latest("wallet"))
}

func TestSequenceSource_Concurrent(t *testing.T) {
	seq := NewSequenceSource()

	const workers = 50
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			seq.Next("wallet")
		}()
	}
	wg.Wait()

	// Every issued number is unique and the count is exact
	assert.Equal(t, uint64(workers), seq.Latest("wallet"))
}
