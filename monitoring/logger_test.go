package monitoring

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logger()
	defer SetLogger(original)

	var got []string
	SetLogger(func(format string, v ...any) {
		got = append(got, fmt.Sprintf(format, v...))
	})
	Logf("packet %d", 7)
	assert.Equal(t, []string{"packet 7"}, got)

	SetLogger(nil)
	assert.NotPanics(t, func() { Logf("muted") })
	assert.Len(t, got, 1)
}

func TestSetDebug(t *testing.T) {
	original := Logger()
	defer SetLogger(original)
	defer SetDebug(false)

	calls := 0
	SetLogger(func(string, ...any) { calls++ })

	SetDebug(false)
	Debugf("quiet")
	assert.Zero(t, calls)

	SetDebug(true)
	Debugf("loud")
	assert.Equal(t, 1, calls)
}

// Run with -race: swapping the logger while another goroutine logs must
// not race.
func TestSetLogger_Concurrent(t *testing.T) {
	original := Logger()
	defer SetLogger(original)
	SetLogger(nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			Debugf("rx %d", i)
			Logf("rx %d", i)
		}
	}()
	for i := 0; i < 1000; i++ {
		SetLogger(nil)
		SetDebug(i%2 == 0)
	}
	wg.Wait()
	SetDebug(false)
}
