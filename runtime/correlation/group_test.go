package correlation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGroup_MarkDone(t *testing.T) {
	var testCases = []struct {
		description string
		results     []error
		expectDone  []bool
		expectFail  bool
	}{
		{
			description: "all members succeed",
			results:     []error{nil, nil, nil},
			expectDone:  []bool{false, false, true},
		},
		{
			description: "waits for every member despite failure",
			results:     []error{errors.New("x"), nil, nil},
			expectDone:  []bool{false, false, true},
			expectFail:  true,
		},
		{
			description: "last member fails",
			results:     []error{nil, errors.New("x")},
			expectDone:  []bool{false, true},
			expectFail:  true,
		},
	}
	for _, tc := range testCases {
		g := NewGroup[string](tc.description, len(tc.results))
		for i, err := range tc.results {
			assert.Equal(t, tc.expectDone[i], g.MarkDone(i, "out", err), tc.description)
		}
		assert.True(t, g.Done(), tc.description)
		assert.Equal(t, tc.expectFail, g.Failed(), tc.description)
	}
}

func TestGroup_OrderedOutputs(t *testing.T) {
	g := NewGroup[int]("g", 5)
	var wg sync.WaitGroup
	for i := 4; i >= 0; i-- {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			time.Sleep(time.Duration(5-i) * time.Millisecond)
			g.MarkDone(i, i*10, nil)
		}(i)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, g.Wait(ctx))
	wg.Wait()
	assert.Equal(t, []int{0, 10, 20, 30, 40}, g.Outputs())
	assert.Empty(t, g.Errors())
}

func TestGroup_IgnoresRepeatedReport(t *testing.T) {
	g := NewGroup[string]("g", 2)
	assert.False(t, g.MarkDone(0, "a", nil))
	assert.False(t, g.MarkDone(0, "b", errors.New("late")))
	assert.False(t, g.MarkDone(7, "c", nil))
	assert.True(t, g.MarkDone(1, "d", nil))
	assert.Equal(t, []string{"a", "d"}, g.Outputs())
	assert.False(t, g.Failed())
}

func TestGroup_Empty(t *testing.T) {
	g := NewGroup[string]("g", 0)
	assert.True(t, g.Done())
	assert.NoError(t, g.Wait(context.Background()))
	assert.Empty(t, g.Outputs())
}

func TestGroup_WaitCanceled(t *testing.T) {
	g := NewGroup[string]("g", 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, g.Wait(ctx), context.Canceled)
}

func TestStore(t *testing.T) {
	s := NewStore[string]()
	g1 := NewGroup[string]("step-1", 1)
	got, created := s.Create(g1)
	assert.True(t, created)
	assert.Same(t, g1, got)

	got, created = s.Create(NewGroup[string]("step-1", 3))
	assert.False(t, created)
	assert.Same(t, g1, got)

	s.Delete("step-1")
	g2 := NewGroup[string]("step-1", 2)
	got, created = s.Create(g2)
	assert.True(t, created)
	assert.Same(t, g2, got)
}
