package collector

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCollectorRecordAndSlice(t *testing.T) {
	t.Parallel()

	col := New(false, nil)
	require.Equal(t, 0, col.Count())
	require.Nil(t, col.All())

	col.Record("A", time.Millisecond)
	col.Record("B", 2*time.Millisecond)
	col.Record("C", 3*time.Millisecond)
	require.Equal(t, 3, col.Count())

	since := col.Since(1)
	require.Len(t, since, 2)
	require.Equal(t, "B", since[0].SQL)
	require.Equal(t, "C", since[1].SQL)

	require.Nil(t, col.Since(3))
	require.Len(t, col.Since(-1), 3)
}

func TestCollectorSnapshotIsolation(t *testing.T) {
	t.Parallel()

	col := New(false, nil)
	col.Record("A", time.Millisecond)

	snapshot := col.All()
	col.Record("B", time.Millisecond)

	// a snapshot never observes later records
	require.Len(t, snapshot, 1)
	require.Len(t, col.All(), 2)
}

func TestCollectorNoStacksByDefault(t *testing.T) {
	t.Parallel()

	col := New(false, nil)
	col.Record("A", time.Millisecond)
	require.Nil(t, col.All()[0].Stack)
}

func TestCollectorCapturesStacks(t *testing.T) {
	t.Parallel()

	col := New(true, nil)
	col.Record("A", time.Millisecond)

	stack := col.All()[0].Stack
	require.NotEmpty(t, stack)
	for _, f := range stack {
		require.NotEqual(t, selfFile, f.File)
	}

	// deepest frame last: the test function is nearest to the capture
	// point that survives filtering
	last := stack[len(stack)-1]
	require.Contains(t, last.Function, "TestCollectorCapturesStacks")
}

func TestCollectorStackRoots(t *testing.T) {
	t.Parallel()

	col := New(true, []string{"/no/such/prefix"})
	col.Record("A", time.Millisecond)
	require.Empty(t, col.All()[0].Stack)
}

func TestCollectorConcurrentRecord(t *testing.T) {
	t.Parallel()

	col := New(false, nil)

	const workers, perWorker = 8, 100
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				col.Record("SELECT 1", time.Microsecond)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, workers*perWorker, col.Count())
	require.Len(t, col.All(), workers*perWorker)
}
