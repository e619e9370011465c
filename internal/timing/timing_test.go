package timing

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMean(t *testing.T) {
	var m Mean
	require.Zero(t, m.Value())

	var wg sync.WaitGroup
	for i := 1; i <= 4; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Add(d)
		}(time.Duration(i) * time.Second)
	}
	wg.Wait()
	require.Equal(t, 2500*time.Millisecond, m.Value())
}

func TestPairsOrder(t *testing.T) {
	md := Metadata{RunID: "r", ReferenceCount: 2, QueryParse: 1500 * time.Millisecond}
	pairs := md.Pairs()
	require.Equal(t, "run_id", pairs[0][0])
	require.Equal(t, "reference_count", pairs[1][0])
	require.Equal(t, 2, pairs[1][1])
	require.Equal(t, "query_parse_time", pairs[7][0])
	require.Equal(t, 1.5, pairs[7][1])
	require.Len(t, pairs, 12)
}

func TestStage(t *testing.T) {
	s := Start()
	require.GreaterOrEqual(t, s.Stop(), time.Duration(0))
}
