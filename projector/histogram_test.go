package projector

import (
	"testing"

	"github.com/sat20-labs/projector/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistogramBands(t *testing.T) {
	m, _, rates := buildFixture(t, []common.MempoolEntry{
		entry(1, 100, 400),   // 1 sat/vB  -> band <=2
		entry(2, 200, 400),   // 2         -> band <=2 (inclusive)
		entry(3, 300, 400),   // 3         -> band <=4
		entry(4, 1500, 400),  // 15        -> band <=20
		entry(5, 9000, 400),  // 90        -> band <=100
		entry(6, 20000, 400), // 200       -> open-ended band
	})

	h := AggregateHistogram(m.All(), rates)
	assert.Equal(t, 6, h.Total)
	require.Len(t, h.Bands, 7)

	counts := make(map[float64]int)
	for _, band := range h.Bands {
		counts[band.UpTo] = band.Count
	}
	assert.Equal(t, 2, counts[2])
	assert.Equal(t, 1, counts[4])
	assert.Equal(t, 0, counts[10])
	assert.Equal(t, 1, counts[20])
	assert.Equal(t, 0, counts[50])
	assert.Equal(t, 1, counts[100])
	assert.Equal(t, 1, counts[0]) // open-ended top band
}

func TestHistogramUsesEffectiveRate(t *testing.T) {
	// A weak parent bucketed by its own rate, its child by the package
	// rate that would actually mine it.
	m, _, rates := buildFixture(t, []common.MempoolEntry{
		entry(1, 100, 400),     // 1 sat/vB
		entry(2, 5900, 400, 1), // package: 6000 sat / 200 vB = 30
	})
	h := AggregateHistogram(m.All(), rates)

	counts := make(map[float64]int)
	for _, band := range h.Bands {
		counts[band.UpTo] = band.Count
	}
	assert.Equal(t, 1, counts[2])
	assert.Equal(t, 1, counts[50])
	assert.Equal(t, 2, h.Total)
}

func TestHistogramEmpty(t *testing.T) {
	g := NewRateCalc(NewMirror(NewUidAllocator(), 4000000), nil)
	h := AggregateHistogram(nil, g)
	assert.Equal(t, 0, h.Total)
	assert.Len(t, h.Bands, 7)
}
