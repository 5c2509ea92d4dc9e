package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
)

// The advertised split: a 1000-unit event (100000 cents) over a full
// five-level chain pays [20,10,10,5,5] units, 50 units (5%) in total.
func TestLevelCutAdvertisedSplit(t *testing.T) {
	amount := int64(100000)
	want := []int64{2000, 1000, 1000, 500, 500}

	var total int64
	for i, rate := range domain.CommissionRatesBps {
		cut := LevelCut(amount, rate)
		assert.Equal(t, want[i], cut, "level %d", i+1)
		total += cut
	}
	require.Equal(t, int64(5000), total)
}

func TestLevelCutFloorsSubCentRemainder(t *testing.T) {
	// 0.5% of 333 cents is 1.665 cents; integer math pays 1 and keeps the
	// remainder undistributed.
	assert.Equal(t, int64(1), LevelCut(333, 50))
	// Small amounts round to zero and produce no commission row at all.
	assert.Equal(t, int64(0), LevelCut(100, 50))
}

func TestLevelCutNeverNegativeForPositiveInput(t *testing.T) {
	for _, rate := range domain.CommissionRatesBps {
		for _, amount := range []int64{1, 99, 100000, 123457} {
			assert.GreaterOrEqual(t, LevelCut(amount, rate), int64(0))
		}
	}
}
