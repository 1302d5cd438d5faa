package middleware

import (
	"testing"

	"AlgoSensei/internal/domain/models"
	"AlgoSensei/pkg/metrics"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func set(seq uint64) models.SnapshotSet {
	return models.SnapshotSet{
		Sequence: seq,
		Snapshots: []models.MarketSnapshot{{
			Symbol: "BTCUSDT",
			Price:  decimal.NewFromInt(int64(seq)),
		}},
	}
}

func TestSnapshotFanout_DeliversToAll(t *testing.T) {
	f := NewSnapshotFanout(metrics.Nop{})
	a := f.Subscribe()
	b := f.Subscribe()
	defer a.Close()
	defer b.Close()

	require.NoError(t, f.Publish(set(1)))

	assert.Equal(t, uint64(1), (<-a.C).Sequence)
	assert.Equal(t, uint64(1), (<-b.C).Sequence)
}

func TestSnapshotFanout_SlowSubscriberKeepsNewest(t *testing.T) {
	f := NewSnapshotFanout(metrics.Nop{}, WithBufferSize(2))
	s := f.Subscribe()
	defer s.Close()

	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, f.Publish(set(i)))
	}

	assert.Equal(t, uint64(4), (<-s.C).Sequence)
	assert.Equal(t, uint64(5), (<-s.C).Sequence)
}

func TestSnapshotFanout_RejectsInvalid(t *testing.T) {
	f := NewSnapshotFanout(metrics.Nop{})
	assert.Error(t, f.Publish(models.SnapshotSet{}))

	bad := set(1)
	bad.Snapshots[0].Symbol = ""
	assert.Error(t, f.Publish(bad))
}

func TestSnapshotFanout_CloseAndStop(t *testing.T) {
	f := NewSnapshotFanout(metrics.Nop{})
	s := f.Subscribe()
	s.Close()
	s.Close()

	_, open := <-s.C
	assert.False(t, open)
	assert.Equal(t, 0, f.Subscribers())

	other := f.Subscribe()
	f.Stop()
	_, open = <-other.C
	assert.False(t, open)

	late := f.Subscribe()
	_, open = <-late.C
	assert.False(t, open)
	late.Close()
}
