package submit

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osrsloottracker.dev/plugin-core/internal/model"
)

func TestRecentDropsCapEviction(t *testing.T) {
	r := NewRecentDrops(3)

	for i := 0; i < 5; i++ {
		r.Append(model.RecentDropRecord{ItemName: "item-" + strconv.Itoa(i)})
	}

	records := r.List()
	require.Len(t, records, 3)
	assert.Equal(t, "item-2", records[0].ItemName)
	assert.Equal(t, "item-4", records[2].ItemName)
}

func TestRecentDropsBatchAppendBeyondCap(t *testing.T) {
	r := NewRecentDrops(2)

	r.Append(
		model.RecentDropRecord{ItemName: "a"},
		model.RecentDropRecord{ItemName: "b"},
		model.RecentDropRecord{ItemName: "c"},
	)

	records := r.List()
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[0].ItemName)
	assert.Equal(t, "c", records[1].ItemName)
}

func TestRecentDropsListIsACopy(t *testing.T) {
	r := NewRecentDrops(5)
	r.Append(model.RecentDropRecord{ItemName: "a"})

	records := r.List()
	records[0].ItemName = "mutated"

	assert.Equal(t, "a", r.List()[0].ItemName)
}
