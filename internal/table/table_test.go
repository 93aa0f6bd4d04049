package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/table"
	"github.com/kristofer/loxvm/internal/value"
)

func key(s string) *object.ObjString {
	return object.NewString(s)
}

func TestSetGetRoundTrip(t *testing.T) {
	tb := table.New()

	isNew := tb.Set(key("x"), value.Number(1))
	assert.True(t, isNew)

	v, ok := tb.Get(key("x"))
	require.True(t, ok)
	assert.Equal(t, float64(1), v.AsNumber())
}

func TestSetOverwriteReportsNotNew(t *testing.T) {
	tb := table.New()
	k := key("counter")

	assert.True(t, tb.Set(k, value.Number(1)))
	assert.False(t, tb.Set(k, value.Number(2)))

	v, ok := tb.Get(k)
	require.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())
}

func TestGetMissingKey(t *testing.T) {
	tb := table.New()
	_, ok := tb.Get(key("nope"))
	assert.False(t, ok)
}

func TestDeleteThenProbeStillFindsLaterEntries(t *testing.T) {
	tb := table.New()
	a, b := key("a"), key("b")
	tb.Set(a, value.Number(1))
	tb.Set(b, value.Number(2))

	require.True(t, tb.Delete(a))

	// b must still be reachable: deleting a must leave a tombstone, not
	// truncate the probe sequence that put b past a's slot.
	v, ok := tb.Get(b)
	require.True(t, ok)
	assert.Equal(t, float64(2), v.AsNumber())

	_, ok = tb.Get(a)
	assert.False(t, ok)
}

func TestDeleteUnknownKeyReportsFalse(t *testing.T) {
	tb := table.New()
	assert.False(t, tb.Delete(key("ghost")))
}

func TestGrowPreservesAllEntries(t *testing.T) {
	tb := table.New()
	const n = 64
	keys := make([]*object.ObjString, n)
	for i := 0; i < n; i++ {
		keys[i] = key(string(rune('a' + i%26)) + string(rune('0'+i/26)))
		tb.Set(keys[i], value.Number(float64(i)))
	}
	for i, k := range keys {
		v, ok := tb.Get(k)
		require.True(t, ok, "key %d missing after growth", i)
		assert.Equal(t, float64(i), v.AsNumber())
	}
	assert.Equal(t, n, tb.Len())
}

func TestFindStringMatchesByContentAndHash(t *testing.T) {
	tb := table.New()
	k := key("hello")
	tb.Set(k, value.Bool(true))

	found, ok := tb.FindString("hello", object.HashString("hello"))
	require.True(t, ok)
	assert.Same(t, k, found)

	_, ok = tb.FindString("goodbye", object.HashString("goodbye"))
	assert.False(t, ok)
}

func TestRemoveWhiteDropsUnmarkedKeys(t *testing.T) {
	tb := table.New()
	kept, dropped := key("kept"), key("dropped")
	tb.Set(kept, value.Bool(true))
	tb.Set(dropped, value.Bool(true))

	tb.RemoveWhite(func(k table.StringKey) bool {
		return k == table.StringKey(kept)
	})

	_, ok := tb.Get(kept)
	assert.True(t, ok)
	_, ok = tb.Get(dropped)
	assert.False(t, ok)
}

func TestForEachVisitsOnlyLiveEntries(t *testing.T) {
	tb := table.New()
	a, b := key("a"), key("b")
	tb.Set(a, value.Number(1))
	tb.Set(b, value.Number(2))
	tb.Delete(a)

	seen := map[string]float64{}
	tb.ForEach(func(k table.StringKey, v value.Value) {
		seen[k.Bytes()] = v.AsNumber()
	})

	assert.Equal(t, map[string]float64{"b": 2}, seen)
}
