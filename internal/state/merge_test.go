package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_PartitionsByScope(t *testing.T) {
	delta := map[string]any{
		"app:org":      "acme",
		"user:plan":    "pro",
		"city":         "NYC",
		"temp:scratch": 1,
	}

	split := Split(delta)

	assert.Equal(t, map[string]any{"org": "acme"}, split.App)
	assert.Equal(t, map[string]any{"plan": "pro"}, split.User)
	assert.Equal(t, map[string]any{"city": "NYC"}, split.Session)
}

func TestSplit_DropsTemporaryKeys(t *testing.T) {
	split := Split(map[string]any{"temp:x": 1, "foo": 2})

	assert.Nil(t, split.App)
	assert.Nil(t, split.User)
	assert.Equal(t, map[string]any{"foo": 2}, split.Session)
}

func TestSplit_DropsBarePrefixes(t *testing.T) {
	// A bare prefix reduces to an empty physical key and is not storable.
	split := Split(map[string]any{"app:": 1, "user:": 2, "temp:": 3})
	assert.True(t, split.Empty())
}

func TestSplit_TempOnlyDeltaIsEmpty(t *testing.T) {
	split := Split(map[string]any{"temp:a": 1, "temp:b": 2})
	assert.True(t, split.Empty())
}

func TestSplit_CarriesTombstones(t *testing.T) {
	split := Split(map[string]any{"user:plan": Tombstone, "city": Tombstone})

	require.Contains(t, split.User, "plan")
	assert.True(t, IsTombstone(split.User["plan"]))
	require.Contains(t, split.Session, "city")
	assert.True(t, IsTombstone(split.Session["city"]))
}

func TestSplit_DoesNotMutateInput(t *testing.T) {
	delta := map[string]any{"app:org": "acme", "temp:x": 1}
	Split(delta)
	assert.Equal(t, map[string]any{"app:org": "acme", "temp:x": 1}, delta)
}

func TestMerge_PrefixesPreserveScope(t *testing.T) {
	merged := Merge(
		map[string]any{"org": "acme"},
		map[string]any{"plan": "pro"},
		map[string]any{"city": "NYC"},
	)

	assert.Equal(t, map[string]any{
		"app:org":   "acme",
		"user:plan": "pro",
		"city":      "NYC",
	}, merged)
}

func TestMerge_MissingDocumentsAreEmpty(t *testing.T) {
	// A scope document that does not exist yet merges as an empty map.
	assert.Equal(t, map[string]any{}, Merge(nil, nil, nil))
	assert.Equal(t, map[string]any{"user:plan": "pro"}, Merge(nil, map[string]any{"plan": "pro"}, nil))
}

func TestMerge_NoCrossScopeShadowing(t *testing.T) {
	// The same physical key in every scope yields three distinct merged keys.
	merged := Merge(
		map[string]any{"theme": "corp"},
		map[string]any{"theme": "dark"},
		map[string]any{"theme": "light"},
	)

	assert.Equal(t, map[string]any{
		"app:theme":  "corp",
		"user:theme": "dark",
		"theme":      "light",
	}, merged)
}

func TestMerge_Idempotent(t *testing.T) {
	app := map[string]any{"org": "acme"}
	user := map[string]any{"plan": "pro"}
	session := map[string]any{"city": "NYC"}

	first := Merge(app, user, session)
	second := Merge(app, user, session)
	assert.Equal(t, first, second)
}

func TestMergeSplit_RoundTrip(t *testing.T) {
	app := map[string]any{"org": "acme", "tier": "gold"}
	user := map[string]any{"plan": "pro"}
	session := map[string]any{"city": "NYC", "step": 3}

	split := Split(Merge(app, user, session))

	assert.Equal(t, app, split.App)
	assert.Equal(t, user, split.User)
	assert.Equal(t, session, split.Session)
}
