package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoCodeAlone/evosim/pkg/worldtypes"
)

func testSpecies(code string) *worldtypes.Species {
	return &worldtypes.Species{
		LineageCode:  code,
		TrophicLevel: 1.0,
		Status:       worldtypes.StatusAlive,
	}
}

func TestRepositoryUpsertAndGet(t *testing.T) {
	repo := NewSpeciesRepository()
	require.NoError(t, repo.Upsert(testSpecies("A1")))

	sp, ok := repo.Get("A1")
	require.True(t, ok)
	assert.Equal(t, "A1", sp.LineageCode)
}

func TestRepositoryTransactionRollsBackOnError(t *testing.T) {
	repo := NewSpeciesRepository()
	require.NoError(t, repo.Upsert(testSpecies("A1")))

	err := repo.Transaction(func(staging *SpeciesRepository) error {
		require.NoError(t, staging.Upsert(testSpecies("A2")))
		return assertErr
	})
	assert.Error(t, err)

	_, ok := repo.Get("A2")
	assert.False(t, ok, "staged change must not leak out on error")
	_, ok = repo.Get("A1")
	assert.True(t, ok)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestSnapshotRoundTripsWithMissingOptionalFields(t *testing.T) {
	snap := &Snapshot{WorldWidth: 10, WorldHeight: 5, Seed: 42, TurnIndex: 3}
	data, err := snap.Marshal()
	require.NoError(t, err)

	loaded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, loaded.SchemaVersion)
	assert.Equal(t, 10, loaded.WorldWidth)
	assert.Nil(t, loaded.MantleState)
}

func TestLoadSnapshotSkipsInvalidRecords(t *testing.T) {
	repo := NewSpeciesRepository()
	errs := repo.LoadSnapshot([]worldtypes.Species{
		{LineageCode: "A1", TrophicLevel: 1.0, Status: worldtypes.StatusAlive},
		{LineageCode: "", TrophicLevel: 1.0},
	})
	assert.Len(t, errs, 1)
	assert.Len(t, repo.All(), 1)
}
