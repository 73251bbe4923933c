package tables

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwieler/bili-calculator/internal/model"
)

func TestLoadAllTables(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)

	for _, kind := range model.AllTableKinds() {
		table, err := store.Table(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, table.Kind)
		assert.Equal(t, ExpectedUnits, table.Units)
		assert.NotEmpty(t, table.Title)
		assert.NotEmpty(t, table.Source)
		assert.NotEmpty(t, table.Buckets)
	}

	assert.Len(t, store.All(), 4)
}

func TestLoadUnknownKind(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)

	_, err = store.Table(model.TableKind("nope"))
	require.Error(t, err)
}

func TestBucketShapes(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)

	t.Run("no-risk phototherapy covers 35 through 40", func(t *testing.T) {
		table, err := store.Table(model.PhototherapyNoRisk)
		require.NoError(t, err)
		for weeks := 35; weeks <= 40; weeks++ {
			assert.Contains(t, table.Buckets, weeks)
		}
	})

	t.Run("other charts cover 35 through 38", func(t *testing.T) {
		for _, kind := range []model.TableKind{model.PhototherapyWithRisk, model.ExchangeNoRisk, model.ExchangeWithRisk} {
			table, err := store.Table(kind)
			require.NoError(t, err)
			for weeks := 35; weeks <= 38; weeks++ {
				assert.Contains(t, table.Buckets, weeks, "kind %s", kind)
			}
			assert.NotContains(t, table.Buckets, 39, "kind %s groups >=38", kind)
		}
	})
}

// Every curve must be complete through its plateau and the risk-adjusted
// variant must sit strictly below the standard one wherever both are
// defined.
func TestCurveInvariants(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)

	noRisk, err := store.Table(model.PhototherapyNoRisk)
	require.NoError(t, err)
	withRisk, err := store.Table(model.PhototherapyWithRisk)
	require.NoError(t, err)

	for weeks, adjusted := range withRisk.Buckets {
		standard, ok := noRisk.Buckets[weeks]
		require.True(t, ok, "no standard bucket at %d weeks", weeks)

		for hour := 1; hour <= adjusted.PlateauHour; hour++ {
			adj, ok := adjusted.Values[hour]
			require.True(t, ok, "bucket %d missing hour %d", weeks, hour)
			std, ok := standard.Values[hour]
			require.True(t, ok)
			assert.Less(t, adj, std, "risk curve must be below standard at %d weeks hour %d", weeks, hour)
		}
		assert.Less(t, adjusted.PlateauValue, standard.PlateauValue)
	}
}

func TestExchangeAboveGuidelinePhototherapy(t *testing.T) {
	store, err := Load()
	require.NoError(t, err)

	photo, err := store.Table(model.PhototherapyNoRisk)
	require.NoError(t, err)
	exchange, err := store.Table(model.ExchangeNoRisk)
	require.NoError(t, err)

	for weeks, eb := range exchange.Buckets {
		pb := photo.Buckets[weeks]
		require.NotNil(t, pb)
		for hour := 1; hour <= eb.PlateauHour && hour <= pb.PlateauHour; hour++ {
			assert.Greater(t, eb.Values[hour], pb.Values[hour],
				"exchange must exceed phototherapy at %d weeks hour %d", weeks, hour)
		}
	}
}

func TestValidateRejectsBrokenTables(t *testing.T) {
	good := func() *model.ReferenceTable {
		return &model.ReferenceTable{
			Kind:  model.PhototherapyNoRisk,
			Units: ExpectedUnits,
			Buckets: map[int]*model.GABucket{
				38: {
					PlateauHour:  3,
					PlateauValue: 12,
					Values:       map[int]float64{1: 10, 2: 11, 3: 12},
				},
			},
		}
	}

	t.Run("valid table passes", func(t *testing.T) {
		require.NoError(t, Validate(good()))
	})

	t.Run("wrong units", func(t *testing.T) {
		table := good()
		table.Units = "umol/L"
		err := Validate(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "units")
	})

	t.Run("no buckets", func(t *testing.T) {
		table := good()
		table.Buckets = nil
		require.Error(t, Validate(table))
	})

	t.Run("missing hour below plateau", func(t *testing.T) {
		table := good()
		delete(table.Buckets[38].Values, 2)
		err := Validate(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing value for hour 2")
	})

	t.Run("non-positive plateau hour", func(t *testing.T) {
		table := good()
		table.Buckets[38].PlateauHour = 0
		err := Validate(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "plateauHour")
	})

	t.Run("non-positive plateau value", func(t *testing.T) {
		table := good()
		table.Buckets[38].PlateauValue = 0
		err := Validate(table)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "plateauValue")
	})
}

func TestKeyRange(t *testing.T) {
	table := &model.ReferenceTable{
		Buckets: map[int]*model.GABucket{35: {}, 38: {}, 40: {}},
	}
	minKey, maxKey, ok := table.KeyRange()
	require.True(t, ok)
	assert.Equal(t, 35, minKey)
	assert.Equal(t, 40, maxKey)

	empty := &model.ReferenceTable{}
	_, _, ok = empty.KeyRange()
	assert.False(t, ok)
}
