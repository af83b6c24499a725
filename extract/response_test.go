package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crosstab/crosstab/demomap"
	"github.com/crosstab/crosstab/errors"
)

func TestRoundPct(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		out  float64
	}{
		{"exact", 64.5, 64.5},
		{"half rounds away from zero", 100.005, 100.01},
		{"third decimal down", 33.332, 33.33},
		{"clamped above", 123456.7, 999.99},
		{"clamped below", -123456.7, -999.99},
		{"negative keeps sign", -41.27, -41.27},
		{"negative half rounds away from zero", -0.455, -0.46},
		{"zero", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.out, roundPct(tt.in), 1e-9)
		})
	}
}

func TestBindColumns(t *testing.T) {
	ctx := context.Background()

	t.Run("binds Total and mapped demographics with percent companions", func(t *testing.T) {
		s := sheetOf(t,
			[]string{"Return to Index", "Total", "col_2", "Male", "col_4", "18-24", "col_6"},
			[]string{"Table 1"},
		)
		e := New(s, "AA-042024", newMemSink(), demomap.New(), nil)
		require.NoError(t, e.bindColumns(ctx))
		require.Len(t, e.cols, 3)

		total := e.cols[0]
		assert.Equal(t, "Total", total.label)
		assert.Nil(t, total.demoID)
		assert.Equal(t, 1, total.countCol)
		assert.Equal(t, 2, total.pctCol)

		male := e.cols[1]
		assert.Equal(t, "Male", male.label)
		require.NotNil(t, male.demoID)
		assert.Equal(t, 3, male.countCol)
		assert.Equal(t, 4, male.pctCol)
	})

	t.Run("counts-only layout binds without percent columns", func(t *testing.T) {
		s := sheetOf(t,
			[]string{"Return to Index", "Total", "Male", "Female"},
			[]string{"Table 1"},
		)
		e := New(s, "AA-042024", newMemSink(), demomap.New(), nil)
		require.NoError(t, e.bindColumns(ctx))
		require.Len(t, e.cols, 3)
		for _, c := range e.cols {
			assert.Equal(t, -1, c.pctCol)
		}
	})

	t.Run("unresolved header is skipped with a diagnostic", func(t *testing.T) {
		s := sheetOf(t,
			[]string{"Return to Index", "Total", "Outer Hebrides"},
			[]string{"Table 1"},
		)
		e := New(s, "AA-042024", newMemSink(), demomap.New(), nil)
		require.NoError(t, e.bindColumns(ctx))
		require.Len(t, e.cols, 1)
		require.Len(t, e.rec.diags, 1)
		assert.Equal(t, ReasonUnresolvedColumn, e.rec.diags[0].Reason)
		assert.Contains(t, e.rec.diags[0].Detail, "Outer Hebrides")
		assert.ErrorIs(t, e.rec.diags[0].Err, errors.ErrUnresolvedColumn)
	})

	t.Run("missing Total column is structural", func(t *testing.T) {
		s := sheetOf(t,
			[]string{"Return to Index", "Male", "Female"},
			[]string{"Table 1"},
		)
		e := New(s, "AA-042024", newMemSink(), demomap.New(), nil)
		err := e.bindColumns(ctx)
		require.Error(t, err)
	})
}
