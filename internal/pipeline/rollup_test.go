package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bdc/internal/frame"
)

func TestTruncateGeoid(t *testing.T) {
	g := "010010201001001"
	assert.Equal(t, "01", TruncateGeoid(g, LevelState))
	assert.Equal(t, "01001", TruncateGeoid(g, LevelCounty))
	assert.Equal(t, "01001020100", TruncateGeoid(g, LevelTract))
	assert.Equal(t, "010010201001", TruncateGeoid(g, LevelBlockGroup))
	assert.Equal(t, g, TruncateGeoid(g, LevelBlock))

	// a numeric decode of a 01-09 state drops one leading zero
	assert.Equal(t, "01001", TruncateGeoid("10010201001001", LevelCounty))
}

func TestTruncateGeoidIdempotent(t *testing.T) {
	once := TruncateGeoid("010010201001001", LevelCounty)
	assert.Equal(t, once, TruncateGeoid(once, LevelCounty))

	tract := TruncateGeoid("010010201001001", LevelTract)
	assert.Equal(t, tract, TruncateGeoid(tract, LevelTract))
}

// aggregated builds a small per-state count table in the shape Aggregate
// produces under the default grouping.
func aggregated(rows ...[3]string) *frame.Frame {
	f := frame.New(ColProviderID, ColBlockGeoid, ColUniqueCount)
	for _, r := range rows {
		f.AppendRow(frame.Str(r[0]), frame.Str(r[1]), frame.Num(float64(len(r[2]))))
	}
	return f
}

func TestRollupPreSumsPerProvider(t *testing.T) {
	f := frame.New(ColProviderID, ColBlockGeoid, ColUniqueCount)
	f.AppendRow(frame.Str("111"), frame.Str("010010201001001"), frame.Num(2))
	f.AppendRow(frame.Str("111"), frame.Str("010010201001002"), frame.Num(3))
	f.AppendRow(frame.Str("222"), frame.Str("010010201001001"), frame.Num(1))

	out := Rollup(f, LevelCounty, false, false)
	got := counts(out, ColBlockGeoid, ColProviderID)
	assert.Equal(t, map[string]string{
		"01001|111|": "5",
		"01001|222|": "1",
	}, got)
}

func TestRollupSpeedModeUsesCompositeKey(t *testing.T) {
	f := frame.New(ColProviderID, ColBlockGeoid, ColDownloadMax, ColUniqueCount)
	f.AppendRow(frame.Str("111"), frame.Str("010010201001001"), frame.Num(940), frame.Num(2))
	f.AppendRow(frame.Str("111"), frame.Str("010010201001002"), frame.Num(940), frame.Num(1))
	f.AppendRow(frame.Str("111"), frame.Str("010010201001002"), frame.Num(100), frame.Num(4))

	out := Rollup(f, LevelCounty, true, false)
	require.True(t, out.HasColumns(ColProviderSpd))
	got := counts(out, ColBlockGeoid, ColProviderSpd)
	assert.Equal(t, map[string]string{
		"01001|111_940|": "3",
		"01001|111_100|": "4",
	}, got)
}

func TestRollupTechnologyModeHasNoPivotKey(t *testing.T) {
	f := frame.New(ColBlockGeoid, ColUniqueCount)
	f.AppendRow(frame.Str("010010201001001"), frame.Num(2))
	f.AppendRow(frame.Str("010010201001002"), frame.Num(5))

	out := Rollup(f, LevelCounty, false, true)
	assert.Equal(t, []string{ColBlockGeoid, ColUniqueCount}, out.Columns())
	got := counts(out, ColBlockGeoid)
	assert.Equal(t, map[string]string{"01001|": "7"}, got)
}

func TestRollupPassthroughWithoutCountColumn(t *testing.T) {
	f := frame.New(ColBlockGeoid)
	f.AppendRow(frame.Str("010010201001001"))
	assert.Equal(t, f, Rollup(f, LevelCounty, false, false))
}

// Pre-aggregating each disjoint state partition before the merge must give
// the same totals as rolling up the concatenated table in one pass.
func TestRollupAssociativeOverStatePartitions(t *testing.T) {
	alabama := frame.New(ColProviderID, ColBlockGeoid, ColUniqueCount)
	alabama.AppendRow(frame.Str("111"), frame.Str("010010201001001"), frame.Num(2))
	alabama.AppendRow(frame.Str("111"), frame.Str("010010201001002"), frame.Num(3))

	kansas := frame.New(ColProviderID, ColBlockGeoid, ColUniqueCount)
	kansas.AppendRow(frame.Str("111"), frame.Str("200150101001001"), frame.Num(4))
	kansas.AppendRow(frame.Str("333"), frame.Str("200150101001001"), frame.Num(6))

	perState := frame.VStack(
		Rollup(alabama, LevelCounty, false, false),
		Rollup(kansas, LevelCounty, false, false),
	)
	singlePass := Rollup(frame.VStack(alabama, kansas), LevelCounty, false, false)

	perStateTotals := perState.GroupBy([]string{ColBlockGeoid, ColProviderID}, frame.Sum(ColUniqueCount))
	assert.Equal(t,
		counts(singlePass, ColBlockGeoid, ColProviderID),
		counts(perStateTotals, ColBlockGeoid, ColProviderID))
}

func TestMergeAttachesStateAndPivots(t *testing.T) {
	alabama := Rollup(aggregated(
		[3]string{"111", "010010201001001", "xx"}, // count 2
		[3]string{"222", "010010201001001", "x"},  // count 1
	), LevelCounty, false, false)
	kansas := Rollup(aggregated(
		[3]string{"111", "200150101001001", "xxx"}, // count 3
	), LevelCounty, false, false)

	results := []StateResult{
		{State: "Alabama", Frame: alabama},
		{State: "Kansas", Frame: kansas},
	}

	// without rollup flag: plain concat with state_name stamped
	flat := Merge(results, Options{AttachStateName: true})
	require.True(t, flat.HasColumns(ColStateName))
	assert.Equal(t, 3, flat.NumRows())

	// with rollup flag: one wide pivot on provider_id
	wide := Merge(results, Options{Rollup: true, RollupLevel: LevelCounty})
	require.Equal(t, []string{ColBlockGeoid, "111", "222"}, wide.Columns())
	require.Equal(t, 2, wide.NumRows())
	got := make(map[string][2]string)
	for i := 0; i < wide.NumRows(); i++ {
		got[wide.At(i, ColBlockGeoid).Render()] = [2]string{
			wide.At(i, "111").Render(), wide.At(i, "222").Render(),
		}
	}
	assert.Equal(t, [2]string{"2", "1"}, got["01001"])
	assert.Equal(t, [2]string{"3", ""}, got["20015"])
}
