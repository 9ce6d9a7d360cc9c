//go:build profile

package profiler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpBalancesOpenScopes(t *testing.T) {
	Init(64)
	outer := Start("frame")
	Start("present")() // closed
	Start("dangling")  // left open
	outer()

	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, Dump(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc ssFile
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Len(t, doc.Profiles, 1)

	depth := 0
	for _, ev := range doc.Profiles[0].Events {
		if ev.Type == "O" {
			depth++
		} else {
			depth--
		}
		assert.GreaterOrEqual(t, depth, 0)
	}
	assert.Zero(t, depth)
}

func TestBalanceClosesInnerScopes(t *testing.T) {
	evs := []evEntry{
		{AtNS: 0, FrameID: 0, Open: true},
		{AtNS: 1000, FrameID: 1, Open: true},
		{AtNS: 2000, FrameID: 2}, // never opened
		{AtNS: 5000, FrameID: 0}, // closes 1 then 0
		{AtNS: 4000, FrameID: 3, Open: true},
	}
	out, end := balance(evs)
	assert.Equal(t, []ssEvent{
		{Type: "O", At: 0, Frame: 0},
		{Type: "O", At: 1, Frame: 1},
		{Type: "C", At: 5, Frame: 1},
		{Type: "C", At: 5, Frame: 0},
		{Type: "O", At: 5, Frame: 3}, // clamped, time never runs backwards
		{Type: "C", At: 5, Frame: 3},
	}, out)
	assert.Equal(t, int64(5), end)
}

func TestTotalsIncludeNestedTime(t *testing.T) {
	Init(64)
	end := Start("totals-outer")
	Start("totals-inner")()
	end()

	totals := Totals()
	assert.Contains(t, totals, "totals-outer")
	assert.GreaterOrEqual(t, totals["totals-outer"], totals["totals-inner"])
}
