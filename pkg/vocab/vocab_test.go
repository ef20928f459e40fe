package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerUpdateAndBuild(t *testing.T) {
	tr := NewTracker()
	tr.Update("barcha barcha mzyan9. اليوم جميل.")
	tr.Update("barcha خدمة.")

	vf := tr.Build("tunisia-sat.com", "run-1")

	assert.Equal(t, "tunisia-sat.com", vf.Site)
	assert.Equal(t, "run-1", vf.RunID)
	assert.Equal(t, vf.TotalWords, len(vf.Vocab))
	require.NotEmpty(t, vf.Vocab)

	// Highest-frequency word first.
	assert.Equal(t, "barcha", vf.Vocab[0].Word)
	assert.Equal(t, 3, vf.Vocab[0].Count)
	assert.Equal(t, "roman", vf.Vocab[0].Script)
	assert.NotEmpty(t, vf.Vocab[0].Examples)
}

func TestTrackerExamplesCapturedOnFirstSight(t *testing.T) {
	tr := NewTracker()
	tr.Update("3lech hakka. 3lech lela. 3lech ghodwa. 3lech dima.")

	vf := tr.Build("s", "r")
	require.NotEmpty(t, vf.Vocab)
	assert.LessOrEqual(t, len(vf.Vocab[0].Examples), MaxExamples)
}

func TestTrackerDeterministicOrder(t *testing.T) {
	tr := NewTracker()
	tr.Update("barcha 3lech")

	a := tr.Build("s", "r")
	b := tr.Build("s", "r")
	assert.Equal(t, a, b)

	// Equal counts sort alphabetically.
	require.Len(t, a.Vocab, 2)
	assert.Equal(t, "3lech", a.Vocab[0].Word)
	assert.Equal(t, "barcha", a.Vocab[1].Word)
}

func TestTrackerEmptyInput(t *testing.T) {
	tr := NewTracker()
	tr.Update("")
	assert.Equal(t, 0, tr.Len())

	vf := tr.Build("s", "r")
	assert.Equal(t, 0, vf.TotalWords)
	assert.Empty(t, vf.Vocab)
}
