package samurai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArchiveOptions(t *testing.T) {
	markup := `<html><body>
		<form>
			<select id="ai" name="ai">
				<option value="0">Select a puzzle</option>
				<option value="">--</option>
				<option value="4521">31st October 2025 - Hard</option>
				<option value=" 4520 "> 30th October 2025 - Very Hard </option>
				<option value="4519">Archive special</option>
			</select>
		</form>
	</body></html>`

	puzzles, err := parseArchiveOptions(strings.NewReader(markup))
	require.NoError(t, err)
	require.Len(t, puzzles, 3)

	assert.Equal(t, Puzzle{
		Value:      "4521",
		Text:       "31st October 2025 - Hard",
		DateText:   "31st October 2025",
		Difficulty: "Hard",
	}, puzzles[0])

	assert.Equal(t, "4520", puzzles[1].Value)
	assert.Equal(t, "30th October 2025 - Very Hard", puzzles[1].Text)
	assert.Equal(t, "Very Hard", puzzles[1].Difficulty)

	assert.Equal(t, "Archive special", puzzles[2].Text)
	assert.Empty(t, puzzles[2].DateText)
	assert.Empty(t, puzzles[2].Difficulty)
}

func TestParseArchiveOptions_NoDropdown(t *testing.T) {
	_, err := parseArchiveOptions(strings.NewReader(`<select id="other"><option value="1">x</option></select>`))
	assert.ErrorIs(t, err, ErrNoDropdown)
}

func TestParseArchiveOptions_Empty(t *testing.T) {
	puzzles, err := parseArchiveOptions(strings.NewReader(`<select id="ai"><option value="0">Select</option></select>`))
	assert.NoError(t, err)
	assert.Empty(t, puzzles)
}
