package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractScore(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		want   int
		wantOK bool
	}{
		{name: "percentage wins over ratio", text: "Match 80% overall, skills 3/5", want: 80, wantOK: true},
		{name: "ratio only", text: "Rated 3/5", want: 60, wantOK: true},
		{name: "ratio rounds", text: "2 / 3 criteria met", want: 67, wantOK: true},
		{name: "decimal percentage rounds", text: "fit: 72.5%", want: 73, wantOK: true},
		{name: "percentage above 100 ignored", text: "grew revenue 250%, score 90%", want: 90, wantOK: true},
		{name: "zero denominator ignored", text: "0/0 then 4/5", want: 80, wantOK: true},
		{name: "dates are not ratios", text: "started 12/05/2020", wantOK: false},
		{name: "table", text: "A|5|\nB|3|\nC|4|", want: 80, wantOK: true},
		{name: "table skips non digit rows", text: "A|5|\nB|x|", want: 100, wantOK: true},
		{name: "table with leading pipes", text: "| A | 2 | meh |\n| B | 4 | ok |", want: 60, wantOK: true},
		{name: "table without qualifying rows", text: "| Criteria | Score |\n|---|---|", wantOK: false},
		{name: "nothing", text: "a fine candidate", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractScore(tc.text)
			assert.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestTableScoreClampsHighDigits(t *testing.T) {
	got, ok := tableScore("A|9|\nB|9|")
	assert.True(t, ok)
	assert.Equal(t, 100, got)
}
