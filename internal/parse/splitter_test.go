package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single expense",
			text: "fuel 500",
			want: []string{"fuel 500"},
		},
		{
			name: "comma separated",
			text: "fuel 500, hat 2k, watch 25k",
			want: []string{"fuel 500", "hat 2k", "watch 25k"},
		},
		{
			name: "semicolon separated",
			text: "milk 120; bread 80",
			want: []string{"milk 120", "bread 80"},
		},
		{
			name: "and with amounts on both sides",
			text: "fuel 500 and hat 2k",
			want: []string{"fuel 500", "hat 2k"},
		},
		{
			name: "and inside item name",
			text: "tea and biscuits 300",
			want: []string{"tea and biscuits 300"},
		},
		{
			name: "chained and",
			text: "fuel 500 and hat 2k and watch 25k",
			want: []string{"fuel 500", "hat 2k", "watch 25k"},
		},
		{
			name: "mixed comma and and",
			text: "fuel 500, hat 2k and watch 25k",
			want: []string{"fuel 500", "hat 2k", "watch 25k"},
		},
		{
			name: "descriptive comma stays whole",
			text: "iced coffee, large",
			want: []string{"iced coffee, large"},
		},
		{
			name: "leading fragment without amount merges forward",
			text: "sweets, 1400",
			want: []string{"sweets, 1400"},
		},
		{
			name: "trailing fragment without amount merges back",
			text: "lunch 300, with friends",
			want: []string{"lunch 300, with friends"},
		},
		{
			name: "and without trailing amount stays attached",
			text: "fuel 500 and 2k hat and dinner",
			want: []string{"fuel 500", "2k hat and dinner"},
		},
		{
			name: "no amount anywhere",
			text: "bought some socks",
			want: []string{"bought some socks"},
		},
		{
			name: "bare amount",
			text: "500",
			want: []string{"500"},
		},
		{
			name: "only delimiters",
			text: ", ; ,",
			want: []string{", ; ,"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitCandidates(tt.text))
		})
	}
}

func TestHasAmountToken(t *testing.T) {
	assert.True(t, HasAmountToken("fuel 500"))
	assert.True(t, HasAmountToken("hat 2k"))
	assert.True(t, HasAmountToken("1,250 pkr"))
	assert.False(t, HasAmountToken("iced coffee, large"))
	assert.False(t, HasAmountToken(""))
}

func TestFindAmountToken(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "plain number", text: "fuel 500", want: "500"},
		{name: "suffixed", text: "hat 2k today", want: "2k"},
		{name: "with commas", text: "watch 25,000", want: "25,000"},
		{name: "none", text: "no numbers here", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindAmountToken(tt.text))
		})
	}
}
