package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	amount := func(n int) *int { return &n }

	tests := []struct {
		input  string
		kind   commandKind
		action string
		amount *int
	}{
		{"fold", cmdAction, "fold", nil},
		{"  CHECK ", cmdAction, "check", nil},
		{"c", cmdAction, "call", nil},
		{"bet 50", cmdAction, "bet", amount(50)},
		{"raise $120", cmdAction, "bet", amount(120)},
		{"all-in", cmdAction, "all-in", nil},
		{"allin", cmdAction, "all-in", nil},
		{"/retry", cmdRetry, "", nil},
		{"/leave", cmdLeave, "", nil},
		{"quit", cmdQuit, "", nil},
		{"/help", cmdHelp, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, err := parseCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, c.kind)
			assert.Equal(t, tt.action, c.action)
			assert.Equal(t, tt.amount, c.amount)
		})
	}
}

func TestParseCommandErrors(t *testing.T) {
	for _, input := range []string{"", "   ", "bet", "bet lots", "bet -5", "bet 0", "dance"} {
		_, err := parseCommand(input)
		assert.Error(t, err, "input %q", input)
	}
}
