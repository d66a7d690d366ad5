package connection

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestCloseReason(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   int
		reason string
		want   string
	}{
		{"known code", websocket.CloseGoingAway, "", "Server is going away"},
		{"known code with reason", websocket.CloseNormalClosure, "bye", "Normal closure: bye"},
		{"restart", CloseServiceRestart, "", "Server is restarting"},
		{"unknown code", 4001, "", "Connection closed with code 4001"},
		{"unknown code with reason", 4001, "kicked", "Connection closed with code 4001: kicked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CloseReason(tt.code, tt.reason))
		})
	}
}
