package connection

import (
	"fmt"

	"github.com/gorilla/websocket"
)

// Close codes without a gorilla constant.
const (
	CloseServiceRestart = 1012
	CloseTryAgainLater  = 1013
)

var closeReasons = map[int]string{
	websocket.CloseNormalClosure:           "Normal closure",
	websocket.CloseGoingAway:               "Server is going away",
	websocket.CloseProtocolError:           "Protocol error",
	websocket.CloseUnsupportedData:         "Unsupported data received",
	websocket.CloseNoStatusReceived:        "No status received",
	websocket.CloseAbnormalClosure:         "Connection dropped unexpectedly",
	websocket.CloseInvalidFramePayloadData: "Invalid frame payload data",
	websocket.ClosePolicyViolation:         "Policy violation",
	websocket.CloseMessageTooBig:           "Message too big",
	websocket.CloseMandatoryExtension:      "Missing required extension",
	websocket.CloseInternalServerErr:       "Internal server error",
	CloseServiceRestart:                    "Server is restarting",
	CloseTryAgainLater:                     "Server is overloaded, try again later",
	websocket.CloseTLSHandshake:            "TLS handshake failed",
}

// CloseReason maps a close code to a human readable reason. The server's
// own reason text, when present, is appended.
func CloseReason(code int, reason string) string {
	text, ok := closeReasons[code]
	if !ok {
		text = fmt.Sprintf("Connection closed with code %d", code)
	}
	if reason != "" {
		return text + ": " + reason
	}
	return text
}
