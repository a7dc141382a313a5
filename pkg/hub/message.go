// Package hub fans dashboard updates out to websocket viewers. The status
// hub carries rendered views as JSON text; the camera hub carries JPEG
// preview frames as binary messages.
package hub

import "github.com/gofiber/websocket/v2"

// Message is one payload queued for every viewer.
type Message struct {
	Data   []byte
	Binary bool
}

// StatusMessage wraps an encoded status view.
func StatusMessage(view []byte) Message {
	return Message{Data: view}
}

// FrameMessage wraps a JPEG preview frame.
func FrameMessage(jpeg []byte) Message {
	return Message{Data: jpeg, Binary: true}
}

func (m Message) frameType() int {
	if m.Binary {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}
