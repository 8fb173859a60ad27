// Package hub fans out simulation frames and events to websocket clients
// over channels. One goroutine owns the client set; each client owns its
// own writer.
package hub

import "encoding/json"

// MessageType selects the websocket frame type.
type MessageType int

const (
	TextMessage MessageType = iota
	BinaryMessage
)

// Message is one payload queued for every client.
type Message struct {
	Type MessageType
	Data []byte
}

// Envelope wraps a payload with a topic so browser clients can demux
// frames and events on one socket.
type Envelope struct {
	Topic string `json:"topic"`
	Data  any    `json:"data"`
}

// Encode marshals v under topic into a text message.
func Encode(topic string, v any) (Message, error) {
	data, err := json.Marshal(Envelope{Topic: topic, Data: v})
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TextMessage, Data: data}, nil
}
