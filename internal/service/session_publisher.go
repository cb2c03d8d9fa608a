package service

// SessionPublisher delivers a message to every live subscriber of a session.
// Implemented by the websocket hub.
type SessionPublisher interface {
	Publish(key string, msg any)
}
