package pubsub

// PubSubClient publishes domain events and decodes pushed messages.
type PubSubClient interface {
	SendMessage(topic EventType, data any) error
	ProcessMessage(data []byte, returnValue any) error
	Close() error
}
