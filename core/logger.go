package core

import "context"

// Logger is implemented by the logging services.
// args may carry errors and map[string]interface{} extras.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Notifier fans change notifications out to other processes sharing the same stores.
// The payload is passed through untouched; publishers are delivered their own notifications too.
type Notifier interface {
	Publish(ctx context.Context, topic, payload string) error
	// Subscribe calls fn with the payload of every notification on topic until the returned func is called.
	Subscribe(topic string, fn func(payload string)) (unsubscribe func(), err error)
}

// Person identifies who triggered a logged event. Loggers attach it to the report when passed in args.
type Person struct {
	ID   string
	Name string
}
