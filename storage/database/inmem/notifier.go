package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/timeac/core"
)

// Notifier delivers notifications to the subscribers of the same process.
type Notifier struct {
	mutex  sync.RWMutex
	subs   map[string]map[int]func(string)
	nextID int
}

var _ core.Notifier = (*Notifier)(nil)

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]func(string))}
}

func (n *Notifier) Publish(_ context.Context, topic, payload string) error {
	n.mutex.RLock()
	fns := make([]func(string), 0, len(n.subs[topic]))
	for _, fn := range n.subs[topic] {
		fns = append(fns, fn)
	}
	n.mutex.RUnlock()

	for _, fn := range fns {
		go fn(payload)
	}
	return nil
}

func (n *Notifier) Subscribe(topic string, fn func(payload string)) (func(), error) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	id := n.nextID
	n.nextID++
	if n.subs[topic] == nil {
		n.subs[topic] = make(map[int]func(string))
	}
	n.subs[topic][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mutex.Lock()
			delete(n.subs[topic], id)
			n.mutex.Unlock()
		})
	}, nil
}
