// Package event provides the synchronous event bus that connects the editor
// host to cursorkeep.
//
// Host adapters publish typed events (selection changed, active editor
// changed, configuration changed); the keeper subscribes to them by topic
// pattern. Delivery happens on the publisher's goroutine, in subscription
// order, with each handler isolated by panic recovery:
//
//	bus := event.NewBus(event.WithErrorHandler(logErr))
//	sub, _ := bus.Subscribe(events.TopicSelectionChanged, handler)
//	_ = bus.Publish(ctx, event.New(events.TopicSelectionChanged, payload, "host"))
//	_ = bus.Unsubscribe(sub)
package event
