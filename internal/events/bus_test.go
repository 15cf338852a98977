package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setupBusTest(t *testing.T) *Bus {
	return NewBus()
}

func TestBus_PublishSubscribe(t *testing.T) {
	bus := setupBusTest(t)

	ch, cancel := bus.Subscribe("session-a")
	defer cancel()

	bus.Publish(CartEvent{SessionToken: "session-a", Action: "added", ProductID: 3})

	select {
	case event := <-ch:
		assert.Equal(t, "added", event.Action)
		assert.Equal(t, uint(3), event.ProductID)
	case <-time.After(time.Second):
		t.Fatal("expected event was not delivered")
	}
}

func TestBus_SessionIsolation(t *testing.T) {
	bus := setupBusTest(t)

	chA, cancelA := bus.Subscribe("session-a")
	defer cancelA()
	chB, cancelB := bus.Subscribe("session-b")
	defer cancelB()

	bus.Publish(CartEvent{SessionToken: "session-a", Action: "cleared"})

	select {
	case <-chA:
	case <-time.After(time.Second):
		t.Fatal("subscriber of the published session received nothing")
	}

	select {
	case event := <-chB:
		t.Fatalf("subscriber of another session received event: %+v", event)
	default:
	}
}

func TestBus_CancelRemovesSubscriber(t *testing.T) {
	bus := setupBusTest(t)

	_, cancel := bus.Subscribe("session-a")
	assert.Equal(t, 1, bus.SubscriberCount("session-a"))

	cancel()
	assert.Equal(t, 0, bus.SubscriberCount("session-a"))

	// Publishing after cancel must not panic
	bus.Publish(CartEvent{SessionToken: "session-a", Action: "removed"})
}

func TestBus_SlowSubscriberDoesNotBlock(t *testing.T) {
	bus := setupBusTest(t)

	_, cancel := bus.Subscribe("session-a")
	defer cancel()

	// Fill beyond the channel buffer; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			bus.Publish(CartEvent{SessionToken: "session-a", Action: "updated"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
