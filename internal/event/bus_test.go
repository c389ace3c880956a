package event

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemoryBus_DeliversToEverySubscriber(t *testing.T) {
	bus := NewBus()

	first, unsubFirst := bus.Subscribe()
	defer unsubFirst()
	second, unsubSecond := bus.Subscribe()
	defer unsubSecond()

	bus.Publish(Event{Type: TypeLoginSucceeded, Payload: AuthPayload{Email: "a@x.com"}})

	for _, ch := range []<-chan Event{first, second} {
		got := <-ch
		require.Equal(t, TypeLoginSucceeded, got.Type)
		require.Equal(t, "a@x.com", got.Payload.Email)
		require.NotEmpty(t, got.ID)
	}
}

func TestInMemoryBus_FullSubscriberDropsWithoutBlocking(t *testing.T) {
	bus := NewBufferedBus(1)

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	bus.Publish(Event{Type: TypeLoginFailed})
	bus.Publish(Event{Type: TypeIdentityRegistered})

	require.Equal(t, TypeLoginFailed, (<-ch).Type)
	select {
	case e := <-ch:
		t.Fatalf("expected dropped event, got %v", e.Type)
	default:
	}
}

func TestInMemoryBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()

	ch, unsubscribe := bus.Subscribe()
	unsubscribe()
	unsubscribe()

	_, open := <-ch
	require.False(t, open)

	require.NotPanics(t, func() { bus.Publish(Event{Type: TypeLoginFailed}) })
}
