package server

import (
	"context"
	"testing"
	"time"
)

func TestRealtimeDispatcherPublishesToSubscriber(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, cleanup := dispatcher.Subscribe(ctx, RealtimeChannelMap)
	defer cleanup()

	dispatcher.Publish(RealtimeMessage{
		Channel:   RealtimeChannelMap,
		EventType: RealtimeEventEventCreated,
		IDs:       []string{"evt-a"},
	})

	select {
	case received := <-stream:
		if received.EventType != RealtimeEventEventCreated {
			t.Fatalf("expected event type %s, got %s", RealtimeEventEventCreated, received.EventType)
		}
		if received.Source != realtimeSourceBackend {
			t.Fatalf("expected default source, got %q", received.Source)
		}
		if received.Timestamp.IsZero() {
			t.Fatalf("expected timestamp to be stamped")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected realtime message within deadline")
	}
}

func TestRealtimeDispatcherIsolatedByChannel(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mapStream, cleanup := dispatcher.Subscribe(ctx, RealtimeChannelMap)
	defer cleanup()
	chatStream, chatCleanup := dispatcher.Subscribe(ctx, RealtimeChannelChat)
	defer chatCleanup()

	dispatcher.Publish(RealtimeMessage{
		Channel:   RealtimeChannelChat,
		EventType: RealtimeEventMessageAdded,
		IDs:       []string{"msg-1"},
	})

	select {
	case <-mapStream:
		t.Fatal("did not expect realtime message on the map channel")
	case <-time.After(200 * time.Millisecond):
	}

	select {
	case msg := <-chatStream:
		if msg.Channel != RealtimeChannelChat {
			t.Fatalf("expected chat channel, received %s", msg.Channel)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected realtime message for chat subscriber")
	}
}

func TestRealtimeDispatcherRejectsUnknownChannel(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()

	stream, cleanup := dispatcher.Subscribe(context.Background(), "calendar")
	defer cleanup()

	if _, open := <-stream; open {
		t.Fatalf("expected closed stream for unknown channel")
	}
	if dispatcher.SubscriberCount("calendar") != 0 {
		t.Fatalf("expected no subscribers registered")
	}
}

func TestRealtimeDispatcherUnsubscribesOnContextEnd(t *testing.T) {
	dispatcher := NewRealtimeDispatcher()
	ctx, cancel := context.WithCancel(context.Background())

	_, cleanup := dispatcher.Subscribe(ctx, RealtimeChannelMap)
	defer cleanup()
	if dispatcher.SubscriberCount(RealtimeChannelMap) != 1 {
		t.Fatalf("expected one subscriber")
	}

	cancel()
	deadline := time.Now().Add(time.Second)
	for dispatcher.SubscriberCount(RealtimeChannelMap) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected subscriber to be removed after context cancellation")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
