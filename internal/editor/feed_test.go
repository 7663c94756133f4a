package editor

import (
	"testing"
)

func TestFeed_PublishToSubscribers(t *testing.T) {
	feed := NewFeed()
	ch1, cancel1 := feed.Subscribe("s1")
	defer cancel1()
	ch2, cancel2 := feed.Subscribe("s2")
	defer cancel2()

	feed.Publish(Event{SessionID: "s1", Type: EventBlockAdded})

	select {
	case e := <-ch1:
		if e.Type != EventBlockAdded {
			t.Errorf("type = %s", e.Type)
		}
	default:
		t.Fatal("subscriber of s1 received nothing")
	}
	select {
	case e := <-ch2:
		t.Fatalf("subscriber of s2 received %s event for s1", e.Type)
	default:
	}
}

func TestFeed_CancelStopsDelivery(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe("s1")
	cancel()

	feed.Publish(Event{SessionID: "s1", Type: EventBlockAdded})

	select {
	case e := <-ch:
		t.Fatalf("cancelled subscriber received %s", e.Type)
	default:
	}
}

func TestFeed_SlowSubscriberLosesEventsWithoutBlocking(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe("s1")
	defer cancel()

	// Overfill the buffer; Publish must never block.
	for range 32 {
		feed.Publish(Event{SessionID: "s1", Type: EventItemUpdated})
	}

	if len(ch) != cap(ch) {
		t.Errorf("buffered = %d, want full buffer %d", len(ch), cap(ch))
	}
}
