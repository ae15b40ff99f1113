package web

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBroadcaster_SubscribeReceive(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	b.BroadcastStatus("armed")

	select {
	case raw := <-ch:
		var evt Event
		if err := json.Unmarshal([]byte(raw), &evt); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if evt.Kind != "status" || evt.Msg != "armed" {
			t.Errorf("event = %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestBroadcaster_MultipleClients(t *testing.T) {
	b := NewBroadcaster()
	ch1, unsub1 := b.Subscribe()
	defer unsub1()
	ch2, unsub2 := b.Subscribe()
	defer unsub2()

	b.Broadcast("telemetry", "20,0.70,,0.70,0.70,0.00,0.00,0.70,300,300")

	for i, ch := range []<-chan string{ch1, ch2} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatalf("client %d received nothing", i)
		}
	}
}

func TestBroadcaster_UnsubscribedClientExcluded(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe()
	unsub()

	b.BroadcastStatus("after unsub")

	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}
}

func TestBroadcaster_SlowClientSkipped(t *testing.T) {
	b := NewBroadcaster()
	_, unsub := b.Subscribe()
	defer unsub()

	// Fill well past the buffer; Broadcast must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			b.BroadcastStatus("flood")
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Broadcast blocked on a slow client")
	}
}

func TestBroadcastWriter(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	w := BroadcastWriter(b)
	n, err := w.Write([]byte("[INFO] State: Disarmed -> Arming\n"))
	if err != nil || n == 0 {
		t.Fatalf("Write = %d, %v", n, err)
	}

	select {
	case raw := <-ch:
		var evt Event
		_ = json.Unmarshal([]byte(raw), &evt)
		if evt.Msg != "[INFO] State: Disarmed -> Arming" {
			t.Errorf("msg = %q", evt.Msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestSink_ForwardsRows(t *testing.T) {
	b := NewBroadcaster()
	ch, unsub := b.Subscribe()
	defer unsub()

	s := &Sink{B: b}
	if err := s.Write("row"); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Flush(); err != nil {
		t.Errorf("Flush: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	select {
	case raw := <-ch:
		var evt Event
		_ = json.Unmarshal([]byte(raw), &evt)
		if evt.Kind != "telemetry" || evt.Msg != "row" {
			t.Errorf("event = %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}
