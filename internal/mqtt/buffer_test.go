package mqtt

import (
	"fmt"
	"testing"
)

func msg(i int) outboundMsg {
	return outboundMsg{topic: Topic, payload: []byte(fmt.Sprintf("m%d", i)), qos: 1}
}

func TestRingBufferPushAndDrain(t *testing.T) {
	r := newRingBuffer(4)
	for i := 0; i < 3; i++ {
		r.push(msg(i))
	}
	if r.len() != 3 {
		t.Fatalf("len: got %d, want 3", r.len())
	}

	msgs := r.drainAll()
	if len(msgs) != 3 {
		t.Fatalf("drained: got %d, want 3", len(msgs))
	}
	for i, m := range msgs {
		want := fmt.Sprintf("m%d", i)
		if string(m.payload) != want {
			t.Errorf("message %d: got %s, want %s (order must be oldest-first)", i, m.payload, want)
		}
	}
	if r.len() != 0 {
		t.Errorf("len after drain: got %d, want 0", r.len())
	}
}

func TestRingBufferDrainEmpty(t *testing.T) {
	r := newRingBuffer(4)
	if msgs := r.drainAll(); msgs != nil {
		t.Errorf("drain of empty buffer: got %d messages, want nil", len(msgs))
	}
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	r := newRingBuffer(3)
	for i := 0; i < 5; i++ {
		r.push(msg(i))
	}
	if r.len() != 3 {
		t.Fatalf("len: got %d, want 3", r.len())
	}
	if r.dropped != 2 {
		t.Errorf("dropped: got %d, want 2", r.dropped)
	}

	msgs := r.drainAll()
	want := []string{"m2", "m3", "m4"}
	for i, w := range want {
		if string(msgs[i].payload) != w {
			t.Errorf("message %d: got %s, want %s", i, msgs[i].payload, w)
		}
	}
}

func TestRingBufferReusableAfterDrain(t *testing.T) {
	r := newRingBuffer(2)
	r.push(msg(0))
	r.push(msg(1))
	r.push(msg(2)) // overwrites m0
	r.drainAll()

	r.push(msg(7))
	msgs := r.drainAll()
	if len(msgs) != 1 || string(msgs[0].payload) != "m7" {
		t.Errorf("buffer not clean after drain: got %v", msgs)
	}
	if r.dropped != 0 {
		t.Errorf("dropped counter not reset: got %d", r.dropped)
	}
}

func TestRingBufferPreservesMessageFields(t *testing.T) {
	r := newRingBuffer(2)
	r.push(outboundMsg{topic: TopicSystem, payload: []byte("x"), qos: 1, retained: true})

	msgs := r.drainAll()
	if msgs[0].topic != TopicSystem || msgs[0].qos != 1 || !msgs[0].retained {
		t.Errorf("message fields not preserved: %+v", msgs[0])
	}
}
