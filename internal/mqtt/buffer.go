package mqtt

import "log"

// outboundMsg stores a serialized MQTT message for replay after reconnection.
type outboundMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// ringBuffer is a fixed-capacity FIFO holding messages while the broker is
// unreachable. When full, the oldest message is dropped: a stale gear report
// is worth less than a fresh one. Not safe for concurrent use — the caller
// must synchronize.
type ringBuffer struct {
	buf      []outboundMsg
	capacity int
	head     int // next write position
	count    int
	dropped  int // messages lost since the last drain
}

func newRingBuffer(capacity int) *ringBuffer {
	return &ringBuffer{
		buf:      make([]outboundMsg, capacity),
		capacity: capacity,
	}
}

func (r *ringBuffer) push(msg outboundMsg) {
	if r.count == r.capacity {
		if r.dropped == 0 {
			log.Printf("mqtt: buffer full (%d messages), dropping oldest", r.capacity)
		}
		r.dropped++
		// Overwrite oldest: head is already pointing at it
		r.buf[r.head] = msg
		r.head = (r.head + 1) % r.capacity
		// count stays at capacity
		return
	}
	r.buf[r.head] = msg
	r.head = (r.head + 1) % r.capacity
	r.count++
}

// drainAll returns buffered messages oldest-first and empties the buffer.
func (r *ringBuffer) drainAll() []outboundMsg {
	if r.count == 0 {
		return nil
	}

	result := make([]outboundMsg, r.count)
	// Oldest item is at (head - count) mod capacity
	start := (r.head - r.count + r.capacity) % r.capacity
	for i := 0; i < r.count; i++ {
		result[i] = r.buf[(start+i)%r.capacity]
	}

	if r.dropped > 0 {
		log.Printf("mqtt: replaying %d buffered messages (%d dropped while offline)", r.count, r.dropped)
	}
	r.count = 0
	r.head = 0
	r.dropped = 0
	return result
}

func (r *ringBuffer) len() int {
	return r.count
}
