package mqtt

import "log"

// pendingMsg stores a serialized MQTT message for replay after reconnection.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox is a fixed-capacity FIFO that keeps dial events while the broker
// is unreachable. The oldest message is dropped when full.
// Not safe for concurrent use; callers synchronize.
type outbox struct {
	msgs    []pendingMsg
	head    int // next write position
	count   int
	dropped int // messages lost since the last drain
}

func newOutbox(capacity int) *outbox {
	return &outbox{msgs: make([]pendingMsg, capacity)}
}

func (o *outbox) push(msg pendingMsg) {
	if len(o.msgs) == 0 {
		return
	}
	if o.count == len(o.msgs) {
		if o.dropped == 0 {
			log.Printf("mqtt: outbox full (%d messages), dropping oldest", len(o.msgs))
		}
		o.dropped++
		o.msgs[o.head] = msg
		o.head = (o.head + 1) % len(o.msgs)
		return
	}
	o.msgs[o.head] = msg
	o.head = (o.head + 1) % len(o.msgs)
	o.count++
}

// drain returns queued messages oldest first and empties the outbox.
func (o *outbox) drain() []pendingMsg {
	if o.count == 0 {
		return nil
	}

	out := make([]pendingMsg, o.count)
	start := (o.head - o.count + len(o.msgs)) % len(o.msgs)
	for i := range out {
		out[i] = o.msgs[(start+i)%len(o.msgs)]
	}

	o.count = 0
	o.head = 0
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return o.count
}
