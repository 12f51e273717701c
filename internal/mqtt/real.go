package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// bufferCapacity bounds how many messages we hold while disconnected.
const bufferCapacity = 256

// RealPublisher publishes to an actual MQTT broker. Messages that cannot be
// delivered while the connection is down are held in a ring buffer and
// replayed on reconnect.
type RealPublisher struct {
	client paho.Client

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher creates a publisher connected to the given broker.
func NewRealPublisher(broker string) (*RealPublisher, error) {
	p := &RealPublisher{
		buf: newRingBuffer(bufferCapacity),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("gear-controller").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(paho.Client) {
			p.replayBuffered()
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

// Publish sends a gear command report to the MQTT broker.
func (p *RealPublisher) Publish(report Report) error {
	payload, err := FormatPayload(report)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}

	// QoS 1 (at-least-once): command reports are the audit record and
	// must not be lost on a flaky link.
	return p.send(Topic, payload, 1, false)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	return p.send(TopicSystem, payload, 1, event.Retained)
}

// send delivers a message, or enqueues it if the broker is unreachable.
func (p *RealPublisher) send(topic string, payload []byte, qos byte, retained bool) error {
	if !p.client.IsConnected() {
		p.enqueue(topic, payload, qos, retained)
		return nil
	}

	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		p.enqueue(topic, payload, qos, retained)
		return fmt.Errorf("publish timeout")
	}
	if err := token.Error(); err != nil {
		p.enqueue(topic, payload, qos, retained)
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

func (p *RealPublisher) enqueue(topic string, payload []byte, qos byte, retained bool) {
	p.mu.Lock()
	p.buf.push(outboundMsg{topic: topic, payload: payload, qos: qos, retained: retained})
	p.mu.Unlock()
}

// replayBuffered flushes messages that accumulated while disconnected.
// Runs on paho's connect callback goroutine.
func (p *RealPublisher) replayBuffered() {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	for _, m := range msgs {
		token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", m.topic)
			return
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay error on %s: %v", m.topic, err)
			return
		}
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
