package mqtt

import (
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/sweeney/countdown-timer/internal/logger"
	"github.com/sweeney/countdown-timer/internal/logic"
)

// bufferCapacity bounds the messages held while the broker is unreachable.
const bufferCapacity = 256

const publishTimeout = 5 * time.Second

// RealPublisher publishes to an actual MQTT broker. Messages published while
// disconnected are buffered and replayed, oldest first, on reconnect.
type RealPublisher struct {
	client paho.Client
	log    *logger.Logger
	now    func() time.Time
	format func(SystemEvent) ([]byte, error)

	mu  sync.Mutex
	buf *ringBuffer
}

// NewRealPublisher starts connecting to broker and returns immediately. The
// connection is retried in the background.
func NewRealPublisher(broker, clientID string, log *logger.Logger) (*RealPublisher, error) {
	p := &RealPublisher{
		log:    log,
		now:    time.Now,
		format: FormatSystemPayload,
		buf:    newRingBuffer(bufferCapacity),
	}

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: p.now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) { p.onConnect() }).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warnw("mqtt connection lost", "broker", broker, "err", err)
		})

	p.client = paho.NewClient(opts)
	// With connect retry enabled the token completes only once connected,
	// so it is not waited on here.
	p.client.Connect()
	return p, nil
}

// newPublisher wraps an existing client.
func newPublisher(client paho.Client, log *logger.Logger, capacity int) *RealPublisher {
	return &RealPublisher{
		client: client,
		log:    log,
		now:    time.Now,
		format: FormatSystemPayload,
		buf:    newRingBuffer(capacity),
	}
}

// Publish sends a timer event. QoS 0, not retained.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(bufferedMsg{topic: Topic, payload: payload})
}

// PublishSystem sends a system lifecycle event. QoS 1 so lifecycle events are
// delivered at least once.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(msg bufferedMsg) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		dropped := p.buf.push(msg)
		p.mu.Unlock()
		if dropped {
			p.log.Warnw("mqtt buffer full, dropping oldest", "capacity", p.buf.capacity)
		}
		return nil
	}
	return p.publish(msg)
}

func (p *RealPublisher) publish(msg bufferedMsg) error {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// onConnect replays buffered messages and announces the reconnection.
func (p *RealPublisher) onConnect() {
	p.mu.Lock()
	msgs := p.buf.drainAll()
	p.mu.Unlock()

	for _, msg := range msgs {
		if err := p.publish(msg); err != nil {
			p.log.Warnw("mqtt replay failed", "topic", msg.topic, "err", err)
		}
	}

	p.log.Infow("mqtt connected", "replayed", len(msgs))

	payload, err := p.format(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
	if err != nil {
		p.log.Warnw("failed to format reconnect event", "err", err)
		return
	}
	if err := p.publish(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1}); err != nil {
		p.log.Warnw("mqtt reconnect announce failed", "err", err)
	}
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
