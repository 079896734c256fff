package device

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Publisher is the interface for publishing status messages.
// This is typically implemented by the MQTT client.
type Publisher interface {
	// Publish sends a message to a topic with the specified QoS and retention.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// IsConnected returns true if the publisher is connected.
	IsConnected() bool
}

// StatusMessage is the retained payload published on every transition.
type StatusMessage struct {
	DeviceID  string    `json:"device_id"`
	Address   string    `json:"address"`
	Status    Status    `json:"status"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusPublisherConfig holds configuration for the status publisher.
type StatusPublisherConfig struct {
	Publisher Publisher

	// Topic builds the status topic for a device ID.
	// Default: "biosignal/device/{id}/status".
	Topic func(deviceID string) string

	// QoS for published messages, used as given.
	QoS byte
}

// StatusPublisher mirrors device transitions to a message broker as retained
// JSON messages.
type StatusPublisher struct {
	publisher Publisher
	topic     func(string) string
	qos       byte

	mu      sync.Mutex
	cancels map[string]func()
	logger  Logger
}

// NewStatusPublisher creates a status publisher.
func NewStatusPublisher(cfg StatusPublisherConfig) *StatusPublisher {
	topic := cfg.Topic
	if topic == nil {
		topic = func(id string) string {
			return fmt.Sprintf("biosignal/device/%s/status", id)
		}
	}
	return &StatusPublisher{
		publisher: cfg.Publisher,
		topic:     topic,
		qos:       cfg.QoS,
		cancels:   make(map[string]func()),
		logger:    noopLogger{},
	}
}

// SetLogger sets the logger for the publisher.
func (p *StatusPublisher) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	p.mu.Lock()
	p.logger = logger
	p.mu.Unlock()
}

// Track publishes the current status of d and every later transition.
func (p *StatusPublisher) Track(d *Device) {
	p.mu.Lock()
	if cancel, ok := p.cancels[d.ID()]; ok {
		cancel()
	}
	p.mu.Unlock()

	p.observe(d)
	cancel := d.OnStatusChanged(p.observe)

	p.mu.Lock()
	p.cancels[d.ID()] = cancel
	p.mu.Unlock()
}

// Untrack stops publishing for the device with the given ID.
func (p *StatusPublisher) Untrack(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.cancels[id]; ok {
		cancel()
		delete(p.cancels, id)
	}
}

// PublishNow publishes the current status of d.
func (p *StatusPublisher) PublishNow(d *Device) error {
	if p.publisher == nil {
		return nil // No publisher configured
	}
	if !p.publisher.IsConnected() {
		return fmt.Errorf("publishing status of %s: publisher not connected", d.ID())
	}

	msg := StatusMessage{
		DeviceID:  d.ID(),
		Address:   d.Address(),
		Status:    d.Status(),
		SessionID: d.Telemetry().ID(),
		Timestamp: time.Now().UTC(),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshalling status: %w", err)
	}

	return p.publisher.Publish(p.topic(d.ID()), payload, p.qos, true)
}

// observe is the status observer.
func (p *StatusPublisher) observe(d *Device) {
	if err := p.PublishNow(d); err != nil {
		p.mu.Lock()
		logger := p.logger
		p.mu.Unlock()
		logger.Warn("publishing device status failed",
			"device_id", d.ID(),
			"error", err,
		)
	}
}
