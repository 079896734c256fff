//go:build integration

package mqtt

import (
	"errors"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
)

// Integration tests against a running MQTT broker at 127.0.0.1:1883.
//
// Run with:
//   go test -tags=integration -v ./internal/infrastructure/mqtt/...

func TestIntegration_ConnectAndClose(t *testing.T) {
	client, err := Connect(testConfig())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if !client.IsConnected() {
		t.Error("IsConnected() = false, want true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestIntegration_ConnectRefused(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.Port = 19999

	_, err := Connect(cfg)
	if !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestIntegration_RetainedDeviceStatus(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.ClientID = "biosignald-int-pub"

	client, err := Connect(cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	topic := Topics{}.DeviceStatus("int-amp")
	if err := client.PublishRetained(topic, []byte(`{"status":"connected"}`)); err != nil {
		t.Fatalf("PublishRetained() error = %v", err)
	}

	// A fresh subscriber must receive the retained status
	opts := pahomqtt.NewClientOptions().AddBroker("tcp://127.0.0.1:1883").SetClientID("biosignald-int-sub")
	sub := pahomqtt.NewClient(opts)
	if token := sub.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		t.Fatalf("subscriber connect failed: %v", token.Error())
	}
	defer sub.Disconnect(100)

	received := make(chan []byte, 1)
	sub.Subscribe(topic, 1, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		received <- msg.Payload()
	})

	select {
	case payload := <-received:
		if string(payload) != `{"status":"connected"}` {
			t.Errorf("payload = %s", payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("retained status not received")
	}
}
