package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/gridsim/pvdispatch/core/model"
	"github.com/gridsim/pvdispatch/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT publisher.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
	Retain   bool   `json:"retain"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "pvdispatch"
	}
	if c.Topic == "" {
		c.Topic = "pvdispatch/runs"
	}
}

// Validate checks mandatory fields when publication is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required when mqtt is enabled")
	}
	return nil
}

// Summary is the payload published after a completed run.
type Summary struct {
	RunID    string       `json:"run_id"`
	Policy   string       `json:"policy"`
	Finished time.Time    `json:"finished"`
	Totals   model.Totals `json:"totals"`
	Cycles   float64      `json:"battery_cycles"`
}

// Publisher sends run summaries to interested collaborators.
type Publisher interface {
	PublishSummary(s Summary) error
	Close()
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// PahoPublisher implements Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli    pahoClient
	topic  string
	qos    byte
	retain bool
	log    logger.Logger
}

// NewPahoPublisher connects to the MQTT broker described by cfg.
func NewPahoPublisher(cfg Config) (*PahoPublisher, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	log := logger.New("mqtt-publisher")
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{cli: c, topic: cfg.Topic, qos: cfg.QoS, retain: cfg.Retain, log: log}, nil
}

// PublishSummary publishes the run summary as JSON.
func (p *PahoPublisher) PublishSummary(s Summary) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	token := p.cli.Publish(p.topic, p.qos, p.retain, payload)
	if token.Wait() && token.Error() != nil {
		return token.Error()
	}
	p.log.Debugw("summary published", map[string]any{"topic": p.topic, "run_id": s.RunID})
	return nil
}

// Close disconnects from the broker.
func (p *PahoPublisher) Close() {
	p.cli.Disconnect(250)
}

// MockPublisher records published summaries for tests.
type MockPublisher struct {
	Published []Summary
	Fail      bool
}

// PublishSummary appends the summary or fails when configured to.
func (m *MockPublisher) PublishSummary(s Summary) error {
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Published = append(m.Published, s)
	return nil
}

// Close is a no-op.
func (m *MockPublisher) Close() {}
