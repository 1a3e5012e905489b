package mirror

import (
	"fmt"
	"log/slog"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// Config holds the broker settings.
type Config struct {
	Broker      string
	Username    string
	Password    string
	TopicPrefix string
}

// Paho is a Publisher backed by an Eclipse Paho client.
type Paho struct {
	client pahomqtt.Client
	prefix string
	logger *slog.Logger
}

// Dial connects to the broker. The agent state topic carries a retained
// "online" while connected and the broker's will sets it to "offline".
func Dial(cfg Config, logger *slog.Logger) (*Paho, error) {
	p := &Paho{
		prefix: cfg.TopicPrefix,
		logger: logger.With("component", "mqtt"),
	}
	stateTopic := AgentStateTopic(cfg.TopicPrefix)

	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID("sunmind-" + uuid.NewString()[:8]).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(stateTopic, "offline", 1, true).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			p.logger.Info("MQTT connected", "broker", cfg.Broker)
			p.Publish(stateTopic, []byte("online"), true)
		}).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			p.logger.Warn("MQTT connection lost", "error", err)
		})
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect: %w", err)
	}
	p.client = client
	return p, nil
}

// Publish implements Publisher. Delivery is confirmed in the background.
func (p *Paho) Publish(topic string, payload []byte, retained bool) {
	if p.client == nil {
		return
	}
	token := p.client.Publish(topic, 1, retained, payload)
	go func() {
		if !token.WaitTimeout(5 * time.Second) {
			p.logger.Warn("MQTT publish timeout", "topic", topic)
		} else if err := token.Error(); err != nil {
			p.logger.Warn("MQTT publish error", "topic", topic, "error", err)
		}
	}()
}

// Close marks the agent offline and disconnects.
func (p *Paho) Close() {
	if p.client == nil {
		return
	}
	token := p.client.Publish(AgentStateTopic(p.prefix), 1, true, []byte("offline"))
	token.WaitTimeout(2 * time.Second)
	p.client.Disconnect(1000)
	p.logger.Info("MQTT disconnected")
}
