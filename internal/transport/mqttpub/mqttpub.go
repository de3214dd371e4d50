package mqttpub

import (
	"errors"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/phuslu/log"
)

var errPublishTimeout = errors.New("mqtt publish timed out")

type Config struct {
	BrokerURL      string
	ClientID       string
	PublishTimeout time.Duration
}

// Publisher sends live samples to an MQTT broker, QoS 0, not retained.
// Topic names carry over unchanged, MQTT is slash-delimited already.
type Publisher struct {
	c      mqtt.Client
	config *Config
	log    log.Logger
}

func Connect(config *Config) (*Publisher, error) {
	p := &Publisher{config: config}
	p.log = log.DefaultLogger
	p.log.Context = log.NewContext(nil).Str("module", "mqttpub").Value()
	opts := mqtt.NewClientOptions().AddBroker(config.BrokerURL).SetClientID(config.ClientID)
	opts = opts.SetOrderMatters(false).SetAutoReconnect(true)
	p.c = mqtt.NewClient(opts)
	if token := p.c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.log.Info().Str("broker", config.BrokerURL).Str("client_id", config.ClientID).Msg("connected to mqtt broker")
	return p, nil
}

func (p *Publisher) Publish(topic string, payload []byte) error {
	token := p.c.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(p.config.PublishTimeout) {
		p.log.Error().Str("topic", topic).Msg("publish timeout")
		return errPublishTimeout
	}
	if token.Error() != nil {
		p.log.Error().Err(token.Error()).Str("topic", topic).Msg("publish failed")
		return token.Error()
	}
	return nil
}

func (p *Publisher) Close() {
	p.c.Disconnect(250)
}
