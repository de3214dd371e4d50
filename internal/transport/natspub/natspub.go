package natspub

import (
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/phuslu/log"
)

// Publisher sends live samples to a NATS server. NATS subjects are
// dot-delimited, so the slash form of the topic is rewritten at this
// edge only; every other component sees "location/{surveyorId}".
type Publisher struct {
	nc  *nats.Conn
	log log.Logger
}

func Connect(url string) (*Publisher, error) {
	p := &Publisher{}
	p.log = log.DefaultLogger
	p.log.Context = log.NewContext(nil).Str("module", "natspub").Value()
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	p.nc = nc
	p.log.Info().Str("url", url).Msg("connected to nats")
	return p, nil
}

func (p *Publisher) Publish(topic string, payload []byte) error {
	err := p.nc.Publish(subject(topic), payload)
	if err != nil {
		p.log.Error().Err(err).Str("topic", topic).Msg("publish failed")
	}
	return err
}

func (p *Publisher) Close() {
	p.nc.Close()
}

func subject(topic string) string {
	return strings.ReplaceAll(topic, "/", ".")
}
