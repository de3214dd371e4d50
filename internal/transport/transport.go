package transport

// Publisher delivers a payload to every subscriber of a topic. Live
// samples go out on "location/{surveyorId}".
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// Fanout publishes to each attached transport in order. The first
// failure stops the chain; earlier deliveries are not taken back.
type Fanout []Publisher

func (f Fanout) Publish(topic string, payload []byte) error {
	for _, p := range f {
		err := p.Publish(topic, payload)
		if err != nil {
			return err
		}
	}
	return nil
}
