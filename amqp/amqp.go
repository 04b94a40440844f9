// Package amqp carries dataset refresh notices between the data loader and
// the API servers, so every server drops its cached responses when the
// underlying series changes.
package amqp

import (
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/rabbitmq/amqp091-go"

	"github.com/petrodata/brentdash/errors"
)

const (
	Exchange   = "brentdash"
	RefreshKey = "dataset.refresh"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// RefreshNotice announces that a dataset was reloaded. Consumers use it to
// invalidate whatever they derived from the previous revision.
type RefreshNotice struct {
	Dataset    string    `json:"dataset"`
	Reason     string    `json:"reason"`
	PriceCount int       `json:"price_count"`
	At         time.Time `json:"at"`
}

func (n RefreshNotice) marshal() ([]byte, error) {
	bs, err := jsonCodec.Marshal(n)
	if err != nil {
		return nil, errors.Wrap(err, "cannot marshal refresh notice")
	}
	return bs, nil
}

func parseNotice(body []byte) (RefreshNotice, error) {
	var n RefreshNotice
	if err := jsonCodec.Unmarshal(body, &n); err != nil {
		return RefreshNotice{}, errors.Wrap(err, "cannot parse refresh notice")
	}
	return n, nil
}

type connection struct {
	conn *amqp091.Connection
}

func dial(uri string) (*connection, error) {
	conn, err := amqp091.DialConfig(uri, amqp091.Config{
		Properties: amqp091.NewConnectionProperties(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to rabbitmq")
	}
	return &connection{conn: conn}, nil
}

// Setup declares the refresh exchange and binds the given queue to it. Safe
// to call from every process on boot.
func Setup(uri, queue string) error {
	c, err := dial(uri)
	if err != nil {
		return err
	}
	defer c.conn.Close()

	ch, err := c.conn.Channel()
	if err != nil {
		return errors.Wrap(err, "cannot open rabbitmq channel")
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(Exchange, "fanout", true, false, false, false, amqp091.Table{}); err != nil {
		return errors.Wrap(err, "cannot declare refresh exchange")
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, amqp091.Table{}); err != nil {
		return errors.Wrap(err, "cannot declare refresh queue")
	}
	if err := ch.QueueBind(queue, RefreshKey, Exchange, false, amqp091.Table{}); err != nil {
		return errors.Wrap(err, "cannot bind refresh queue")
	}
	return nil
}

var prometheusDurationBuckets = []float64{
	0.0005,
	0.001, // 1ms
	0.002,
	0.005,
	0.01, // 10ms
	0.02,
	0.05,
	0.1, // 100 ms
	0.2,
	0.5,
	1.0, // 1s
	2.0,
	5.0,
	10.0, // 10s
	15.0,
	20.0,
	30.0,
}
