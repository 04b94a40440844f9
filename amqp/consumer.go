package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rabbitmq/amqp091-go"
)

type ConsumerConfig struct {
	AppName  string
	URI      string
	Queue    string
	Workers  int
	Prefetch int

	// Handler is invoked once per notice. Returning an error leaves the
	// message unacked so another consumer can pick it up.
	Handler func(ctx context.Context, notice RefreshNotice) error
}

// MakeConsumer returns a starter for a worker pool draining the refresh
// queue. The returned function blocks only until the first subscription is
// up; the pool itself lives until ctx is done.
func MakeConsumer(c ConsumerConfig) func(ctx context.Context) error {
	if c.Workers <= 0 {
		c.Workers = 1
	}

	return func(ctx context.Context) error {
		var conn *connection
		var delivery <-chan amqp091.Delivery
		var closeC chan *amqp091.Error

		durationHist := promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: c.AppName,
			Name:      fmt.Sprintf("amqp_consumer_%s", strings.ReplaceAll(c.Queue, "-", "_")),
			Buckets:   prometheusDurationBuckets,
		}, []string{"exchange", "queue"})

		restart := func() error {
			slog.Info("starting refresh consumer", "queue", c.Queue)
			var err error
			conn, err = dial(c.URI)
			if err != nil {
				return err
			}
			closeC = make(chan *amqp091.Error, 100)
			conn.conn.NotifyClose(closeC)

			delivery, err = subscribe(ctx, conn, c)
			return err
		}

		if err := restart(); err != nil {
			return err
		}

		work := make(chan amqp091.Delivery, 20)
		for i := 0; i < c.Workers; i++ {
			go func() {
				for dv := range work {
					notice, err := parseNotice(dv.Body)
					if err != nil {
						slog.Error("dropping malformed refresh notice", "err", err)
						dv.Ack(false)
						continue
					}

					timer := prometheus.NewTimer(durationHist.WithLabelValues(Exchange, c.Queue))
					err = c.Handler(ctx, notice)
					timer.ObserveDuration()
					if err != nil {
						slog.Error("cannot process refresh notice", "queue", c.Queue, "err", err)
						dv.Nack(false, true)
						continue
					}
					dv.Ack(false)
				}
			}()
		}

		go func() {
			defer conn.conn.Close()
			defer close(work)
			for {
				select {
				case <-ctx.Done():
					return
				case <-closeC:
					slog.Warn("refresh consumer connection closed", "queue", c.Queue)
					for restart() != nil {
						time.Sleep(time.Second)
					}
				case dv, ok := <-delivery:
					if !ok {
						slog.Warn("refresh delivery channel closed", "queue", c.Queue)
						for restart() != nil {
							time.Sleep(time.Second)
						}
						continue
					}
					work <- dv
				}
			}
		}()

		return nil
	}
}

func subscribe(ctx context.Context, conn *connection, c ConsumerConfig) (<-chan amqp091.Delivery, error) {
	ch, err := conn.conn.Channel()
	if err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, amqp091.Table{}); err != nil {
		return nil, err
	}
	if err := ch.QueueBind(c.Queue, RefreshKey, Exchange, false, amqp091.Table{}); err != nil {
		return nil, err
	}
	if c.Prefetch != 0 {
		if err := ch.Qos(c.Prefetch, 0, false); err != nil {
			return nil, err
		}
	}

	consumer := fmt.Sprintf("consumer-%s-%s", c.AppName, uuid.NewString())
	return ch.ConsumeWithContext(ctx, c.Queue, consumer, false, false, false, false, amqp091.Table{})
}
