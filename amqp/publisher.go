package amqp

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rabbitmq/amqp091-go"
)

// Publisher fans refresh notices out to every listening server. Publishing
// is fire and forget; delivery problems are logged and retried through the
// reconnect loop, never surfaced to the caller.
type Publisher interface {
	PublishRefresh(notice RefreshNotice)
}

type publisher struct {
	pending           chan RefreshNotice
	durationHistogram *prometheus.HistogramVec
}

// NewPublisher connects to rabbitmq and starts the background publishing
// loop. The connection is re-dialed forever on close notifications, the way
// a long-lived sidecar has to.
func NewPublisher(appName, uri string) Publisher {
	p := &publisher{
		pending: make(chan RefreshNotice, 100),
		durationHistogram: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: appName,
			Name:      "amqp_publisher_refresh",
			Buckets:   prometheusDurationBuckets,
		}, []string{"exchange", "routing_key"}),
	}

	var conn *connection
	var closeC chan *amqp091.Error
	restart := func() {
		slog.Info("starting refresh publisher connection")
		for {
			var err error
			conn, err = dial(uri)
			if err == nil {
				break
			}
			slog.Error("cannot connect to rabbitmq", "err", err)
			time.Sleep(time.Second)
		}
		closeC = make(chan *amqp091.Error, 100)
		conn.conn.NotifyClose(closeC)
	}

	restart()

	go func() {
		for {
			select {
			case <-closeC:
				slog.Warn("refresh publisher connection closed")
				restart()

			case notice := <-p.pending:
				timer := prometheus.NewTimer(p.durationHistogram.WithLabelValues(Exchange, RefreshKey))
				err := publishOnce(conn, notice)
				timer.ObserveDuration()
				if err != nil {
					slog.Error("cannot publish refresh notice", "err", err)
					// requeue and force a fresh connection
					go p.PublishRefresh(notice)
					restart()
				}
			}
		}
	}()

	return p
}

func publishOnce(conn *connection, notice RefreshNotice) error {
	body, err := notice.marshal()
	if err != nil {
		return err
	}

	ch, err := conn.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	return ch.PublishWithContext(context.Background(), Exchange, RefreshKey, false, false, amqp091.Publishing{
		Timestamp:   time.Now(),
		ContentType: "application/json",
		Body:        body,
	})
}

func (p *publisher) PublishRefresh(notice RefreshNotice) {
	go func() {
		p.pending <- notice
	}()
}
