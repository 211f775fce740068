package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rpkit/shop-ui/internal/core/domain"
	"github.com/rpkit/shop-ui/internal/core/port"
	"github.com/rpkit/shop-ui/pkg/retry"
)

var _ port.SettlementPublisher = (*SettlementProducer)(nil)

var ErrTooFewOpts = errors.New("too few options")

// ProducerClient is the used subset of [kgo.Client].
type ProducerClient interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
	Close()
}

type producerOpts struct {
	cl    ProducerClient
	topic string
}

type ProducerOpt func(*producerOpts) error

func ClientOpt(ctx context.Context, seedBrokers []string) ProducerOpt {
	return func(o *producerOpts) error {
		cl, err := kgo.NewClient(
			kgo.SeedBrokers(seedBrokers...),
			kgo.ProducerLinger(0),
		)
		if err != nil {
			return err
		}
		if err := cl.Ping(ctx); err != nil {
			cl.Close()
			return err
		}
		o.cl = cl
		return nil
	}
}

func TopicOpt(topic string) ProducerOpt {
	return func(o *producerOpts) error {
		o.topic = topic
		return nil
	}
}

// ClientValueOpt injects a preconfigured client, bypassing broker
// discovery. Used by tests.
func ClientValueOpt(cl ProducerClient) ProducerOpt {
	return func(o *producerOpts) error {
		o.cl = cl
		return nil
	}
}

// settlementRecord is the JSON record value published per checkout.
type settlementRecord struct {
	ShopName      string    `json:"shop_name"`
	PaymentMethod string    `json:"payment_method"`
	Total         float64   `json:"total"`
	Lines         int       `json:"lines"`
	OK            bool      `json:"ok"`
	At            time.Time `json:"at"`
}

// SettlementProducer publishes one record per checkout settlement,
// keyed by shop name. Delivery is best effort with a short retry.
type SettlementProducer struct {
	cl    ProducerClient
	topic string
}

func NewSettlementProducer(opts ...ProducerOpt) (SettlementProducer, error) {
	const op = "NewSettlementProducer"

	if len(opts) != 2 {
		panic(fmt.Errorf("%s: %w", op, ErrTooFewOpts)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return SettlementProducer{}, fmt.Errorf("%s: %w", op, err)
		}
	}
	return SettlementProducer{options.cl, options.topic}, nil
}

func (p SettlementProducer) Close() {
	const op = "SettlementProducer.Close"
	log := slog.With("op", op)
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p SettlementProducer) PublishSettlement(
	ctx context.Context, ev domain.SettlementEvent,
) error {
	const op = "SettlementProducer.PublishSettlement"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	r, err := p.createRecord(ev)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	retryCfg := retry.RetryConfig{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(50 * time.Millisecond),
	}
	err = retry.Do(ctx, retryCfg, func() error {
		return p.cl.ProduceSync(ctx, r).FirstErr()
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (p SettlementProducer) createRecord(
	ev domain.SettlementEvent,
) (*kgo.Record, error) {
	const op = "SettlementProducer.createRecord"

	v, err := json.Marshal(settlementRecord{
		ShopName:      ev.ShopName,
		PaymentMethod: string(ev.PaymentMethod),
		Total:         ev.Total,
		Lines:         ev.Lines,
		OK:            ev.OK,
		At:            time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &kgo.Record{
		Key:   []byte(ev.ShopName),
		Value: v,
		Topic: p.topic,
	}, nil
}
