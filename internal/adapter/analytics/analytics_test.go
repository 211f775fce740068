package analytics_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/rpkit/shop-ui/internal/adapter/analytics"
	"github.com/rpkit/shop-ui/internal/core/domain"
)

type MockProducerClient struct {
	mock.Mock
}

func (c *MockProducerClient) ProduceSync(
	ctx context.Context, rs ...*kgo.Record,
) kgo.ProduceResults {
	args := c.Called(ctx, rs)
	return args.Get(0).(kgo.ProduceResults)
}

func (c *MockProducerClient) Close() {
	c.Called()
}

func testEvent() domain.SettlementEvent {
	return domain.SettlementEvent{
		ShopName:      "24/7 Store",
		PaymentMethod: domain.PayCash,
		Total:         24,
		Lines:         1,
		OK:            true,
	}
}

func TestSettlementProducer(t *testing.T) {
	t.Run("PublishesJSONRecordKeyedByShop", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := analytics.NewSettlementProducer(
			analytics.ClientValueOpt(cl),
			analytics.TopicOpt("shop-settlements"),
		)
		require.NoError(t, err)

		var got *kgo.Record
		cl.On("ProduceSync", t.Context(), mock.Anything).
			Run(func(args mock.Arguments) {
				rs := args.Get(1).([]*kgo.Record)
				require.Len(t, rs, 1)
				got = rs[0]
			}).
			Return(kgo.ProduceResults{{}}).Once()

		require.NoError(t, p.PublishSettlement(t.Context(), testEvent()))

		require.NotNil(t, got)
		assert.Equal(t, "shop-settlements", got.Topic)
		assert.Equal(t, []byte("24/7 Store"), got.Key)

		var rec struct {
			ShopName      string  `json:"shop_name"`
			PaymentMethod string  `json:"payment_method"`
			Total         float64 `json:"total"`
			Lines         int     `json:"lines"`
			OK            bool    `json:"ok"`
		}
		require.NoError(t, json.Unmarshal(got.Value, &rec))
		assert.Equal(t, "24/7 Store", rec.ShopName)
		assert.Equal(t, "cash", rec.PaymentMethod)
		assert.InDelta(t, 24, rec.Total, 1e-9)
		assert.Equal(t, 1, rec.Lines)
		assert.True(t, rec.OK)
	})

	t.Run("RetriesTransientFailure", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := analytics.NewSettlementProducer(
			analytics.ClientValueOpt(cl),
			analytics.TopicOpt("shop-settlements"),
		)
		require.NoError(t, err)

		failed := kgo.ProduceResults{{Err: errors.New("broker unavailable")}}
		cl.On("ProduceSync", t.Context(), mock.Anything).
			Return(failed).Twice()
		cl.On("ProduceSync", t.Context(), mock.Anything).
			Return(kgo.ProduceResults{{}}).Once()

		require.NoError(t, p.PublishSettlement(t.Context(), testEvent()))
		cl.AssertExpectations(t)
	})

	t.Run("CancelledContext", func(t *testing.T) {
		cl := new(MockProducerClient)
		p, err := analytics.NewSettlementProducer(
			analytics.ClientValueOpt(cl),
			analytics.TopicOpt("shop-settlements"),
		)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		require.Error(t, p.PublishSettlement(ctx, testEvent()))
		cl.AssertNotCalled(t, "ProduceSync", mock.Anything, mock.Anything)
	})

	t.Run("TooFewOpts", func(t *testing.T) {
		assert.Panics(t, func() {
			_, _ = analytics.NewSettlementProducer(
				analytics.TopicOpt("shop-settlements"),
			)
		})
	})
}
