package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rpkit/shop-ui/internal/core/domain"
)

// SettlementPolicy decides what happens to the cart once a purchase
// request settles.
type SettlementPolicy int

const (
	// ClearAlways resets the cart on success and failure alike. The
	// runtime is trusted to push a corrected snapshot if the purchase
	// did not actually go through. Matches the historical behavior.
	ClearAlways SettlementPolicy = iota

	// ClearOnSuccess keeps the cart when the purchase fails so the
	// player can retry.
	ClearOnSuccess
)

// Checkout serializes the cart into a purchase request, sends it to the
// game runtime and waits for settlement. Only one checkout may be
// outstanding at a time. The cart is reset according to the configured
// SettlementPolicy; a transport failure is reported to the caller but
// is otherwise diagnostic only.
func (s *Session) Checkout(ctx context.Context) error {
	const op = "Session.Checkout"
	log := slog.With("op", op)

	req, err := s.beginCheckout()
	if err != nil {
		return opErr(op, err)
	}

	sendErr := s.gateway.SendPurchase(ctx, req)
	s.endCheckout(sendErr)

	if sendErr != nil {
		log.Error("purchase request failed", "shop", req.ShopName, "err", sendErr)
	} else {
		log.Info("purchase settled",
			"shop", req.ShopName, "total", req.Total, "method", req.PaymentMethod)
	}

	s.publishSettlement(ctx, req, sendErr == nil)

	if sendErr != nil {
		return opErr(op, sendErr)
	}
	return nil
}

func (s *Session) beginCheckout() (domain.PurchaseRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.checkoutBusy {
		return domain.PurchaseRequest{}, ErrCheckoutInFlight
	}
	if len(s.cart) == 0 {
		return domain.PurchaseRequest{}, ErrEmptyCart
	}

	lines := make([]domain.PurchaseLine, 0, len(s.cart))
	for _, l := range s.cart {
		lines = append(lines, domain.PurchaseLine{
			ItemName: l.Item.Name,
			Quantity: l.Quantity,
		})
	}

	s.checkoutBusy = true
	return domain.PurchaseRequest{
		ShopName:      s.shopName,
		Cart:          lines,
		PaymentMethod: s.paymentMethod,
		Total:         cartTotal(s.cart),
	}, nil
}

func (s *Session) endCheckout(sendErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkoutBusy = false
	if sendErr == nil || s.policy == ClearAlways {
		s.cart = nil
	}
}

func (s *Session) publishSettlement(
	ctx context.Context, req domain.PurchaseRequest, ok bool,
) {
	const op = "Session.publishSettlement"

	if s.settlements == nil {
		return
	}

	ev := domain.SettlementEvent{
		ShopName:      req.ShopName,
		PaymentMethod: req.PaymentMethod,
		Total:         req.Total,
		Lines:         len(req.Cart),
		OK:            ok,
	}
	if err := s.settlements.PublishSettlement(ctx, ev); err != nil {
		slog.Warn("failed to publish settlement event", "op", op, "err", err)
	}
}

func opErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
