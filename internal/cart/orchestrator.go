// Package cart orchestrates the authenticated cart mutations. Every
// mutation re-fetches the cart from the upstream afterwards; the
// server-derived totals are authoritative and never patched locally.
package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/byway-labs/byway-gateway/internal/models"
	"github.com/byway-labs/byway-gateway/internal/normalize"
	"github.com/byway-labs/byway-gateway/internal/upstream"
)

// Notifier receives the non-fatal warnings the orchestrator emits.
type Notifier interface {
	Publish(level, message string)
}

// Orchestrator wraps the upstream cart endpoints with the auth
// precondition, re-fetch-after-mutation and validation rules.
type Orchestrator struct {
	client   *upstream.Client
	mapper   *normalize.Mapper
	notifier Notifier
}

// NewOrchestrator creates a cart orchestrator.
func NewOrchestrator(client *upstream.Client, mapper *normalize.Mapper, notifier Notifier) *Orchestrator {
	return &Orchestrator{
		client:   client,
		mapper:   mapper,
		notifier: notifier,
	}
}

// Fetch returns the current cart. Requires a token; a missing token
// fails before any network call.
func (o *Orchestrator) Fetch(ctx context.Context, token string) (models.Cart, error) {
	if token == "" {
		return models.Cart{}, upstream.ErrUnauthenticated
	}

	raw, err := o.client.GetCart(ctx, token)
	if err != nil {
		return models.Cart{}, err
	}

	cart := o.mapper.Cart(*raw)
	if !cart.TotalsConsistent() {
		slog.Warn("cart totals violate invariant",
			"sub_total", cart.SubTotal,
			"tax", cart.Tax,
			"discount", cart.Discount,
			"total", cart.Total,
		)
	}
	return cart, nil
}

// Add puts a course in the cart and returns the re-fetched cart. A
// duplicate add is downgraded to a warning notification; the cart is
// still re-synced.
func (o *Orchestrator) Add(ctx context.Context, token string, courseID int64) (models.Cart, error) {
	if token == "" {
		return models.Cart{}, upstream.ErrUnauthenticated
	}

	err := o.client.AddToCart(ctx, token, courseID)
	if err != nil {
		if errors.Is(err, upstream.ErrAlreadyInCart) {
			o.notifier.Publish("warning", "Course is already in your cart")
		} else {
			return models.Cart{}, err
		}
	} else {
		o.notifier.Publish("info", "Course added to cart")
	}

	return o.Fetch(ctx, token)
}

// Remove takes a course out of the cart and returns the re-fetched
// cart.
func (o *Orchestrator) Remove(ctx context.Context, token string, courseID int64) (models.Cart, error) {
	if token == "" {
		return models.Cart{}, upstream.ErrUnauthenticated
	}

	if err := o.client.RemoveFromCart(ctx, token, courseID); err != nil {
		return models.Cart{}, err
	}
	o.notifier.Publish("info", "Course removed from cart")

	return o.Fetch(ctx, token)
}

// Checkout validates the form client-side, submits the order and
// returns the confirmation together with the re-fetched cart (the
// upstream empties it on success). Validation failures never reach
// the network.
func (o *Orchestrator) Checkout(ctx context.Context, token string, form CheckoutForm) (models.Order, models.Cart, error) {
	if token == "" {
		return models.Order{}, models.Cart{}, upstream.ErrUnauthenticated
	}

	req, err := form.Build()
	if err != nil {
		return models.Order{}, models.Cart{}, err
	}

	order, err := o.client.Checkout(ctx, token, req)
	if err != nil {
		return models.Order{}, models.Cart{}, err
	}

	cart, err := o.Fetch(ctx, token)
	if err != nil {
		// The order went through; a failed re-sync should not look
		// like a failed checkout.
		slog.Error("cart re-fetch after checkout failed", "error", err)
		cart = models.Cart{}
	}

	o.notifier.Publish("info", "Order placed successfully")
	return *order, cart, nil
}
