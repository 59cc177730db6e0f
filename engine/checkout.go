package engine

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

// Checkout consumes the client's item stream and emits exactly one
// summary when the client signals end-of-stream. An aborted stream
// yields no summary: partial state is discarded and the aborted
// condition surfaces to the caller.
func (e *Engine) Checkout(ctx context.Context, items stream.ItemReceiver) (travel.CheckoutSummary, error) {
	callID, release := e.beginCall(ShapeClientStream)
	var callErr error
	defer func() { release(callErr) }()

	var (
		count   int
		total   float64
		preview []string
	)

	for {
		item, err := items.Recv(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			callErr = errors.WrapAborted(err, "engine", "Checkout", "receive item")
			e.logger.Info("checkout aborted, discarding partial cart",
				"call_id", callID, "items_received", count)
			return travel.CheckoutSummary{}, callErr
		}

		if err := validateItem(item); err != nil {
			callErr = err
			return travel.CheckoutSummary{}, callErr
		}

		count++
		total += item.Price
		if len(preview) < previewLimit {
			preview = append(preview, previewLine(item))
		}
		e.metrics.recordCartItem(string(item.Kind))
	}

	// Simulated payment processing after the last item.
	if err := e.checkoutDelay.Wait(ctx); err != nil {
		callErr = errors.WrapAborted(err, "engine", "Checkout", "payment processing")
		return travel.CheckoutSummary{}, callErr
	}

	summary := travel.CheckoutSummary{
		ItemCount:    count,
		Preview:      preview,
		Total:        total,
		Confirmation: e.confirmationCode(),
		Completed:    true,
		Timestamp:    e.now(),
	}

	e.logger.Info("checkout completed",
		"call_id", callID,
		"items", summary.ItemCount,
		"total", summary.Total,
		"confirmation", summary.Confirmation)

	return summary, nil
}

// validateItem rejects malformed cart items at the engine boundary.
func validateItem(item travel.CartItem) error {
	if _, ok := travel.ParseItemKind(string(item.Kind)); !ok {
		return errors.WrapInvalid(
			fmt.Errorf("%w: unknown kind %q", errors.ErrInvalidItem, item.Kind),
			"engine", "Checkout", "validate item")
	}
	if item.ID == "" {
		return errors.WrapInvalid(
			fmt.Errorf("%w: empty identifier", errors.ErrInvalidItem),
			"engine", "Checkout", "validate item")
	}
	if item.Price < 0 {
		return errors.WrapInvalid(
			fmt.Errorf("%w: negative price %.2f", errors.ErrInvalidItem, item.Price),
			"engine", "Checkout", "validate item")
	}
	return nil
}

func previewLine(item travel.CartItem) string {
	if item.Description != "" {
		return fmt.Sprintf("%s: %s", item.Kind, item.Description)
	}
	return fmt.Sprintf("%s: %s", item.Kind, item.ID)
}

// confirmationCode builds a short order reference from a fresh ID.
func (e *Engine) confirmationCode() string {
	id := strings.ReplaceAll(e.newID(), "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return "PKG-" + strings.ToUpper(id)
}
