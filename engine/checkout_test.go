package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

func runCheckout(e *Engine, items []travel.CartItem) (travel.CheckoutSummary, error) {
	pipe := stream.NewItemPipe()

	go func() {
		for _, item := range items {
			if err := pipe.Send(context.Background(), item); err != nil {
				return
			}
		}
		pipe.CloseSend()
	}()

	return e.Checkout(context.Background(), pipe)
}

func TestCheckoutAggregatesItems(t *testing.T) {
	e := newTestEngine(t, testFlights())

	items := []travel.CartItem{
		{Kind: travel.ItemFlight, ID: "V0001", Description: "Sao Paulo to Rio", Price: 350.00},
		{Kind: travel.ItemLodging, ID: "H0042", Description: "Copacabana hotel, 2 nights", Price: 480.00},
		{Kind: travel.ItemBundle, ID: "B0007", Description: "Beach weekend combo", Price: 1200.00},
	}

	summary, err := runCheckout(e, items)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.ItemCount)
	assert.InDelta(t, 2030.00, summary.Total, 0.001)
	assert.True(t, summary.Completed)
	assert.True(t, strings.HasPrefix(summary.Confirmation, "PKG-"))
	assert.Equal(t, []string{
		"flight: Sao Paulo to Rio",
		"lodging: Copacabana hotel, 2 nights",
		"bundle: Beach weekend combo",
	}, summary.Preview)
}

func TestCheckoutPreviewBounded(t *testing.T) {
	e := newTestEngine(t, testFlights())

	var items []travel.CartItem
	for i := 0; i < 12; i++ {
		items = append(items, travel.CartItem{
			Kind:  travel.ItemFlight,
			ID:    fmt.Sprintf("V%04d", i+1),
			Price: 100,
		})
	}

	summary, err := runCheckout(e, items)
	require.NoError(t, err)

	assert.Equal(t, 12, summary.ItemCount, "count covers every item")
	assert.Len(t, summary.Preview, previewLimit, "preview samples only the first items")
	assert.Equal(t, "flight: V0001", summary.Preview[0])
	assert.InDelta(t, 1200.00, summary.Total, 0.001)
}

func TestCheckoutEmptyStream(t *testing.T) {
	e := newTestEngine(t, testFlights())

	summary, err := runCheckout(e, nil)
	require.NoError(t, err)

	assert.Zero(t, summary.ItemCount)
	assert.Empty(t, summary.Preview)
	assert.Zero(t, summary.Total)
	assert.True(t, summary.Completed)
}

func TestCheckoutAbortedStreamYieldsNoSummary(t *testing.T) {
	e := newTestEngine(t, testFlights())
	pipe := stream.NewItemPipe()

	done := make(chan struct{})
	var summary travel.CheckoutSummary
	var checkoutErr error
	go func() {
		summary, checkoutErr = e.Checkout(context.Background(), pipe)
		close(done)
	}()

	require.NoError(t, pipe.Send(context.Background(),
		travel.CartItem{Kind: travel.ItemFlight, ID: "V0001", Price: 350}))
	pipe.Abort()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("checkout did not return after abort")
	}

	require.Error(t, checkoutErr)
	assert.True(t, errors.IsAborted(checkoutErr))
	assert.Equal(t, travel.CheckoutSummary{}, summary, "aborted calls emit no summary")
	assert.Zero(t, e.ActiveCalls())
}

func TestCheckoutInvalidItems(t *testing.T) {
	e := newTestEngine(t, testFlights())

	tests := []struct {
		name string
		item travel.CartItem
	}{
		{"unknown kind", travel.CartItem{Kind: "cruise", ID: "C0001", Price: 10}},
		{"empty identifier", travel.CartItem{Kind: travel.ItemFlight, Price: 10}},
		{"negative price", travel.CartItem{Kind: travel.ItemFlight, ID: "V0001", Price: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCheckout(e, []travel.CartItem{tt.item})
			require.Error(t, err)
			assert.True(t, errors.IsInvalid(err))
			assert.ErrorIs(t, err, errors.ErrInvalidItem)
		})
	}
}
