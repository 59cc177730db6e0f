package engine

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

func collectTimeline(t *testing.T, e *Engine, flightNumber string) ([]travel.StatusUpdate, error) {
	t.Helper()
	pipe := stream.NewStatusPipe()

	errCh := make(chan error, 1)
	go func() {
		err := e.Monitor(context.Background(), flightNumber, pipe)
		pipe.Close()
		errCh <- err
	}()

	var updates []travel.StatusUpdate
	for {
		u, err := pipe.Recv(context.Background())
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		updates = append(updates, u)
	}
	return updates, <-errCh
}

func TestMonitorFullTimeline(t *testing.T) {
	e := newTestEngine(t, testFlights())

	updates, err := collectTimeline(t, e, "LA1001")
	require.NoError(t, err)
	require.Len(t, updates, 7)

	wantPhases := []travel.FlightPhase{
		travel.PhaseAwaitingDeparture,
		travel.PhaseBoarding,
		travel.PhaseReadyForDeparture,
		travel.PhaseDeparted,
		travel.PhaseEnRoute,
		travel.PhaseArrived,
		travel.PhaseCompleted,
	}
	wantProgress := []int{10, 30, 50, 60, 80, 95, 100}

	for i, u := range updates {
		assert.Equal(t, "LA1001", u.FlightNumber)
		assert.Equal(t, wantPhases[i], u.Phase)
		assert.Equal(t, wantProgress[i], u.Progress)
		assert.Contains(t, u.Message, "LA1001")
	}

	last := updates[len(updates)-1]
	assert.Equal(t, travel.PhaseCompleted, last.Phase)
	assert.Equal(t, 100, last.Progress)
}

func TestMonitorProgressMonotonic(t *testing.T) {
	e := newTestEngine(t, testFlights())

	updates, err := collectTimeline(t, e, "G32002")
	require.NoError(t, err)

	for i := 1; i < len(updates); i++ {
		assert.Greater(t, updates[i].Progress, updates[i-1].Progress,
			"progress must be strictly increasing")
	}
}

func TestMonitorEmptyFlightNumber(t *testing.T) {
	e := newTestEngine(t, testFlights())

	err := e.Monitor(context.Background(), "", stream.NewStatusPipe())
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Zero(t, e.ActiveCalls())
}

func TestMonitorCancellationIsNormalPartialExit(t *testing.T) {
	e := newTestEngine(t, testFlights())
	pipe := stream.NewStatusPipe()

	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Monitor(ctx, "LA1001", pipe)
	}()

	// Take two updates, then walk away.
	for i := 0; i < 2; i++ {
		u, err := pipe.Recv(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "LA1001", u.FlightNumber)
	}
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err, "cancellation between updates is not an error")
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
	assert.Zero(t, e.ActiveCalls())
}

func TestMonitorConsumerAbort(t *testing.T) {
	e := newTestEngine(t, testFlights())
	pipe := stream.NewStatusPipe()

	errCh := make(chan error, 1)
	go func() {
		errCh <- e.Monitor(context.Background(), "AD3003", pipe)
	}()

	_, err := pipe.Recv(context.Background())
	require.NoError(t, err)
	pipe.Abort()

	select {
	case err := <-errCh:
		assert.NoError(t, err, "consumer abort ends the stream quietly")
	case <-time.After(time.Second):
		t.Fatal("engine did not stop after consumer abort")
	}
	assert.Zero(t, e.ActiveCalls())
}
