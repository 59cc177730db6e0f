package engine

import (
	"context"
	"fmt"

	"github.com/c360/travelstreams/errors"
	"github.com/c360/travelstreams/stream"
	"github.com/c360/travelstreams/travel"
)

// timelineStep is one fixed phase of the monitoring state machine.
type timelineStep struct {
	phase    travel.FlightPhase
	format   string
	progress int
}

// timeline is the ordered lifecycle every monitored flight walks
// through. Progress is strictly increasing and ends at 100.
var timeline = []timelineStep{
	{travel.PhaseAwaitingDeparture, "Flight %s waiting at the departure gate", 10},
	{travel.PhaseBoarding, "Flight %s boarding started", 30},
	{travel.PhaseReadyForDeparture, "Flight %s ready for departure", 50},
	{travel.PhaseDeparted, "Flight %s departed successfully", 60},
	{travel.PhaseEnRoute, "Flight %s cruising at 35,000 feet", 80},
	{travel.PhaseArrived, "Flight %s arrived at destination", 95},
	{travel.PhaseCompleted, "Flight %s completed, passengers deplaning", 100},
}

// Monitor streams the lifecycle timeline for one flight. Each update
// is paced by the monitor delay policy and pushed through the sender,
// which blocks until the consumer is ready; the engine never holds
// more than the update it is currently emitting.
//
// Cancellation between updates is a normal partial delivery, not an
// error: the engine stops emitting and returns nil. Only transport
// failure surfaces as an error.
func (e *Engine) Monitor(ctx context.Context, flightNumber string, sender stream.StatusSender) error {
	callID, release := e.beginCall(ShapeServerStream)
	var callErr error
	defer func() { release(callErr) }()

	if flightNumber == "" {
		callErr = errors.WrapInvalid(
			fmt.Errorf("%w: empty flight number", errors.ErrInvalidCriteria),
			"engine", "Monitor", "validate request")
		return callErr
	}

	e.logger.Info("monitoring started", "call_id", callID, "flight", flightNumber)

	for _, step := range timeline {
		if err := e.monitorDelay.Wait(ctx); err != nil {
			e.logger.Debug("monitoring cancelled between updates",
				"call_id", callID, "flight", flightNumber, "phase", step.phase)
			return nil
		}

		update := travel.StatusUpdate{
			FlightNumber: flightNumber,
			Phase:        step.phase,
			Message:      fmt.Sprintf(step.format, flightNumber),
			Timestamp:    e.now(),
			Progress:     step.progress,
		}

		if err := sender.Send(ctx, update); err != nil {
			if errors.IsAborted(err) {
				e.logger.Debug("monitoring consumer went away",
					"call_id", callID, "flight", flightNumber, "phase", step.phase)
				return nil
			}
			callErr = errors.WrapUnavailable(err, "engine", "Monitor", "send update")
			return callErr
		}

		e.metrics.recordTimelineUpdate(flightNumber)
	}

	e.logger.Info("monitoring completed", "call_id", callID, "flight", flightNumber)
	return nil
}
