// Package submitwkr drains the host signal bus and runs the full
// normalization, dedup, routing, and submission pipeline for each signal.
package submitwkr

import (
	"context"

	"github.com/davecgh/go-spew/spew"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"

	"osrsloottracker.dev/plugin-core/internal/app/appconfig"
	"osrsloottracker.dev/plugin-core/internal/dedup"
	"osrsloottracker.dev/plugin-core/internal/destination"
	"osrsloottracker.dev/plugin-core/internal/host"
	"osrsloottracker.dev/plugin-core/internal/model"
	"osrsloottracker.dev/plugin-core/internal/normalizer"
	"osrsloottracker.dev/plugin-core/internal/routing"
	"osrsloottracker.dev/plugin-core/internal/settings"
	"osrsloottracker.dev/plugin-core/internal/submit"
)

type WorkerDeps struct {
	fx.In

	Bus          *host.Bus
	Settings     *settings.Service
	Normalizer   *normalizer.Normalizer
	Dedup        *dedup.Filter
	Orchestrator *submit.Orchestrator
}

type Worker struct {
	// count is the number of spawned consumers
	count int

	WorkerDeps
}

func Start(conf *appconfig.Config, deps WorkerDeps) {
	ch := make(chan error)
	// handle & dump errors from workers
	go func() {
		for {
			err := <-ch
			if err != nil {
				log.Error().Err(err).Msg("submit worker error")
			}
		}
	}()

	submitWorkers := &Worker{
		WorkerDeps: deps,
	}
	for i := 0; i < conf.SubmitWorkers; i++ {
		go func() {
			err := submitWorkers.Consumer(context.Background(), ch)
			if err != nil {
				ch <- err
			}
		}()
		submitWorkers.count += 1
	}
}

// Consumer drains the bus until it is closed or the context is canceled.
// Per-signal failures are reported on ch and never stop the loop.
func (w *Worker) Consumer(ctx context.Context, ch chan error) error {
	for {
		select {
		case sig, ok := <-w.Bus.Signals():
			if !ok {
				return nil
			}
			// no worker-owned deadline here: the screenshot wait is bounded
			// only by the host's completion signal, and the transport client
			// carries its own per-request timeout
			if err := w.consumeSignal(ctx, sig); err != nil {
				log.Error().
					Err(err).
					Str("signal", spew.Sdump(sig)).
					Msg("failed to consume signal")
				ch <- err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (w *Worker) consumeSignal(ctx context.Context, sig host.Signal) error {
	snapshot := w.Settings.Snapshot()

	drop := w.normalize(sig, snapshot)
	if drop == nil {
		return nil
	}

	decision := routing.Decide(routing.Input{
		Drop:               drop,
		Destinations:       destination.Parse(snapshot.DropDestinations),
		LegacyServerID:     snapshot.SelectedServerID,
		LegacyEventID:      snapshot.SelectedEventID,
		CaptureScreenshots: snapshot.CaptureScreenshots,
	})
	if !decision.Submittable() {
		return nil
	}

	// abort statuses are flags for the panel, not pipeline failures; they
	// must never cross the event boundary as errors
	state, statusErr := w.Orchestrator.Process(ctx, drop, decision)
	log.Debug().
		Str("candidateId", drop.ID).
		Str("state", string(state)).
		AnErr("status", statusErr).
		Msg("candidate processed")
	return nil
}

// normalize applies the per-content-type tracking toggles and the dedup
// policy, returning nil when the signal produces nothing submittable.
func (w *Worker) normalize(sig host.Signal, snapshot settings.Settings) *model.CandidateDrop {
	switch s := sig.(type) {
	case *host.LootSignal:
		if !snapshot.TrackLoot {
			return nil
		}
		return w.Normalizer.FromLoot(s)

	case *host.ChatSignal:
		drop := w.Normalizer.FromChat(s)
		if drop == nil {
			return nil
		}
		switch drop.Kind {
		case model.KindCollectionLog:
			if !snapshot.TrackCollectionLog || !w.Dedup.AdmitCollectionLog(drop.DisplayName) {
				return nil
			}
		case model.KindPet:
			if !snapshot.TrackPets {
				return nil
			}
			drop.DisplayName = w.Dedup.ResolvePetName(drop)
		}
		return drop

	default:
		log.Warn().Str("signal", spew.Sdump(sig)).Msg("unknown signal type, dropping")
		return nil
	}
}
