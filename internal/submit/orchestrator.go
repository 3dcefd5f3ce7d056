// Package submit owns the dispatch half of the pipeline: screenshot
// acquisition, payload assembly, the single submission attempt, and the
// post-success projections.
package submit

import (
	"context"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"osrsloottracker.dev/plugin-core/internal/auth"
	trackererrors "osrsloottracker.dev/plugin-core/internal/pkg/errors"
	"osrsloottracker.dev/plugin-core/internal/model"
	"osrsloottracker.dev/plugin-core/internal/transport"
)

// State is the terminal or intermediate lifecycle stage of one submission.
type State string

const (
	StateNormalized         State = "NORMALIZED"
	StateAwaitingScreenshot State = "AWAITING_SCREENSHOT"
	StateBuildingPayload    State = "BUILDING_PAYLOAD"
	StateDispatched         State = "DISPATCHED"
	StateAborted            State = "ABORTED"
)

// Orchestrator drives one candidate drop from routing decision to dispatch.
// Invariants: at most one submission attempt per candidate, and the recent
// projection is updated only after the transport reports success. Screenshot
// failure degrades to a submission without an image, never to an abort.
type Orchestrator struct {
	auth    *auth.Manager
	client  transport.Client
	screens ScreenshotProvider
	recent  *RecentDrops
	stats   *StatsRefresher

	clock func() time.Time
}

func NewOrchestrator(
	authManager *auth.Manager,
	client transport.Client,
	screens ScreenshotProvider,
	recent *RecentDrops,
	stats *StatsRefresher,
) *Orchestrator {
	return &Orchestrator{
		auth:    authManager,
		client:  client,
		screens: screens,
		recent:  recent,
		stats:   stats,
		clock:   time.Now,
	}
}

// WithClock overrides the record timestamp source.
func (o *Orchestrator) WithClock(clock func() time.Time) *Orchestrator {
	o.clock = clock
	return o
}

// Process runs the submission lifecycle for one routed candidate. It returns
// the terminal state plus the coded status behind an abort; the status is a
// flag for the panel, callers recover from it locally.
func (o *Orchestrator) Process(ctx context.Context, drop *model.CandidateDrop, decision *model.RoutingDecision) (State, error) {
	if !decision.Submittable() {
		log.Debug().Str("candidateId", drop.ID).Msg("no qualifying destinations, aborting")
		return StateAborted, trackererrors.ErrNoDestinations
	}
	if !o.auth.IsAuthenticated() {
		log.Debug().Str("candidateId", drop.ID).Msg("not authenticated, aborting")
		return StateAborted, trackererrors.ErrAuthRequired
	}

	l := log.With().
		Str("candidateId", drop.ID).
		Str("kind", string(drop.Kind)).
		Str("player", drop.PlayerName).
		Logger()

	var shot *transport.ScreenshotResult
	if decision.AttachScreenshot {
		// The first qualifying server scopes upload validation, matching how
		// the backend resolves the uploader's storage tier.
		result := <-o.screens.Capture(ctx, decision.Destinations[0].ServerID)
		if result.Err != nil {
			l.Warn().Err(result.Err).Msg("screenshot capture failed, submitting without image")
		} else {
			shot = result.Ref
		}
	}

	if err := o.dispatch(ctx, drop, decision, shot); err != nil {
		l.Error().Err(err).Msg("submission failed")
		return StateAborted, trackererrors.New(trackererrors.CodeTransportFailed, "submission failed").
			WithExtras(trackererrors.Extras{"error": err.Error()})
	}

	o.recent.Append(o.recordsFor(drop, decision, shot)...)
	o.stats.RequestRefresh(drop.PlayerName)

	l.Info().
		Int("destinations", len(decision.Destinations)).
		Int("totalValue", decision.TotalValue).
		Msg("submission dispatched")
	return StateDispatched, nil
}

func (o *Orchestrator) dispatch(
	ctx context.Context,
	drop *model.CandidateDrop,
	decision *model.RoutingDecision,
	shot *transport.ScreenshotResult,
) error {
	dests := wireDestinations(decision.Destinations)
	shotURL, shotData := screenshotFields(shot)

	switch drop.Kind {
	case model.KindCollectionLog:
		return o.client.SubmitCollectionLog(ctx, &transport.CollectionLogPayload{
			Username:       drop.PlayerName,
			ItemName:       drop.DisplayName,
			Destinations:   dests,
			ScreenshotURL:  shotURL,
			ScreenshotData: shotData,
		})
	case model.KindPet:
		return o.client.SubmitPet(ctx, &transport.PetPayload{
			Username:       drop.PlayerName,
			PetName:        drop.DisplayName,
			Message:        drop.RawMessage,
			Destinations:   dests,
			ScreenshotURL:  shotURL,
			ScreenshotData: shotData,
		})
	default:
		return o.client.SubmitDropBatch(ctx, &transport.DropBatchPayload{
			Username:       drop.PlayerName,
			MonsterName:    drop.SourceName,
			DropType:       string(drop.Kind),
			Items:          decision.Items,
			TotalValue:     decision.TotalValue,
			Destinations:   dests,
			ScreenshotURL:  shotURL,
			ScreenshotData: shotData,
		})
	}
}

func (o *Orchestrator) recordsFor(
	drop *model.CandidateDrop,
	decision *model.RoutingDecision,
	shot *transport.ScreenshotResult,
) []model.RecentDropRecord {
	now := o.clock()
	shotURL, _ := screenshotFields(shot)

	if drop.Kind != model.KindItemDrop {
		label := drop.DisplayName
		if label == "" && drop.Kind == model.KindPet {
			// unresolved pet names degrade to a generic label; the backend
			// still receives the raw message for its own extraction
			label = "Pet"
		}
		return []model.RecentDropRecord{{
			ID:            xid.New().String(),
			PlayerName:    drop.PlayerName,
			ItemName:      label,
			Quantity:      1,
			SourceName:    drop.SourceName,
			Kind:          drop.Kind,
			ScreenshotURL: shotURL,
			CreatedAt:     now,
		}}
	}

	return lo.Map(decision.Items, func(item model.DropItem, _ int) model.RecentDropRecord {
		return model.RecentDropRecord{
			ID:            xid.New().String(),
			PlayerName:    drop.PlayerName,
			ItemName:      item.Name,
			Quantity:      item.Quantity,
			Value:         item.Value,
			SourceName:    drop.SourceName,
			Kind:          drop.Kind,
			ScreenshotURL: shotURL,
			CreatedAt:     now,
		}
	})
}

func wireDestinations(dests []model.QualifiedDestination) []transport.Destination {
	return lo.Map(dests, func(d model.QualifiedDestination, _ int) transport.Destination {
		return transport.Destination{
			GuildID:    d.ServerID,
			ChannelIDs: d.ChannelIDs,
			EventID:    d.EventID.ValueOrZero(),
		}
	})
}

func screenshotFields(shot *transport.ScreenshotResult) (url, data string) {
	if shot == nil {
		return "", ""
	}
	if shot.URL != "" {
		return shot.URL, ""
	}
	return "", shot.Base64
}
