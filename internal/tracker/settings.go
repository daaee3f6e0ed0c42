package tracker

import (
	"context"
	"math"
	"strings"

	"github.com/masmgr/gitpace/internal/history"
	"github.com/masmgr/gitpace/internal/model"
)

// Settings is a requested change of the review target and paces.
type Settings struct {
	TargetReference string
	IdealPace       float64
	PacePeriod      string
}

// SettingsFrom returns the settings currently held by p.
func SettingsFrom(p model.Progress) Settings {
	return Settings{
		TargetReference: p.TargetReference,
		IdealPace:       p.IdealPace,
		PacePeriod:      string(p.PacePeriod),
	}
}

// UpdateSettings validates s, persists it and syncs. Each rejected field is
// returned as a *FieldError and nothing is written.
func (e *Engine) UpdateSettings(ctx context.Context, s Settings) (*View, error) {
	ctx, release, err := e.reconciler.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	target := strings.TrimSpace(s.TargetReference)
	if target == "" {
		return nil, &FieldError{Field: "target", Err: ErrEmptyTarget}
	}
	if history.IsLatest(target) {
		target = model.LatestReference
	}
	if s.IdealPace <= 0 || math.IsNaN(s.IdealPace) || math.IsInf(s.IdealPace, 0) {
		return nil, &FieldError{Field: "ideal_pace", Err: ErrInvalidPace}
	}
	period, err := model.ParsePacePeriod(s.PacePeriod)
	if err != nil {
		return nil, &FieldError{Field: "pace_period", Err: err}
	}

	e.index.Invalidate()
	if _, _, err := e.resolver().Position(ctx, target); err != nil {
		return nil, &FieldError{Field: "target", Err: err}
	}

	progress, err := e.store.Progress(ctx, e.session.Repository.ID)
	if err != nil {
		return nil, stateError("read progress", err)
	}
	progress.TargetReference = target
	progress.IdealPace = s.IdealPace
	progress.PacePeriod = period
	if err := e.store.SaveProgress(ctx, e.session.Repository.ID, progress); err != nil {
		return nil, stateError("save settings", err)
	}
	return e.sync(ctx)
}
