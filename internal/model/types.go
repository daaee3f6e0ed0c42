// Package model defines the records gitpace persists: tracked repositories,
// their review progress and the ledger of review events.
//
// A repository is reviewed one commit at a time along its default branch.
// Progress records where the reviewer stands (CurrentSHA) and where they are
// heading (TargetReference); every forward step appends a ReviewLog entry so
// the reviewer's actual pace can be measured against the ideal one.
package model

import (
	"fmt"
	"strings"
	"time"
)

// LatestReference is the target sentinel that follows the branch tip.
const LatestReference = "latest"

// Defaults applied to newly registered repositories.
const (
	DefaultIdealPace  = 20.0
	DefaultPacePeriod = PacePeriod30Days
)

// PacePeriod selects the trailing window used to measure actual pace.
type PacePeriod string

const (
	PacePeriod7Days  PacePeriod = "7-days"
	PacePeriod30Days PacePeriod = "30-days"
	PacePeriodAll    PacePeriod = "all-time"
)

// PacePeriods lists the accepted periods in display order.
var PacePeriods = []PacePeriod{PacePeriod7Days, PacePeriod30Days, PacePeriodAll}

// Valid reports whether p is one of PacePeriods.
func (p PacePeriod) Valid() bool {
	for _, known := range PacePeriods {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePacePeriod normalizes s and validates it.
func ParsePacePeriod(s string) (PacePeriod, error) {
	p := PacePeriod(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("invalid pace period %q (must be one of 7-days, 30-days, all-time)", s)
	}
	return p, nil
}

// Progress is the reviewer's position and settings for one repository.
type Progress struct {
	CurrentSHA      string     `json:"current_sha,omitempty" yaml:"current_sha,omitempty"`
	TargetReference string     `json:"target_reference" yaml:"target_reference"`
	IdealPace       float64    `json:"ideal_pace" yaml:"ideal_pace"`
	PacePeriod      PacePeriod `json:"pace_period" yaml:"pace_period"`
}

// DefaultProgress returns the settings of a freshly added repository.
func DefaultProgress() Progress {
	return Progress{
		TargetReference: LatestReference,
		IdealPace:       DefaultIdealPace,
		PacePeriod:      DefaultPacePeriod,
	}
}

// Repository is a tracked working copy.
type Repository struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Path          string    `json:"path"`
	DefaultBranch string    `json:"default_branch"`
	Progress      Progress  `json:"progress"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ReviewLog records one forward step.
type ReviewLog struct {
	ID           int64     `json:"id"`
	RepositoryID int64     `json:"repository_id"`
	CommitSHA    string    `json:"commit_sha"`
	CreatedAt    time.Time `json:"created_at"`
}
