// Package templates holds the server-rendered pages.
//
//go:generate templ generate
package templates

import (
	"github.com/Conceptual-Machines/wordexpander/internal/models"
	"github.com/Conceptual-Machines/wordexpander/internal/session"
)

// PageData is everything the main page renders
type PageData struct {
	Tones    []models.ToneOption
	Lengths  []models.LengthOption
	Snapshot session.Snapshot
}

func (d PageData) inFlight() bool {
	return d.Snapshot.Status == session.StatusInFlight
}
