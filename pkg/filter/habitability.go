// Package filter holds the record predicates applied by the pipeline.
package filter

import (
	"github.com/ajitpratap0/habitable/pkg/models"
)

// Bounds of the habitability test. Both insolation bounds are exclusive.
const (
	DispositionConfirmed = "CONFIRMED"
	MinInsolation        = 0.36
	MaxInsolation        = 1.11
	MaxRadius            = 1.6
)

// Predicate reports whether a record should be kept. Predicates must be pure.
type Predicate func(record *models.Record) bool

// Habitable reports whether a KOI row is a confirmed planet receiving an
// Earth-like stellar flux with a radius below 1.6 Earth radii.
func Habitable(record *models.Record) bool {
	if record.String(models.FieldDisposition) != DispositionConfirmed {
		return false
	}

	insol, ok := record.Float(models.FieldInsolation)
	if !ok || insol <= MinInsolation || insol >= MaxInsolation {
		return false
	}

	prad, ok := record.Float(models.FieldRadius)
	return ok && prad < MaxRadius
}

