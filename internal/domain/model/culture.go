package model

import (
	"fmt"
	"strconv"
)

// Categorical operating environment fields.
const (
	EnvControlVsAutonomy        = "control_vs_autonomy"
	EnvOutcomeVsProcess         = "outcome_vs_process"
	EnvConflictStyle            = "conflict_style"
	EnvDecisionReality          = "decision_reality"
	EnvAmbiguityLoad            = "ambiguity_load"
	EnvHighPerformanceArchetype = "high_performance_archetype"
	EnvDimensionWeights         = "dimension_weights"
	EnvFatalRisks               = "fatal_risks"
	EnvCoachableRisks           = "coachable_risks"
)

// OperatingEnvironment describes how a team works. It is forwarded to the
// culture-fit service verbatim, so unknown keys survive the round trip.
type OperatingEnvironment map[string]any

// CategoricalFields lists the keys every operating environment carries.
func CategoricalFields() []string {
	return []string{
		EnvControlVsAutonomy,
		EnvOutcomeVsProcess,
		EnvConflictStyle,
		EnvDecisionReality,
		EnvAmbiguityLoad,
		EnvHighPerformanceArchetype,
	}
}

// MissingFields returns the categorical keys absent from e, in declaration order.
func (e OperatingEnvironment) MissingFields() []string {
	var missing []string
	for _, k := range CategoricalFields() {
		if _, ok := e[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// Keys read from a taxonomy object.
const (
	TaxonomyKeyID         = "taxonomy_id"
	TaxonomyKeyVersion    = "version"
	TaxonomyKeyCreatedUTC = "created_utc"
	TaxonomyKeySignals    = "signals"
)

// Taxonomy is a versioned set of signals. Like OperatingEnvironment it is
// forwarded to the culture-fit service as decoded; the accessors below read
// the fields validation needs and leave the rest alone.
type Taxonomy map[string]any

// ID returns taxonomy_id, rendering numeric ids as text.
func (t Taxonomy) ID() string { return scalarString(t[TaxonomyKeyID]) }

// Version returns the taxonomy version, rendering numeric versions as text.
func (t Taxonomy) Version() string { return scalarString(t[TaxonomyKeyVersion]) }

// Signals returns the signal list, and false when it is absent or not an array.
func (t Taxonomy) Signals() ([]any, bool) {
	list, ok := t[TaxonomyKeySignals].([]any)
	return list, ok
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
