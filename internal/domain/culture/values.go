// Package culture resolves the operating environment and signal taxonomy a
// culture-fit prediction is scored against.
package culture

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talenti/fitscore/internal/domain/model"
)

// Keys recognised in an organisation values_framework document.
const (
	keyOperatingEnvironment     = "operating_environment"
	keyTeamOperatingEnvironment = "team_operating_environment"
	keyTaxonomy                 = "taxonomy"
	keyTaxonomyID               = "taxonomy_id"
	keyTaxonomyVersion          = "taxonomy_version"
	keyTaxonomyCreatedUTC       = "taxonomy_created_utc"
	keySignals                  = "signals"
	keyTaxonomySignals          = "taxonomy_signals"
)

// ParseValuesFramework decodes an organisation values_framework blob. The blob
// is a JSON object, or a JSON string whose content is a JSON object. Anything
// else yields ok=false.
func ParseValuesFramework(raw string) (map[string]any, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	if s, isString := v.(string); isString {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return nil, false
		}
	}
	values, ok := v.(map[string]any)
	if !ok || len(values) == 0 {
		return nil, false
	}
	return values, true
}

// ExtractOperatingEnvironment returns the operating environment object. The
// team_operating_environment key is accepted when the primary key is absent
// or empty.
func ExtractOperatingEnvironment(values map[string]any) (model.OperatingEnvironment, bool) {
	v := values[keyOperatingEnvironment]
	if !truthy(v) {
		v = values[keyTeamOperatingEnvironment]
	}
	env, ok := v.(map[string]any)
	if !ok || len(env) == 0 {
		return nil, false
	}
	return model.OperatingEnvironment(env), true
}

// ExtractTaxonomy returns the taxonomy, either the nested taxonomy object as
// stored or one composed from the flat taxonomy_id, taxonomy_version, signals
// (or taxonomy_signals) and optional taxonomy_created_utc fields.
func ExtractTaxonomy(values map[string]any) (model.Taxonomy, error) {
	if nested, ok := values[keyTaxonomy].(map[string]any); ok {
		tax := model.Taxonomy(nested)
		if err := CheckTaxonomy(tax); err != nil {
			return nil, err
		}
		return tax, nil
	}

	id, version := values[keyTaxonomyID], values[keyTaxonomyVersion]
	signals := values[keySignals]
	if !truthy(signals) {
		signals = values[keyTaxonomySignals]
	}
	list, isList := signals.([]any)
	if !truthy(id) || !truthy(version) || !isList {
		return nil, ErrNoTaxonomy
	}
	tax := model.Taxonomy{
		model.TaxonomyKeyID:      id,
		model.TaxonomyKeyVersion: version,
		model.TaxonomyKeySignals: list,
	}
	if created, ok := values[keyTaxonomyCreatedUTC]; ok {
		tax[model.TaxonomyKeyCreatedUTC] = created
	}
	return tax, nil
}

// CheckTaxonomy rejects a taxonomy that is empty, has no taxonomy_id, or
// carries signals that are not an array. Other fields are not inspected.
func CheckTaxonomy(tax model.Taxonomy) error {
	if !truthy(map[string]any(tax)) || tax.ID() == "" {
		return ErrNoTaxonomy
	}
	if raw, present := tax[model.TaxonomyKeySignals]; present && raw != nil {
		if _, ok := tax.Signals(); !ok {
			return fmt.Errorf("%w: signals must be an array", ErrNoTaxonomy)
		}
	}
	return nil
}

// truthy mirrors the emptiness rules of the stored document format: null,
// false, zero, and empty strings, arrays, and objects are all absent.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}
