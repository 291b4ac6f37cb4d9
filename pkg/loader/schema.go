// Package loader specifies the boundary contract with the downstream
// document-store loader: which CSV columns map to which schema keys,
// which dialogue-flag columns produce session registrations, and how a
// record's document identifier is derived. The loader itself (the
// remote upsert) lives outside this repository; the engine's obligation
// ends at producing deterministic identifiers and preserved columns.
package loader

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/rosterlink/rosterlink/pkg/errors"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

//go:embed schema.yaml
var defaultSchema []byte

// sessionMarker is the literal cell value that registers an attendee to
// a session, compared case-insensitively.
const sessionMarker = "X"

// Schema is the loader field-mapping contract.
type Schema struct {
	// Event is the document-store event the loader writes under.
	Event string `yaml:"event"`

	// Sessions maps normalized flag-column headers to session IDs.
	Sessions map[string]string `yaml:"sessions"`

	// Headers maps normalized CSV headers to loader schema keys.
	Headers map[string]string `yaml:"headers"`

	// ProfileKeys are the schema keys that belong to the registrant
	// profile document; all other mapped values are loaded as free-form
	// answers.
	ProfileKeys []string `yaml:"profile_keys"`
}

// Default returns the built-in schema.
func Default() (*Schema, error) {
	return parse(defaultSchema, "embedded schema.yaml")
}

// LoadSchema reads a schema override from a YAML file.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", errors.ErrMissingInput, path)
		}
		return nil, errors.WrapIO("read", path, err)
	}
	return parse(data, path)
}

func parse(data []byte, source string) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	if len(s.Sessions) == 0 {
		return nil, errors.NewValidationError("sessions", nil, "schema defines no session columns")
	}
	return &s, nil
}

// normalizeHeader lowercases for lookup, preserving spaces so the header
// map keys stay readable.
func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(h))
}

// MapHeader resolves a CSV header to its loader schema key, falling back
// to a snake_case rendering of the header text.
func (s *Schema) MapHeader(header string) string {
	n := normalizeHeader(header)
	if key, ok := s.Headers[n]; ok {
		return key
	}
	n = strings.ReplaceAll(n, " ", "_")
	return strings.ReplaceAll(n, "-", "_")
}

// IsProfileKey reports whether a schema key belongs to the registrant
// profile rather than the answer set.
func (s *Schema) IsProfileKey(key string) bool {
	for _, k := range s.ProfileKeys {
		if k == key {
			return true
		}
	}
	return false
}

// SessionIDs returns the session IDs a record is pre-registered to: one
// per dialogue-flag column whose cell is exactly the session marker.
// Order follows the table's header order so output is deterministic.
func (s *Schema) SessionIDs(headers []string, rec *roster.Record) []string {
	var out []string
	for _, h := range headers {
		sessionID, ok := s.Sessions[normalizeHeader(h)]
		if !ok {
			continue
		}
		if strings.EqualFold(rec.Trimmed(h), sessionMarker) {
			out = append(out, sessionID)
		}
	}
	return out
}

// DocID derives the loader document identifier for a record: the
// engine-assigned id column when present, otherwise a slug built from
// identity fields, otherwise a positional fallback. The id column path
// is the deterministic one; a roster processed by the matching engine
// always has it, which is what lets repeated loader runs merge instead
// of duplicate.
func (s *Schema) DocID(index int, headers []string, rec *roster.Record) string {
	if id := rec.Trimmed(roster.ColID); id != "" {
		return id
	}

	var parts []string
	for _, key := range []string{"email", "cfcId", "firstName", "lastName"} {
		for _, h := range headers {
			if s.MapHeader(h) != key {
				continue
			}
			if v := rec.Trimmed(h); v != "" {
				parts = append(parts, slug(v))
			}
			break
		}
	}
	if len(parts) > 0 {
		joined := strings.Join(parts, "-")
		if len(joined) > 60 {
			joined = joined[:60]
		}
		return joined
	}
	return fmt.Sprintf("registrant-%d", index)
}

// slug renders an identity fragment safe for use in a document id.
func slug(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = strings.ReplaceAll(v, " ", "-")
	v = strings.ReplaceAll(v, "@", "-at-")
	if len(v) > 20 {
		v = v[:20]
	}
	return v
}
