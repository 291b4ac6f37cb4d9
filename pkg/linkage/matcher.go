package linkage

import (
	"fmt"
	"strings"

	"github.com/rosterlink/rosterlink/pkg/normalize"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// Rule descriptions written to match_by / match_by_comment. These exact
// strings are read by downstream review and by the ledger sync check, so
// they must not drift.
const (
	commentEmail         = "email"
	commentEmailMultiple = "email (multiple NLC)"
	commentName          = "name"
	commentNameFirstWord = "name (first word match)"
	commentMultipleNLC   = " (multiple NLC)"
	commentLastNameOnly  = "last_name_only (only one in NLC)"

	// MasterExactComment is the fixed comment a master record carries
	// for any exact match, regardless of which exact rule fired.
	MasterExactComment = "exact_match: email or first+last name"
)

// Fuzzy pass gates: shorter last names produce too many accidental
// neighbors at distance 1, and a distance above 1 is no longer evidence
// of a typo.
const (
	fuzzyMinLastLen  = 4
	fuzzyMaxDistance = 1
)

// Match pairs an export record with the master record it resolved to.
type Match struct {
	Export  *roster.Record
	Master  *roster.Record
	Type    string
	Comment string
}

// Matcher runs the four-pass cascade over export records against an
// index of the master set. It is single-run state: build a fresh one per
// invocation.
type Matcher struct {
	idx    *Index
	claims *Claims
}

// NewMatcher creates a matcher over a freshly built index.
func NewMatcher(idx *Index) *Matcher {
	return &Matcher{idx: idx, claims: NewClaims()}
}

// Claims exposes the claim set accumulated during the run.
func (m *Matcher) Claims() *Claims {
	return m.claims
}

// Run executes the cascade. Each export record exits as soon as a pass
// yields a candidate: exact email, exact name (with a first-word
// fallback), unique last name, and finally fuzzy last name over
// whatever the first three passes left unmatched. Matches are returned
// in discovery order; the second slice holds the records that fell all
// the way through.
func (m *Matcher) Run(export *roster.Table) ([]Match, []*roster.Record) {
	var matches []Match
	var leftover []*roster.Record

	for _, rec := range export.Rows {
		first, last, email := identity(rec)

		match := m.matchEmail(rec, email)
		if match == nil {
			match = m.matchName(rec, first, last)
		}
		if match == nil {
			match = m.matchLastUnique(rec, last)
		}
		if match == nil {
			leftover = append(leftover, rec)
			continue
		}
		m.claims.Record(match.Master.Trimmed(roster.ColID), rec, match.Type, match.Comment)
		matches = append(matches, *match)
	}

	var unmatched []*roster.Record
	for _, rec := range leftover {
		first, last, _ := identity(rec)
		match := m.matchFuzzy(rec, first, last)
		if match == nil {
			unmatched = append(unmatched, rec)
			continue
		}
		m.claims.Record(match.Master.Trimmed(roster.ColID), rec, match.Type, match.Comment)
		matches = append(matches, *match)
	}

	return matches, unmatched
}

// identity extracts the comparison fields from an export record. An
// email smuggled into the first-name field (detected by "@") is treated
// as an email and the first name is cleared for the naming passes.
func identity(rec *roster.Record) (first, last, email string) {
	first = rec.Trimmed(roster.ExportFirst)
	last = rec.Trimmed(roster.ExportLast)
	if strings.Contains(first, "@") {
		email = first
		first = ""
	}
	return first, last, email
}

// matchEmail is pass 1: exact lookup by normalized email. Multiple
// candidates are noted, not rejected; the first in master order wins.
func (m *Matcher) matchEmail(rec *roster.Record, email string) *Match {
	if email == "" {
		return nil
	}
	candidates := m.idx.Email(normalize.String(email))
	if len(candidates) == 0 {
		return nil
	}
	comment := commentEmail
	if len(candidates) > 1 {
		comment = commentEmailMultiple
	}
	return &Match{Export: rec, Master: candidates[0], Type: roster.MatchTypeExact, Comment: comment}
}

// matchName is pass 2: exact lookup by name key, retried with only the
// leading first-name token when the full key misses. The retry handles
// multi-word first names where only the leading token was registered.
func (m *Matcher) matchName(rec *roster.Record, first, last string) *Match {
	key := normalize.NameKey(first, last)
	if !normalize.HasKey(key) {
		return nil
	}

	candidates := m.idx.Name(key)
	comment := commentName
	if len(candidates) == 0 {
		firstWord := normalize.FirstWord(first)
		if firstWord == "" || firstWord == normalize.String(first) {
			return nil
		}
		candidates = m.idx.Name(normalize.NameKey(firstWord, last))
		if len(candidates) == 0 {
			return nil
		}
		comment = commentNameFirstWord
	}
	if len(candidates) > 1 {
		comment += commentMultipleNLC
	}
	return &Match{Export: rec, Master: candidates[0], Type: roster.MatchTypeExact, Comment: comment}
}

// matchLastUnique is pass 3: last-name-only lookup, accepted only when
// the master set has exactly one record under that last name and it is
// still unmatched.
func (m *Matcher) matchLastUnique(rec *roster.Record, last string) *Match {
	key := normalize.LastName(last)
	if key == "" {
		return nil
	}
	candidates := m.idx.Last(key)
	if len(candidates) != 1 || !m.eligible(candidates[0]) {
		return nil
	}
	return &Match{Export: rec, Master: candidates[0], Type: roster.MatchTypePossible, Comment: commentLastNameOnly}
}

// matchFuzzy is pass 4: bounded Damerau-Levenshtein over every indexed
// last name, gated by exact equality of the first-name leading token,
// considering only masters with no match so far. The single candidate
// with the globally smallest distance wins; ties resolve to whichever
// candidate appears first in master insertion order.
func (m *Matcher) matchFuzzy(rec *roster.Record, first, last string) *Match {
	lastKey := normalize.LastName(last)
	if len(lastKey) < fuzzyMinLastLen {
		return nil
	}
	firstWord := normalize.FirstWord(first)
	if firstWord == "" {
		return nil
	}

	var best *roster.Record
	bestDist := fuzzyMaxDistance + 1

	for _, key := range m.idx.LastKeys() {
		dist := Distance(lastKey, key)
		if dist > fuzzyMaxDistance || dist >= bestDist {
			continue
		}
		for _, candidate := range m.idx.Last(key) {
			if !m.eligible(candidate) {
				continue
			}
			if normalize.FirstWord(candidate.Trimmed(roster.MasterFirst)) != firstWord {
				continue
			}
			best = candidate
			bestDist = dist
			break
		}
	}

	if best == nil {
		return nil
	}
	comment := fmt.Sprintf("fuzzy last name (dist=%d)", bestDist)
	return &Match{Export: rec, Master: best, Type: roster.MatchTypePossible, Comment: comment}
}

// eligible reports whether a master record can still be claimed by the
// lower-confidence passes: unclaimed this run and carrying no match from
// a prior run.
func (m *Matcher) eligible(master *roster.Record) bool {
	if master.Trimmed(roster.ColMatchType) != "" {
		return false
	}
	return !m.claims.Claimed(master.Trimmed(roster.ColID))
}
