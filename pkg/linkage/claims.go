package linkage

import "github.com/rosterlink/rosterlink/pkg/roster"

// Claim records that an export record claimed a master record, with the
// classification and rule description of the winning pass.
type Claim struct {
	MasterID string
	Export   *roster.Record
	Type     string // roster.MatchTypeExact or roster.MatchTypePossible
	Comment  string // rule description, e.g. "name (first word match)"
}

// Claims enforces the candidate resolution policy: at most one export
// record claims a given master per run. The first claim wins, unless a
// later exact match supersedes an earlier possible match. Between equal
// classifications discovery order decides.
type Claims struct {
	byMaster map[string]*Claim
}

// NewClaims creates an empty claim set for a single run.
func NewClaims() *Claims {
	return &Claims{byMaster: make(map[string]*Claim)}
}

// Record registers a claim, applying the upgrade rule. It reports
// whether the claim was stored (first claim or an upgrade).
func (c *Claims) Record(masterID string, export *roster.Record, matchType, comment string) bool {
	existing, ok := c.byMaster[masterID]
	if ok && !(existing.Type == roster.MatchTypePossible && matchType == roster.MatchTypeExact) {
		return false
	}
	c.byMaster[masterID] = &Claim{
		MasterID: masterID,
		Export:   export,
		Type:     matchType,
		Comment:  comment,
	}
	return true
}

// Claimed reports whether a master record has been claimed this run.
func (c *Claims) Claimed(masterID string) bool {
	_, ok := c.byMaster[masterID]
	return ok
}

// Get returns the winning claim for a master record, if any.
func (c *Claims) Get(masterID string) (*Claim, bool) {
	claim, ok := c.byMaster[masterID]
	return claim, ok
}

// Len returns the number of claimed masters.
func (c *Claims) Len() int {
	return len(c.byMaster)
}
