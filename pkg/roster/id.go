package roster

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// ID prefixes. Master identifiers are content-derived so re-running the
// matcher never mints a second identity for the same person; export and
// fallback identifiers are opaque.
const (
	masterIDPrefix   = "nlc_"
	exportIDPrefix   = "export_"
	fallbackIDPrefix = "id_"

	idHexLen = 12
)

// MasterID derives the stable identifier for a master record from its
// (email, first, last) triple. The hash input is lowercased and trimmed
// so formatting variance does not fork identities. When all three parts
// are empty there is no stable identity to derive and a random
// identifier is issued instead; that record can never be re-recognized
// across runs, which is the intended escape hatch rather than a bug.
func MasterID(email, first, last string) string {
	combined := strings.Join([]string{email, first, last}, "|")
	if strings.TrimSpace(strings.ReplaceAll(combined, "|", "")) == "" {
		return fallbackIDPrefix + randomHex()
	}
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(combined))))
	return masterIDPrefix + hex.EncodeToString(sum[:])[:idHexLen]
}

// ExportID mints a fresh opaque identifier for an export record that
// matched nothing, so it can be tracked without colliding with any
// master identifier.
func ExportID() string {
	return exportIDPrefix + randomHex()
}

func randomHex() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])[:idHexLen]
}
