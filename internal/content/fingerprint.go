package content

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Front matter keys that change without changing a document's content.
const (
	fingerprintHashKeyLastmod = "lastmod"
	fingerprintHashKeyUID     = "uid"
)

// computeFingerprint returns the mdfp content fingerprint of a document. The
// fingerprint field itself and bookkeeping keys are excluded, and YAML keys
// are serialized in sorted order so the result is stable.
func computeFingerprint(fields map[string]any, body []byte) (string, error) {
	if fields == nil {
		return "", errors.New("fields map is nil")
	}

	forHash := make(map[string]any, len(fields))
	for k, v := range fields {
		switch k {
		case mdfp.FingerprintField, fingerprintHashKeyLastmod, fingerprintHashKeyUID:
			continue
		}
		forHash[k] = v
	}

	frontmatter := ""
	if len(forHash) > 0 {
		serialized, err := yaml.Marshal(forHash)
		if err != nil {
			return "", err
		}
		frontmatter = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(frontmatter, string(body)), nil
}

// digest combines per-document fingerprints into one catalog digest. Entries
// are sorted so discovery order does not matter.
func digest(entries []Entry) string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, string(e.Kind)+"\x00"+e.Path+"\x00"+e.ID+"\x00"+e.Fingerprint)
	}
	sort.Strings(lines)

	h := sha256.New()
	for _, l := range lines {
		h.Write([]byte(l))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
