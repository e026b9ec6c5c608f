// Package ids produces stable identifiers for entities scraped out of
// upstream HTML, so repeated parses of the same logical entity always
// correlate to the same local record.
package ids

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"

	"github.com/google/uuid"
)

// DeterministicUUID derives a v5 (name-based, SHA-1) UUID from seed.
// The namespace may be any string: when it is not itself a valid UUID
// it is first derived into one under the nil namespace, so arbitrary
// category names ("meats", "sauces") seed stable sub-namespaces.
func DeterministicUUID(seed string, namespace string) uuid.UUID {
	ns := uuid.Nil
	if namespace != "" {
		parsed, err := uuid.Parse(namespace)
		if err != nil {
			parsed = uuid.NewSHA1(uuid.Nil, []byte(namespace))
		}
		ns = parsed
	}
	return uuid.NewSHA1(ns, []byte(seed))
}

type tacoDigest struct {
	Size       string   `json:"size"`
	Meats      []string `json:"meats"`
	Sauces     []string `json:"sauces"`
	Garnitures []string `json:"garnitures"`
}

// TacoContentHash hashes a taco's composition (size plus sorted
// ingredient id lists) to a hex SHA-256 digest. Two tacos with the
// same composition hash identically regardless of ingredient order,
// which makes the digest usable as a cart dedup key.
func TacoContentHash(size string, meatIds, sauceIds, garnitureIds []string) string {
	digest := tacoDigest{
		Size:       size,
		Meats:      sortedCopy(meatIds),
		Sauces:     sortedCopy(sauceIds),
		Garnitures: sortedCopy(garnitureIds),
	}
	// marshaling a struct of strings cannot fail
	encoded, _ := json.Marshal(digest)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	slices.Sort(out)
	return out
}
