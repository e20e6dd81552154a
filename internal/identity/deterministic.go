// Package identity derives stable ids for partial renderings and pages, so
// cache entries and stored diagnostics line up across runs.
package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-partials"

// UUID hashes key into a UUID with go-hashid (SHA-256, normalised input).
// A blank key yields uuid.Nil. Should hashid fail, a name-based SHA-1 UUID
// keeps the result deterministic.
func UUID(key string) uuid.UUID {
	key = strings.TrimSpace(key)
	if key == "" {
		return uuid.Nil
	}
	id, err := hashid.NewUUID(key,
		hashid.WithHashAlgorithm(hashid.SHA256),
		hashid.WithNormalization(true),
	)
	if err == nil && id != uuid.Nil {
		return id
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))
}

func scoped(kind string, parts ...string) uuid.UUID {
	return UUID(namespace + ":" + kind + ":" + strings.Join(parts, "|"))
}

// PartialUUID identifies one rendering of a partial: the same file with the
// same canonical parameter list always yields the same id.
func PartialUUID(partialPath, canonicalParams string) uuid.UUID {
	return scoped("partial", strings.TrimSpace(partialPath), canonicalParams)
}

// PageUUID identifies a page by its path.
func PageUUID(pagePath string) uuid.UUID {
	return scoped("page", strings.TrimSpace(pagePath))
}
