package export

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/google/uuid"
)

// HashedFilename produces a collision-resistant file name ending in the given
// extension. The optional modifier is inserted immediately before the
// extension. Two concurrent callers collide with negligible probability, even
// across processes sharing a filesystem.
func HashedFilename(extension, modifier string) string {
	id := uuid.New()
	sum := sha256.Sum256([]byte(id.String()))
	name := hex.EncodeToString(sum[:])
	return name + modifier + "." + extension
}
