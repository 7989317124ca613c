package chunker

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// ChunkID derives the deterministic identifier for a chunk. It is a pure
// function of (document, page, chunkIndex), so re-ingesting unchanged content
// produces the same IDs and the store overwrites instead of duplicating.
// MD5 is used for stability and spread, not for security.
func ChunkID(document string, page, chunkIndex int) string {
	sum := md5.Sum([]byte(fmt.Sprintf("%s_%d_%d", document, page, chunkIndex)))
	return hex.EncodeToString(sum[:])
}
