package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// hashKey builds "prefix:sha256(parts...)".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// SourceKey identifies one parse of a file. Any change of size or
// modification time yields a new key. sheet selects the worksheet of a
// spreadsheet and is empty for text formats.
func SourceKey(path string, size int64, modTime time.Time, sheet string) string {
	return hashKey("source", path, size, modTime.UnixNano(), sheet)
}
