package cache

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Key derives a fixed-length cache key from a prefix and the JSON form of v.
// Equal values always map to the same key.
func Key(prefix string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode cache key: %w", err)
	}
	h := xxh3.Hash128(data)
	return fmt.Sprintf("%s:%016x%016x", prefix, h.Hi, h.Lo), nil
}
