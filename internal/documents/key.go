package documents

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	maxOwnerSegmentLen = 128
	// hashedOwnerPrefix cannot appear in a pass-through segment, so hashed
	// and literal owners never collide.
	hashedOwnerPrefix = "~"
)

var ownerSegmentPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// SanitizeFileName drops every character outside [A-Za-z0-9.-].
// Names with nothing usable left become "file".
func SanitizeFileName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	out := b.String()
	if strings.Trim(out, ".") == "" {
		return "file"
	}
	return out
}

// OwnerSegment maps an opaque owner id to the first key segment. Ids made of
// [A-Za-z0-9._-] are used as is; anything else (slashes, dot names, non-ASCII,
// overlong ids) becomes "~" plus a SHA-256 prefix of the id.
func OwnerSegment(ownerID string) string {
	if ownerID != "." && ownerID != ".." && len(ownerID) <= maxOwnerSegmentLen && ownerSegmentPattern.MatchString(ownerID) {
		return ownerID
	}
	sum := sha256.Sum256([]byte(ownerID))
	return hashedOwnerPrefix + hex.EncodeToString(sum[:16])
}

// BuildStorageKey returns {owner}/{category}/{unixMillis}-{sanitizedName}.
func BuildStorageKey(ownerID string, category Category, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d-%s", OwnerSegment(ownerID), category, now.UnixMilli(), SanitizeFileName(fileName))
}

// keyPrefix is the namespace every key for owner and category lives under.
func keyPrefix(ownerID string, category Category) string {
	return OwnerSegment(ownerID) + "/" + string(category) + "/"
}

// IssuedAt recovers the ticket time embedded in a key built by BuildStorageKey.
func IssuedAt(key string) (time.Time, bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 {
		return time.Time{}, false
	}
	millis, _, ok := strings.Cut(parts[2], "-")
	if !ok || millis == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(millis, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
