package schema

import (
	"fmt"
	"strconv"
	"strings"
)

const keySeparator = "_"

// EntryKey builds the primary key of the entry recorded for playerID in roundID.
func EntryKey(roundID, playerID int64) string {
	return compositeKey(roundID, playerID)
}

// TotalKey builds the primary key of playerID's running total in sessionID.
func TotalKey(sessionID, playerID int64) string {
	return compositeKey(sessionID, playerID)
}

// The separator never occurs in a base-10 integer, so distinct id pairs
// always produce distinct keys.
func compositeKey(a, b int64) string {
	return strconv.FormatInt(a, 10) + keySeparator + strconv.FormatInt(b, 10)
}

// SplitKey is the inverse of EntryKey and TotalKey.
func SplitKey(key string) (int64, int64, error) {
	left, right, ok := strings.Cut(key, keySeparator)
	if !ok {
		return 0, 0, fmt.Errorf("malformed composite key %q", key)
	}
	a, err := strconv.ParseInt(left, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed composite key %q: %w", key, err)
	}
	b, err := strconv.ParseInt(right, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed composite key %q: %w", key, err)
	}
	return a, b, nil
}
