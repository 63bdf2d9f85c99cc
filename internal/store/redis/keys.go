package redis

import (
	"fmt"
	"strings"
)

const (
	// KeyPrefixState is the prefix for persisted state blobs
	KeyPrefixState = "tabshell:state:"
)

// StateKey returns the Redis key for a state blob by name
func StateKey(name string) string {
	return KeyPrefixState + name
}

// ExtractStateName extracts the blob name from a Redis key
func ExtractStateName(key string) (string, error) {
	if !strings.HasPrefix(key, KeyPrefixState) || len(key) <= len(KeyPrefixState) {
		return "", fmt.Errorf("invalid state key: %s", key)
	}
	return key[len(KeyPrefixState):], nil
}
