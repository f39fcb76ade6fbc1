// Package auth handles password hashing and PASETO access tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeySize is the length of a PASETO v4 symmetric key.
const KeySize = 32

// LoadOrGenerateKey reads the hex-encoded token key at path, creating the
// file with a fresh random key when it does not exist yet.
func LoadOrGenerateKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path) //#nosec G304 -- path comes from server config
	switch {
	case err == nil:
		return decodeKey(strings.TrimSpace(string(raw)))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}

	return key, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	if len(keyHex) != KeySize*2 {
		return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", KeySize*2, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid auth key format: not valid hex: %w", err)
	}
	return key, nil
}
