package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SigningKeySize is the byte length of a generated token-signing secret.
const SigningKeySize = 32

// LoadOrGenerateKey reads a base64url secret from path, generating and
// persisting a fresh one when the file does not exist. The service loads its
// token-signing secret through this exactly once at startup; replacing the
// file invalidates every outstanding token, which is the documented way to
// force a global logout.
func LoadOrGenerateKey(path string) ([]byte, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("cryptox: prepare key directory: %w", err)
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return generateKeyFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("cryptox: read key file: %w", err)
	}

	key, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("cryptox: decode key file: %w", err)
	}
	if len(key) < SigningKeySize {
		return nil, fmt.Errorf("cryptox: key too short: %d bytes", len(key))
	}
	return key, nil
}

func generateKeyFile(path string) ([]byte, error) {
	key := make([]byte, SigningKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("cryptox: generate key: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(key)
	if err := os.WriteFile(path, []byte(encoded), 0600); err != nil {
		return nil, fmt.Errorf("cryptox: write key file: %w", err)
	}
	return key, nil
}
