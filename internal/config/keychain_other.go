//go:build !darwin

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// keychainExec reads a secret from the fallback secrets file on platforms
// without a native keychain. The file maps service name to account/value
// pairs, mirroring the Keychain addressing used on macOS.
func keychainExec(service, account string) ([]byte, error) {
	path := filepath.Join(xdgDir("XDG_DATA_HOME", ".local/share", "."), "lumina", "secrets.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("keychain not available: %w", err)
	}

	var secrets map[string]map[string]string
	if err := json.Unmarshal(raw, &secrets); err != nil {
		return nil, fmt.Errorf("parsing secrets file: %w", err)
	}
	val, ok := secrets[service][account]
	if !ok {
		return nil, fmt.Errorf("no secret for %s/%s", service, account)
	}
	return []byte(val), nil
}
