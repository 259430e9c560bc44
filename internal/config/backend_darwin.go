//go:build darwin

package config

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// darwinBackend stores config in UserDefaults under one domain, driven
// through the `defaults` CLI so the binary needs no cgo.
type darwinBackend struct {
	domain string
}

const defaultsDomain = "com.lumina.app"

func newPlatformBackend() ConfigBackend {
	return &darwinBackend{domain: defaultsDomain}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lumina-data"
	}
	return filepath.Join(home, "Library", "Application Support", "lumina")
}

func apiKeyHint() string {
	return " or macOS Keychain (service: lumina, account: anthropic_api_key)"
}

// read shells out to `defaults read`. A missing key exits 1, which is the
// not-found case rather than an error.
func (b *darwinBackend) read(key string) (string, bool, error) {
	out, err := exec.Command("defaults", "read", b.domain, key).CombinedOutput()
	val := strings.TrimSpace(string(out))
	if err == nil {
		return val, true, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return "", false, nil
	}
	return "", false, fmt.Errorf("reading default for key '%s': %w, output: %s", key, err, val)
}

func (b *darwinBackend) GetString(key string) (string, bool, error) {
	return b.read(key)
}

func (b *darwinBackend) GetInt(key string) (int, bool, error) {
	s, ok, err := b.read(key)
	if !ok || err != nil {
		return 0, ok, err
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, true, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return i, true, nil
}

func (b *darwinBackend) SetString(key, val string) error {
	return exec.Command("defaults", "write", b.domain, key, "-string", val).Run()
}

func (b *darwinBackend) SetInt(key string, val int) error {
	return exec.Command("defaults", "write", b.domain, key, "-int", strconv.Itoa(val)).Run()
}
