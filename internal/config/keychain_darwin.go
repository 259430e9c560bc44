//go:build darwin

package config

import (
	"fmt"
	"os/exec"
)

// keychainExec reads one generic password from the macOS Keychain via the
// security CLI. Output includes a trailing newline the caller trims.
func keychainExec(service, account string) ([]byte, error) {
	out, err := exec.Command("security", "find-generic-password", "-s", service, "-a", account, "-w").Output()
	if err != nil {
		return nil, fmt.Errorf("keychain lookup %s/%s: %w", service, account, err)
	}
	return out, nil
}
