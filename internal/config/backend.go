package config

// ConfigBackend is the platform-native store behind `lumina config`. The
// darwin build talks to UserDefaults through the `defaults` CLI; everywhere
// else a JSON file under XDG_CONFIG_HOME serves the same role. Secrets never
// pass through a backend.
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
}
