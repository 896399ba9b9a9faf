package neurochat

import (
	"errors"
	"time"
)

// Config defines a public type used by neurochat APIs.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable unless documented otherwise.
type Config struct {
	Session  SessionConfig
	Account  AccountConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig bounds the lifetimes of durable sessions and their cached
// resolutions. CacheTTL is the staleness bound of the design: no revocation
// can be outlived by more than one CacheTTL interval.
type SessionConfig struct {
	RedisPrefix string
	CacheTTL    time.Duration
	SessionTTL  time.Duration
	RememberTTL time.Duration
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig controls registration behavior. DefaultRole is the fixed,
// system-chosen role assigned to every new account; it is never taken from
// client input.
type AccountConfig struct {
	DefaultRole string
}

// PasswordConfig carries the argon2id parameters used for credential hashing.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the configuration the builder starts from. Hosts
// typically take it, override a few fields, and pass it to WithConfig.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "session",
			CacheTTL:    24 * time.Hour,
			SessionTTL:  24 * time.Hour,
			RememberTTL: 30 * 24 * time.Hour,
		},
		Account: AccountConfig{
			DefaultRole: "user",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the invariants the engine depends on.
func (c Config) Validate() error {
	if c.Session.CacheTTL <= 0 {
		return errors.New("Session.CacheTTL must be positive: the cache TTL bounds revocation staleness")
	}
	if c.Session.SessionTTL <= 0 {
		return errors.New("Session.SessionTTL must be positive")
	}
	if c.Session.RememberTTL < c.Session.SessionTTL {
		return errors.New("Session.RememberTTL must be >= Session.SessionTTL")
	}
	if c.Session.CacheTTL > c.Session.SessionTTL {
		return errors.New("Session.CacheTTL must not exceed Session.SessionTTL")
	}
	if c.Account.DefaultRole == "" {
		return errors.New("Account.DefaultRole required")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("Audit.BufferSize must be >= 0")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types today; a shallow copy is a deep copy.
	return cfg
}
