// internal/pkg/jwt/manager.go
package jwt

import (
	"fmt"
	"time"
)

type Config struct {
	Secret     string
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type Manager struct {
	Generator *Generator
	Verifier  *Verifier
}

func Build(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt signing secret is not configured")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, fmt.Errorf("jwt token TTLs must be positive")
	}

	secret := []byte(cfg.Secret)
	gen := NewGenerator(secret, cfg.Issuer, cfg.Audience, cfg.AccessTTL, cfg.RefreshTTL)
	ver := NewVerifier(secret, cfg.Issuer, cfg.Audience)

	return &Manager{
		Generator: gen,
		Verifier:  ver,
	}, nil
}
