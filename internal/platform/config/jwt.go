package config

import (
	"errors"
	"os"
	"time"
)

// JWTConfig configures bearer verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

func LoadJWTConfigFromEnv() (JWTConfig, error) {
	return JWTConfigFromLookup(os.LookupEnv)
}

func JWTConfigFromLookup(lookup func(string) (string, bool)) (JWTConfig, error) {
	e := env{lookup: lookup}
	cfg := JWTConfig{
		Issuer:    e.str("JWT_ISSUER", ""),
		Audience:  e.str("JWT_AUDIENCE", ""),
		JWKSURL:   e.str("JWT_JWKS_URL", ""),
		ClockSkew: e.duration("JWT_CLOCK_SKEW", 30*time.Second),
		// Periodic refresh picks up key rotation even while an old key is cached.
		JWKSRefreshInterval: e.duration("JWT_JWKS_REFRESH_INTERVAL", 5*time.Minute),
		// Bounds refreshes triggered by unknown kids.
		JWKSMinRefreshInterval: e.duration("JWT_JWKS_MIN_REFRESH_INTERVAL", 10*time.Second),
		HTTPTimeout:            e.duration("JWT_HTTP_TIMEOUT", 5*time.Second),
	}
	if cfg.Issuer == "" || cfg.Audience == "" || cfg.JWKSURL == "" {
		e.errs = append(e.errs, errors.New("missing required env vars: JWT_ISSUER, JWT_AUDIENCE, JWT_JWKS_URL"))
	}
	if err := errors.Join(e.errs...); err != nil {
		return JWTConfig{}, err
	}
	return cfg, nil
}
