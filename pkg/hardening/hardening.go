// Package hardening validates the deployment posture before the gateway
// starts taking traffic. Checks only apply in production-like
// environments and can be disabled with STRICT_PROD_SECURITY=false.
package hardening

import (
	"fmt"
	"strings"
)

// Placeholder secrets that must never survive into production.
var forbiddenSecrets = map[string]struct{}{
	"secret":           {},
	"changeme":         {},
	"dev-secret":       {},
	"your_secret_key":  {},
	"super-secret-key": {},
}

type Options struct {
	Service               string
	Environment           string
	StrictProdSecurity    string
	SigningSecret         string
	DefaultSigningSecret  string
	DatabaseRequireTLS    string
	RedisAddr             string
	RedisRequireTLS       string
	RedisTLSInsecure      string
	RedisAllowInsecureTLS string
	CORSAllowedOrigins    string
}

func ValidateProduction(o Options) error {
	if !isProductionLikeEnv(o.Environment) {
		return nil
	}
	if !isTrue(o.StrictProdSecurity, true) {
		return nil
	}
	service := strings.TrimSpace(o.Service)
	if service == "" {
		service = "gateway"
	}
	if err := validateSigningSecret(o.SigningSecret, o.DefaultSigningSecret, service); err != nil {
		return err
	}
	if !isTrue(o.DatabaseRequireTLS, false) {
		return fmt.Errorf("%s: strict production hardening requires DATABASE_REQUIRE_TLS=true", service)
	}
	if strings.TrimSpace(o.RedisAddr) != "" {
		if !isTrue(o.RedisRequireTLS, false) {
			return fmt.Errorf("%s: strict production hardening requires REDIS_REQUIRE_TLS=true", service)
		}
		if isTrue(o.RedisTLSInsecure, false) || isTrue(o.RedisAllowInsecureTLS, false) {
			return fmt.Errorf("%s: strict production hardening forbids REDIS_TLS_INSECURE/REDIS_ALLOW_INSECURE_TLS", service)
		}
	}
	return validateCORSOrigins(o.CORSAllowedOrigins, service)
}

func validateSigningSecret(secret, defaultSecret, service string) error {
	trimmed := strings.TrimSpace(secret)
	if trimmed == "" {
		return fmt.Errorf("%s: strict production hardening requires SECRET_KEY", service)
	}
	if len(trimmed) < 16 {
		return fmt.Errorf("%s: strict production hardening requires SECRET_KEY of at least 16 bytes", service)
	}
	if defaultSecret != "" && trimmed == strings.TrimSpace(defaultSecret) {
		return fmt.Errorf("%s: strict production hardening forbids the built-in SECRET_KEY", service)
	}
	if _, bad := forbiddenSecrets[strings.ToLower(trimmed)]; bad {
		return fmt.Errorf("%s: strict production hardening forbids placeholder SECRET_KEY", service)
	}
	return nil
}

func validateCORSOrigins(raw, service string) error {
	origins := strings.Split(raw, ",")
	validCount := 0
	for _, origin := range origins {
		o := strings.TrimSpace(origin)
		if o == "" {
			continue
		}
		validCount++
		lower := strings.ToLower(o)
		if lower == "*" {
			return fmt.Errorf("%s: strict production hardening forbids CORS wildcard origin", service)
		}
		if strings.HasPrefix(lower, "http://localhost") || strings.HasPrefix(lower, "https://localhost") || strings.HasPrefix(lower, "http://127.0.0.1") || strings.HasPrefix(lower, "https://127.0.0.1") {
			return fmt.Errorf("%s: strict production hardening forbids localhost CORS origin %q", service, o)
		}
		if !strings.HasPrefix(lower, "https://") {
			return fmt.Errorf("%s: strict production hardening requires HTTPS CORS origin, got %q", service, o)
		}
	}
	if validCount == 0 {
		return fmt.Errorf("%s: strict production hardening requires explicit CORS_ALLOWED_ORIGINS", service)
	}
	return nil
}

func isTrue(raw string, def bool) bool {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return def
	}
	return strings.EqualFold(trimmed, "true")
}

func isProductionLikeEnv(raw string) bool {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "prod", "production", "staging", "stage":
		return true
	default:
		return false
	}
}
