package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/keyauth"
)

// Header carries the API key.
const Header = "X-API-Key"

// LocalsKey stores the accepted key in the request locals.
const LocalsKey = "api_key"

// ErrInvalidKey is reported when a key is present but does not match.
var ErrInvalidKey = errors.New("invalid API key")

// Config holds the auth middleware configuration.
type Config struct {
	// ApiKey is the expected key. Empty disables the check.
	ApiKey string
}

// New returns a middleware rejecting requests without the configured API key.
func New(cfg Config) fiber.Handler {
	expected := []byte(cfg.ApiKey)
	return keyauth.New(keyauth.Config{
		Next: func(*fiber.Ctx) bool {
			return cfg.ApiKey == ""
		},
		KeyLookup:  "header:" + Header,
		ContextKey: LocalsKey,
		Validator: func(_ *fiber.Ctx, key string) (bool, error) {
			if subtle.ConstantTimeCompare([]byte(key), expected) != 1 {
				return false, ErrInvalidKey
			}
			return true, nil
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			msg := "missing API key"
			if errors.Is(err, ErrInvalidKey) {
				msg = ErrInvalidKey.Error()
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": msg,
			})
		},
	})
}
