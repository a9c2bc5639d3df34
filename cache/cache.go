package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

const (
	KeyCanteenList         = "canteens:list"
	KeyAllowedEmailDomains = "allowed_email_domains"
	keyCanteenPrefix       = "canteen:"
	keyMenuPrefix          = "menu:"
	keyRevokedTokenPrefix  = "revoked_token:"
	CanteenTTL             = 300 * time.Second
	MenuTTL                = 180 * time.Second
	AllowedEmailDomainsTTL = 300 * time.Second
)

// Cache is the key/value store used for cache-aside reads. Values are
// opaque bytes; callers own the encoding.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

func CanteenKey(id string) string { return keyCanteenPrefix + id }

func MenuKey(canteenID string) string { return keyMenuPrefix + canteenID }

func RevokedTokenKey(tokenID string) string { return keyRevokedTokenPrefix + tokenID }

// CanteenKeys lists every key that holds data about the canteen.
func CanteenKeys(canteenID string) []string {
	return []string{KeyCanteenList, CanteenKey(canteenID), MenuKey(canteenID)}
}
