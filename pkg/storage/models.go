package storage

// TokenKey is the well-known key the bearer credential is stored under
const TokenKey = "token"

// Store is the persistent key/value contract used by the session and the HTTP client
type Store interface {
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}
