package store

// KV is the persistent key/value substrate behind the credential and language stores.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}
