package repositories

import "fmt"

// Storage drivers accepted by Open.
const (
	DriverBadger = "badger"
	DriverSQLite = "sqlite"
)

// Open returns the store for driver. An empty path gives an in-memory store.
func Open(driver, path string, opts ...Option) (Store, error) {
	switch driver {
	case DriverBadger, "":
		return NewBadgerStore(path, opts...)
	case DriverSQLite:
		return NewSQLiteStore(path, opts...)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
