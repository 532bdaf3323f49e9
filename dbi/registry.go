package dbi

import (
	"fmt"
	"sort"
	"sync"
)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]Driver)
)

// Register makes a driver available under its Name. Drivers call it
// from init, so importing a driver package for side effects is enough:
//
//	import _ "dbkit/drivers/sqlite"
func Register(d Driver) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if d == nil {
		panic("dbi: Register driver is nil")
	}
	if _, dup := drivers[d.Name()]; dup {
		panic("dbi: Register called twice for driver " + d.Name())
	}
	drivers[d.Name()] = d
}

// Lookup returns the driver registered under name.
func Lookup(name string) (Driver, error) {
	driversMu.RLock()
	d, ok := drivers[name]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("dbi: unknown driver %q (forgotten import?)", name)
	}
	return d, nil
}

// Drivers lists the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
