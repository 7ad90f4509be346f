//go:build !windows

package driver

// Load fails on platforms the vendor driver does not ship for.
func Load(dir string) (Driver, error) {
	return nil, ErrUnsupportedEnvironment
}
