package setup

import "sort"

// Mapping maps an identifier (for example "1000_base") to a version string.
type Mapping map[string]string

// Lookup returns the version for identifier.
func (m Mapping) Lookup(identifier string) (string, bool) {
	version, ok := m[identifier]

	return version, ok
}

// Identifiers returns the mapping keys in sorted order.
func (m Mapping) Identifiers() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
