// Package universe supplies the ordered set of symbols a scan covers.
package universe

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Universe is an immutable, deduplicated list of symbols with optional
// display names.
type Universe struct {
	symbols []string
	names   map[string]string
}

// New builds a Universe. Duplicates are removed keeping the first
// occurrence; blank identifiers are dropped.
func New(ids []string, names map[string]string) *Universe {
	seen := make(map[string]struct{}, len(ids))
	symbols := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		symbols = append(symbols, id)
	}
	copied := make(map[string]string, len(names))
	for k, v := range names {
		if v = strings.TrimSpace(v); v != "" {
			copied[strings.TrimSpace(k)] = v
		}
	}
	return &Universe{symbols: symbols, names: copied}
}

// Symbols returns a copy of the symbols in scan order.
func (u *Universe) Symbols() []string {
	out := make([]string, len(u.symbols))
	copy(out, u.symbols)
	return out
}

// Len returns the number of symbols.
func (u *Universe) Len() int { return len(u.symbols) }

// Name returns the display name of id, or id itself when none is mapped.
func (u *Universe) Name(id string) string {
	if n, ok := u.names[id]; ok {
		return n
	}
	return id
}

// Names returns a copy of the display-name mapping.
func (u *Universe) Names() map[string]string {
	out := make(map[string]string, len(u.names))
	for k, v := range u.names {
		out[k] = v
	}
	return out
}

// ShortCode strips the Taiwan exchange suffixes for display.
func ShortCode(id string) string {
	for _, suffix := range []string{".TWO", ".TW"} {
		if strings.HasSuffix(id, suffix) {
			return strings.TrimSuffix(id, suffix)
		}
	}
	return id
}

type fileEntry struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

type fileFormat struct {
	Symbols []fileEntry `yaml:"symbols"`
}

// LoadFile reads a YAML universe:
//
//	symbols:
//	  - symbol: 2330.TW
//	    name: TSMC
func LoadFile(path string) (*Universe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read universe: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML universe document.
func Parse(data []byte) (*Universe, error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse universe: %w", err)
	}
	ids := make([]string, 0, len(f.Symbols))
	names := make(map[string]string)
	for _, e := range f.Symbols {
		ids = append(ids, e.Symbol)
		if e.Name != "" {
			if _, ok := names[e.Symbol]; !ok {
				names[e.Symbol] = e.Name
			}
		}
	}
	u := New(ids, names)
	if u.Len() == 0 {
		return nil, fmt.Errorf("universe has no symbols")
	}
	return u, nil
}

// Preset returns a built-in universe by name.
func Preset(name string) (*Universe, error) {
	switch strings.ToLower(name) {
	case "", "tw150":
		return Taiwan150(), nil
	default:
		return nil, fmt.Errorf("unknown universe preset %q", name)
	}
}

// sortedUnique returns ids deduplicated and sorted ascending.
func sortedUnique(ids []string) []string {
	u := New(ids, nil).Symbols()
	sort.Strings(u)
	return u
}
