// Package economy provides typed resources, bundles, player ledgers and build costs.
package economy

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrInsufficientResources = errors.New("insufficient resources")
	ErrInvalidResourceType   = errors.New("invalid resource type")
	ErrNegativeAmount        = errors.New("negative amount")
)

// ResourceType enumerates the five tradeable resources. The set is closed.
type ResourceType uint8

const (
	Brick  ResourceType = iota // From hills
	Lumber                     // From forests
	Ore                        // From mountains
	Grain                      // From fields
	Wool                       // From pastures
)

// NumResources is the total number of resource types.
const NumResources = 5

var resourceNames = [NumResources]string{"brick", "lumber", "ore", "grain", "wool"}

// Resources lists every resource type in enum order.
var Resources = [NumResources]ResourceType{Brick, Lumber, Ore, Grain, Wool}

func (r ResourceType) String() string {
	if !r.Valid() {
		return fmt.Sprintf("resource(%d)", uint8(r))
	}
	return resourceNames[r]
}

// Valid reports whether r is one of the five known resources.
func (r ResourceType) Valid() bool {
	return r < NumResources
}

// ParseResource maps a resource name (case-insensitive) to its type.
func ParseResource(name string) (ResourceType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range resourceNames {
		if n == name {
			return ResourceType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidResourceType, name)
}

// Bundle is a fixed-size array holding a count for each resource type.
// Used for balances, costs, offers, requests and counters.
type Bundle [NumResources]int

// Single returns a bundle holding n units of one resource.
func Single(r ResourceType, n int) Bundle {
	var b Bundle
	if r.Valid() {
		b[r] = n
	}
	return b
}

// ParseBundle converts a name-keyed count map into a bundle.
// Unknown names and negative counts are rejected.
func ParseBundle(m map[string]int) (Bundle, error) {
	var b Bundle
	for name, n := range m {
		r, err := ParseResource(name)
		if err != nil {
			return Bundle{}, err
		}
		if n < 0 {
			return Bundle{}, fmt.Errorf("%w: %s=%d", ErrNegativeAmount, r, n)
		}
		b[r] += n
	}
	return b, nil
}

// Total returns the sum across all resource types.
func (b Bundle) Total() int {
	total := 0
	for _, n := range b {
		total += n
	}
	return total
}

// IsEmpty returns true if all quantities are zero.
func (b Bundle) IsEmpty() bool {
	for _, n := range b {
		if n != 0 {
			return false
		}
	}
	return true
}

// Valid reports whether every count is non-negative.
func (b Bundle) Valid() bool {
	for _, n := range b {
		if n < 0 {
			return false
		}
	}
	return true
}

// Covers reports whether b holds at least need of every resource.
func (b Bundle) Covers(need Bundle) bool {
	for r, n := range need {
		if b[r] < n {
			return false
		}
	}
	return true
}

// Dominates reports whether b is component-wise >= other.
func (b Bundle) Dominates(other Bundle) bool {
	return b.Covers(other)
}

func (b Bundle) Plus(o Bundle) Bundle {
	for r := range b {
		b[r] += o[r]
	}
	return b
}

func (b Bundle) Minus(o Bundle) Bundle {
	for r := range b {
		b[r] -= o[r]
	}
	return b
}

// Shortfall returns the total units missing to cover cost:
// the sum over resources of max(0, cost-have).
func (b Bundle) Shortfall(cost Bundle) int {
	missing := 0
	for r, need := range cost {
		if b[r] < need {
			missing += need - b[r]
		}
	}
	return missing
}

// Present returns the resource types with a positive count, in enum order.
func (b Bundle) Present() []ResourceType {
	var out []ResourceType
	for r, n := range b {
		if n > 0 {
			out = append(out, ResourceType(r))
		}
	}
	return out
}

// Map returns the non-zero entries keyed by resource name.
func (b Bundle) Map() map[string]int {
	out := make(map[string]int)
	for r, n := range b {
		if n != 0 {
			out[resourceNames[r]] = n
		}
	}
	return out
}

func (b Bundle) String() string {
	m := b.Map()
	if len(m) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, m[k]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// MarshalJSON encodes the bundle as a name-keyed object, omitting zero entries.
func (b Bundle) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Map())
}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	var m map[string]int
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := ParseBundle(m)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
