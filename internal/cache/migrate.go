package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SchemaVersion is the layout version written by Migrate.
const SchemaVersion = 2

// Result reports what Migrate found and left in storage.
type Result struct {
	FromVersion int
	ToVersion   int
	Liked       []Item
	Cart        []Item
}

// Migrated reports whether any step ran.
func (r Result) Migrated() bool {
	return r.FromVersion < r.ToVersion
}

type step struct {
	version int
	apply   func(m *Migrator, s Storage) error
}

var steps = []step{
	{version: 2, apply: (*Migrator).upgradeV2},
}

// Migrator upgrades a storage instance to SchemaVersion.
type Migrator struct {
	// Random returns a value in [0, 1) and seeds default cart ratings.
	// nil uses math/rand.
	Random func() float64
}

// Migrate upgrades s with a zero Migrator.
func Migrate(s Storage) (Result, error) {
	return (&Migrator{}).Migrate(s)
}

// Migrate runs every step newer than the stored version, recording the version
// after each one, and returns the resulting lists. Storage already at
// SchemaVersion is only read.
func (m *Migrator) Migrate(s Storage) (Result, error) {
	res := Result{FromVersion: StoredVersion(s)}
	version := res.FromVersion

	for _, st := range steps {
		if st.version <= version {
			continue
		}
		if err := st.apply(m, s); err != nil {
			return res, fmt.Errorf("migrate to v%d: %w", st.version, err)
		}
		if err := s.SetItem(KeySchemaVersion, strconv.Itoa(st.version)); err != nil {
			return res, err
		}
		version = st.version
	}

	res.ToVersion = version
	res.Liked = readList(s, KeyLiked)
	res.Cart = readList(s, KeyCart)
	return res, nil
}

// StoredVersion returns the layout version of s. The legacy completion flag
// counts as version 2.
func StoredVersion(s Storage) int {
	version := 0
	if raw, ok := s.GetItem(KeySchemaVersion); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && n > 0 {
			version = n
		}
	}
	if flag, ok := s.GetItem(KeyMigrationFlag); ok && flag != "" && version < 2 {
		version = 2
	}
	return version
}

func (m *Migrator) upgradeV2(s Storage) error {
	liked, legacy := mergeLegacy(s)
	for i, item := range liked {
		liked[i] = NormalizeItem(item)
	}
	if err := writeList(s, KeyLiked, liked); err != nil {
		return err
	}
	if legacy {
		if err := s.RemoveItem(KeyLegacyLikes); err != nil {
			return err
		}
	}

	cart := readList(s, KeyCart)
	for i, item := range cart {
		item = NormalizeItem(item)
		if !hasRatings(item) {
			item["ratings"] = defaultRatings(m.Random)
		}
		cart[i] = item
	}
	if err := writeList(s, KeyCart, cart); err != nil {
		return err
	}

	return s.SetItem(KeyMigrationFlag, "true")
}

// MergeLegacyLikes folds the legacy name-to-bool map into the liked list,
// stores the merged list and only then removes the legacy key. Names are
// visited in sorted order.
func MergeLegacyLikes(s Storage) ([]Item, error) {
	liked, legacy := mergeLegacy(s)
	if !legacy {
		return liked, nil
	}
	if err := writeList(s, KeyLiked, liked); err != nil {
		return nil, err
	}
	if err := s.RemoveItem(KeyLegacyLikes); err != nil {
		return nil, err
	}
	return liked, nil
}

// mergeLegacy returns liked with the legacy names appended. It reports whether
// the legacy key is present and never writes.
func mergeLegacy(s Storage) ([]Item, bool) {
	liked := readList(s, KeyLiked)

	raw, ok := s.GetItem(KeyLegacyLikes)
	if !ok {
		return liked, false
	}

	var legacy map[string]any
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil || legacy == nil {
		return liked, true
	}

	present := make(map[string]bool, len(liked))
	for _, item := range liked {
		present[item.Name()] = true
	}

	names := make([]string, 0, len(legacy))
	for name, v := range legacy {
		if truthy(v) && !present[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		liked = append(liked, Item{"name": name, "price": 0, "oldPrice": "", "img": ""})
	}
	return liked, true
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
