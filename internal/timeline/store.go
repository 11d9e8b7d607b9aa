package timeline

import "strings"

// Store is the in-memory representation of the dataset plus a
// deduplicated, order-preserving index of known names. It has no
// concurrency control of its own; every access is mediated by the cache
// façade's lock.
type Store struct {
	dataset Dataset
	names   []string
	seen    map[string]struct{}
}

func NewStore() *Store {
	return &Store{seen: make(map[string]struct{})}
}

func fold(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Reset replaces the dataset wholesale and rebuilds the name index.
// Roster names come first, then names derived from the dataset, with
// case-insensitive first-occurrence dedupe.
func (s *Store) Reset(ds Dataset, roster []string) {
	s.dataset = ds
	s.names = nil
	s.seen = make(map[string]struct{})
	for _, n := range roster {
		s.addName(n)
	}
	for _, p := range ds.Persons {
		s.addName(p.Name)
	}
}

func (s *Store) addName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	key := fold(name)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.names = append(s.names, name)
}

// Upsert replaces the existing entry whose name matches case-insensitively,
// or appends when none does, and records the name in the index. A person
// whose name is empty after trimming is silently ignored. Reports whether
// the store was mutated.
func (s *Store) Upsert(p Person) bool {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return false
	}
	key := fold(name)
	replaced := false
	for i := range s.dataset.Persons {
		if fold(s.dataset.Persons[i].Name) == key {
			s.dataset.Persons[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		s.dataset.Persons = append(s.dataset.Persons, p)
	}
	s.addName(name)
	return true
}

// Dataset returns the live dataset. The caller owns synchronization and
// must copy before releasing the lock.
func (s *Store) Dataset() Dataset {
	return s.dataset
}

// Snapshot returns a deep copy safe to serialize outside the lock.
func (s *Store) Snapshot() Dataset {
	return s.dataset.Clone()
}

// Names returns a copy of the name index.
func (s *Store) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of persons held.
func (s *Store) Len() int {
	return len(s.dataset.Persons)
}
