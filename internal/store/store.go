// Package store holds the named tables of a session and allocates default
// table names.
//
// Store performs no locking: a session is driven by one caller at a time and
// the transport is responsible for serializing calls.
package store

import (
	"fmt"
	"maps"
	"slices"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// Store maps table names to tables. Names are unique; Put overwrites.
type Store struct {
	tables map[string]*dataset.Table
}

// New creates an empty Store.
func New() *Store {
	return &Store{tables: make(map[string]*dataset.Table)}
}

// Get returns the table stored under name.
func (s *Store) Get(name string) (*dataset.Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Put stores t under name, replacing any previous table of that name.
func (s *Store) Put(name string, t *dataset.Table) {
	s.tables[name] = t
}

// Snapshot returns a copy of the name to table mapping. Callers must not
// rely on iteration order.
func (s *Store) Snapshot() map[string]*dataset.Table {
	return maps.Clone(s.tables)
}

// Names returns the stored table names in sorted order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.tables))
}

// Len returns the number of stored tables.
func (s *Store) Len() int {
	return len(s.tables)
}

// Namer allocates default table names df_1, df_2, ...
type Namer struct {
	count int
}

// Next advances the counter and returns the corresponding default name.
// The counter advances on every call, whether or not the name is used.
func (n *Namer) Next() string {
	n.count++
	return fmt.Sprintf("df_%d", n.count)
}

// Count returns how many names have been allocated.
func (n *Namer) Count() int {
	return n.count
}
