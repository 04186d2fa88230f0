package catalog

import "sync/atomic"

// Store holds the current catalog snapshot. Readers call Current once per
// request and work on that value; Swap replaces it wholesale.
type Store struct {
	current atomic.Pointer[Catalog]
}

func NewStore(c *Catalog) *Store {
	s := &Store{}
	s.current.Store(c)
	return s
}

func (s *Store) Current() *Catalog {
	return s.current.Load()
}

// Swap installs c and returns the previous snapshot
func (s *Store) Swap(c *Catalog) *Catalog {
	return s.current.Swap(c)
}
