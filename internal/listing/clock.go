package listing

import "sync/atomic"

// sequence hands out strictly increasing request tags.
type sequence struct {
	n atomic.Uint64
}

func (s *sequence) Next() uint64 { return s.n.Add(1) }

