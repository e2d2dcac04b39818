package bankledger

import "math/rand/v2"

const (
	minAccountID      = 100000
	maxAccountID      = 999999
	allocatorAttempts = 200000
)

// Allocator hands out 6-digit account ids in [100000, 999999).
type Allocator struct {
	intn func(int) int
}

// NewAllocator returns an Allocator drawing from intn, which must return a
// value in [0, n). A nil intn uses math/rand/v2.
func NewAllocator(intn func(int) int) *Allocator {
	if intn == nil {
		intn = rand.IntN
	}
	return &Allocator{intn: intn}
}

// Allocate picks an id absent from used and reserves it there. It gives up
// with ErrAllocationExhausted after a fixed number of collisions.
func (a *Allocator) Allocate(used map[int]string) (int, error) {
	for range allocatorAttempts {
		id := minAccountID + a.intn(maxAccountID-minAccountID)
		if _, taken := used[id]; taken {
			continue
		}
		used[id] = ""
		return id, nil
	}
	return 0, ErrAllocationExhausted
}
