package slots

import (
	"context"
	"errors"
	"math/rand"
)

// MaxSlots is the hard ceiling of the collection. Slot numbers are drawn
// from [1, MaxSlots] and are never reused.
const MaxSlots = 10000

// ErrExhausted is returned once every slot number has been minted.
var ErrExhausted = errors.New("collection exhausted: no free slot numbers")

// SlotRepository reports the slot numbers already taken by minted NFTs.
// Implementations must read current persistent state on every call; the
// allocator never caches across calls because other instances mint
// concurrently against the same table.
type SlotRepository interface {
	UsedSlots(ctx context.Context) (map[int]struct{}, error)
}

// Allocator picks an unused slot number from [1, max].
type Allocator struct {
	repo SlotRepository
	max  int
	intn func(int) int
}

// maxRandomDraws bounds rejection sampling before falling back to a
// linear scan of the free set. At high fill ratios random draws mostly
// collide, so the scan keeps allocation time bounded near the ceiling.
const maxRandomDraws = 64

func NewAllocator(repo SlotRepository, max int) *Allocator {
	if max <= 0 {
		max = MaxSlots
	}
	return &Allocator{repo: repo, max: max, intn: rand.Intn}
}

// Allocate returns a slot number not present in the current used set, or
// ErrExhausted when the collection is full.
//
// The read of the used set and the eventual insert of the NFT row are not
// atomic; two racing mints can draw the same number. The nfts table's
// uniqueness constraint is the backstop, and the losing insert is retried
// as a fresh allocation.
func (a *Allocator) Allocate(ctx context.Context) (int, error) {
	used, err := a.repo.UsedSlots(ctx)
	if err != nil {
		return 0, err
	}

	if len(used) >= a.max {
		return 0, ErrExhausted
	}

	for i := 0; i < maxRandomDraws; i++ {
		n := a.intn(a.max) + 1
		if _, taken := used[n]; !taken {
			return n, nil
		}
	}

	free := make([]int, 0, a.max-len(used))
	for n := 1; n <= a.max; n++ {
		if _, taken := used[n]; !taken {
			free = append(free, n)
		}
	}
	return free[a.intn(len(free))], nil
}
