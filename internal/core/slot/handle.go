package slot

import (
	"fmt"
	"math"
)

// Handle identifies one entry of a Table. It pairs a slot index with the
// generation the slot had when the entry was inserted; removing the entry
// bumps the generation and every outstanding handle to it goes stale.
type Handle struct {
	index uint32
	gen   uint64
}

// Nil never resolves in any table.
var Nil = Handle{index: math.MaxUint32}

func (h Handle) Index() uint32      { return h.index }
func (h Handle) Generation() uint64 { return h.gen }
func (h Handle) IsNil() bool        { return h.index == math.MaxUint32 }

func (h Handle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d:%d", h.index, h.gen)
}
