package buffer

// BufferSyncState selects which of the BufferSyncStateCount uniform buffers the CPU writes
// this frame. The GPU may still be reading the two previous slots.
type BufferSyncState int

const (
	BufferSyncStateZero BufferSyncState = iota
	BufferSyncStateOne
	BufferSyncStateTwo
)

// BufferSyncStateCount is the number of frames that may be in flight at once.
const BufferSyncStateCount = 3

// Advance returns the next slot in the ring.
//
// Returns:
//   - BufferSyncState: (s+1) mod BufferSyncStateCount
func (s BufferSyncState) Advance() BufferSyncState {
	return BufferSyncState((int(s) + 1) % BufferSyncStateCount)
}

func (s BufferSyncState) String() string {
	switch s {
	case BufferSyncStateZero:
		return "zero"
	case BufferSyncStateOne:
		return "one"
	case BufferSyncStateTwo:
		return "two"
	default:
		return "invalid"
	}
}
