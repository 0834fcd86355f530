package buffer

// Number is the set of sample types the summary helpers can fold.
type Number interface {
	~int16 | ~int32 | ~int64 | ~int | ~uint16 | ~uint32 | ~uint64
}

// Ring is a fixed size circular buffer. The write cursor wraps modulo the size
// and the oldest slot is overwritten. A Ring is not safe for concurrent use,
// the owner serialises access.
type Ring[T any] struct {
	position int
	size     int
	filled   int
	data     []T
}

func NewRing[T any](size int) *Ring[T] {
	return &Ring[T]{
		size: size,
		data: make([]T, size),
	}
}

// Add writes val into the current slot and advances the cursor. It returns
// true when the cursor has wrapped back to slot 0.
func (b *Ring[T]) Add(val T) bool {
	b.data[b.position] = val
	b.position += 1
	if b.filled < b.size {
		b.filled += 1
	}
	if b.position == b.size {
		b.position = 0
		return true
	}
	return false
}

// Last returns the most recently written slot, one position behind the cursor.
func (b *Ring[T]) Last() T {
	index := b.position - 1
	if index < 0 {
		index += b.size
	}
	return b.data[index]
}

func (b *Ring[T]) At(index int) T {
	return b.data[index]
}

// Values returns a copy of the slots in storage order.
func (b *Ring[T]) Values() []T {
	out := make([]T, b.size)
	copy(out, b.data)
	return out
}

func (b *Ring[T]) Position() int {
	return b.position
}

func (b *Ring[T]) Size() int {
	return b.size
}

// Filled is the number of slots written since creation or the last Reset,
// capped at the ring size.
func (b *Ring[T]) Filled() int {
	return b.filled
}

// Clear zeroes every slot but leaves the cursor where it is.
func (b *Ring[T]) Clear() {
	var zero T
	for i := range b.data {
		b.data[i] = zero
	}
}

// Reset zeroes every slot and rewinds the cursor.
func (b *Ring[T]) Reset() {
	b.Clear()
	b.position = 0
	b.filled = 0
}

// Sum adds up every slot, filled or not.
func Sum[T Number](b *Ring[T]) T {
	var sum T
	for _, x := range b.data {
		sum += x
	}
	return sum
}

// Mean is the truncating integer mean over every slot.
func Mean[T Number](b *Ring[T]) T {
	return Sum(b) / T(b.size)
}

// Max returns the largest slot value.
func Max[T Number](b *Ring[T]) T {
	max := b.data[0]
	for _, x := range b.data[1:] {
		if x > max {
			max = x
		}
	}
	return max
}
