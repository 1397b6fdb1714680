package engine

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
)

// NewWorkerRand returns an independently-seeded *math/rand.Rand suitable for
// handing to one worker/replica goroutine. Workers never share a *rand.Rand:
// math/rand's default source is not safe for concurrent use, and the
// original implementation seeds each thread's RNG independently rather than
// drawing from a shared one.
func NewWorkerRand() *mrand.Rand {
	return mrand.New(mrand.NewSource(seedInt64()))
}

// seedInt64 draws a seed from crypto/rand so that concurrently-started
// workers (which may start within the same clock tick) don't collide on a
// time-based seed.
func seedInt64() int64 {
	max := big.NewInt(1)
	max.Lsh(max, 63)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		var buf [8]byte
		_, _ = rand.Read(buf[:])
		return int64(binary.BigEndian.Uint64(buf[:]) &^ (1 << 63))
	}
	return n.Int64()
}
