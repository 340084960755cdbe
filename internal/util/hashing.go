package util

import (
	"crypto/sha256"
	"encoding/binary"
)

// HashSignature folds an LSH signature into a bucket number in [0, buckets).
func HashSignature(sig []int64, buckets uint32) uint32 {
	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)

	var raw [8]byte
	for i := range sig {
		binary.BigEndian.PutUint64(raw[:], uint64(sig[i]))
		buffer.Write(raw[:])
	}
	sum := sha256.Sum256(buffer.Bytes())
	return uint32(binary.BigEndian.Uint64(sum[:8]) % uint64(buckets))
}
