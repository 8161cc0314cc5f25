package util

import (
	"crypto/sha256"
	"sort"
	"strconv"
)

// HashIDSet returns an order-insensitive digest of an id set. The input
// slice is not modified.
func HashIDSet(ids []uint64) [32]byte {
	sorted := make([]uint64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	buffer := GetBytesBuffer()
	defer PutBytesBuffer(buffer)
	defer buffer.Reset()
	for i := range sorted {
		buffer.WriteString(strconv.FormatUint(sorted[i], 10))
		buffer.WriteByte(':')
	}
	return sha256.Sum256(buffer.Bytes())
}
