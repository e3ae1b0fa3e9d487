// Package storagekey derives coretime chain storage keys for broker regions.
package storagekey

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"

	"regionx/internal/regions/models"
)

const (
	palletName  = "Broker"
	storageName = "Regions"
)

// Twox128 is the 128-bit xxhash used for pallet and storage prefixes: two
// 64-bit xxhash digests with seeds 0 and 1, each little-endian.
func Twox128(data []byte) []byte {
	out := make([]byte, 0, 16)
	for seed := uint64(0); seed < 2; seed++ {
		h := xxhash.NewWithSeed(seed)
		_, _ = h.Write(data)
		out = binary.LittleEndian.AppendUint64(out, h.Sum64())
	}
	return out
}

// Blake2_128 is the 16-byte blake2b digest used by Blake2_128Concat maps.
func Blake2_128(data []byte) []byte {
	h, err := blake2b.New(16, nil)
	if err != nil {
		// only fails for invalid sizes or keys
		panic(err)
	}
	_, _ = h.Write(data)
	return h.Sum(nil)
}

// RegionKey is twox128("Broker") ++ twox128("Regions") ++ blake2_128(id) ++ id.
func RegionKey(id models.RegionID) []byte {
	enc := id.Encode()
	key := make([]byte, 0, 16+16+16+len(enc))
	key = append(key, Twox128([]byte(palletName))...)
	key = append(key, Twox128([]byte(storageName))...)
	key = append(key, Blake2_128(enc)...)
	key = append(key, enc...)
	return key
}

// RegionIDFromKey decodes the region id from the last 16 bytes of a storage key.
func RegionIDFromKey(key []byte) (models.RegionID, error) {
	start := len(key) - models.RegionIDSize
	if start < 0 {
		start = 0
	}
	return models.DecodeRegionID(key[start:])
}
