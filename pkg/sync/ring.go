package sync

import (
	"encoding/binary"
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring over stripe indices [0, stripes)
type ring struct {
	points *treemap.Map

	// first is the stripe owning the lowest point, which is where hashes past
	// the highest point wrap around to.
	first int
}

// newRing places each stripe on the ring replicationFactor times
func newRing(stripes int, replicationFactor uint) *ring {
	points := treemap.NewWith(utils.Int64Comparator)
	for stripe := 0; stripe < stripes; stripe++ {
		nameHash, _ := murmur3.Sum128([]byte(fmt.Sprintf("lock%d", stripe)))

		var seed [12]byte
		binary.LittleEndian.PutUint64(seed[:8], nameHash)
		for i := uint32(0); i < uint32(replicationFactor); i++ {
			binary.LittleEndian.PutUint32(seed[8:], i)
			point, _ := murmur3.Sum128(seed[:])
			points.Put(int64(point), stripe)
		}
	}

	r := &ring{points: points}
	if _, first := points.Min(); first != nil {
		r.first = first.(int)
	}
	return r
}

// shard returns the stripe owning key
func (r *ring) shard(key []byte) int {
	hash, _ := murmur3.Sum128(key)
	if _, stripe := r.points.Ceiling(int64(hash)); stripe != nil {
		return stripe.(int)
	}
	return r.first
}
