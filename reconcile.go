package vgrid

import "sync/atomic"

// slotIDSeq issues slot identities. Package-global so IDs stay unique even
// across engines sharing a renderer.
var slotIDSeq atomic.Int64

// KeyFunc identifies an item for reconciliation. Two items with the same key
// are "the same item" across buffer updates: their slot keeps its identity
// and only has its content refreshed. The default key is the pair
// (absolute index, pending flag), which makes a pending-to-resolved
// transition reuse the placeholder's slot through the pairing step below.
type KeyFunc[T any] func(Item[T]) any

// slotKey is the default reconciliation key.
type slotKey struct {
	Index   int
	Pending bool
}

func defaultKey[T any](it Item[T]) any {
	return slotKey{Index: it.Index, Pending: it.Pending}
}

// reconcile diffs the previous slot list against the new visible items and
// returns a minimal-churn slot list:
//
//  1. Items missing from prev are additions; slots missing from next are
//     freed.
//  2. The i-th freed slot's identity is reassigned the i-th added item's
//     data, so entering items reuse leaving slots instead of allocating.
//  3. Freed slots with no pairing are dropped; added items with no pairing
//     get newly created slots, appended at the end.
//
// Surviving and paired slots keep their position in the previous list's
// order and their ID — the slot list is deliberately not sorted by index,
// because a stable order and identity are what let the rendering
// collaborator keep per-slot resources alive. The number of newly allocated
// slot identities is exactly max(0, additions-freed), returned for
// observability.
//
// The input slots are the engine's private working set; published buffers
// are value snapshots of them (see Engine), so refreshing them in place here
// never touches memory a consumer holds.
func reconcile[T any](prev []*Slot[T], next []Item[T], key KeyFunc[T]) (out []*Slot[T], allocated int) {
	if key == nil {
		key = defaultKey[T]
	}

	prevKeys := make(map[any]struct{}, len(prev))
	for _, s := range prev {
		prevKeys[key(Item[T]{Index: s.Index, Value: s.Value, Pending: s.Pending})] = struct{}{}
	}
	nextByKey := make(map[any]Item[T], len(next))
	var toAdd []Item[T]
	for _, it := range next {
		k := key(it)
		nextByKey[k] = it
		if _, ok := prevKeys[k]; !ok {
			toAdd = append(toAdd, it)
		}
	}

	out = make([]*Slot[T], 0, len(next))
	paired := 0
	for _, s := range prev {
		k := key(Item[T]{Index: s.Index, Value: s.Value, Pending: s.Pending})
		if it, ok := nextByKey[k]; ok {
			// Unchanged item: same identity, refreshed content.
			s.Index = it.Index
			s.Value = it.Value
			s.Pending = it.Pending
			out = append(out, s)
			continue
		}
		if paired < len(toAdd) {
			// Leaving slot reused for an entering item.
			it := toAdd[paired]
			paired++
			s.Index = it.Index
			s.Value = it.Value
			s.Pending = it.Pending
			out = append(out, s)
			continue
		}
		// Freed slot with no pairing: dropped.
	}

	for _, it := range toAdd[paired:] {
		out = append(out, &Slot[T]{ID: slotIDSeq.Add(1), Index: it.Index, Value: it.Value, Pending: it.Pending})
		allocated++
	}
	return out, allocated
}

// position stamps every slot's render transform from the window's geometry.
// Kept separate from reconcile so identity decisions never depend on layout.
func position[T any](slots []*Slot[T], g Geometry) {
	for _, s := range slots {
		s.Pos = g.ItemPos(s.Index)
	}
}
