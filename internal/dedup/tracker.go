// Package dedup tracks content fingerprints seen by the packing planner so
// that files with identical bytes can share a single stored copy: map a
// cheap fingerprint to the first occurrence, detect repeats.
package dedup

// Fingerprint identifies a file's content by its XXH3-64 hash and size. Size
// is carried alongside the hash because the planner treats a fingerprint
// collision (same hash, different size) as "not a duplicate" rather than as
// an error: two different files hashing the same is an entirely
// unremarkable, expected outcome here, not a fault condition.
type Fingerprint struct {
	Hash uint64
	Size uint64
}

// Location is where the first copy of a fingerprint's content lives in the
// block stream being assembled.
type Location struct {
	FirstBlockIndex         uint32
	DecompressedBlockOffset uint32
}

// Tracker maps content fingerprints to the location of their first-seen
// copy. The planner consults it before assigning a new file to a block or
// chunk run; a hit means the file can be pointed at the existing location
// instead of being stored again.
type Tracker struct {
	locations map[Fingerprint]Location
}

// NewTracker creates an empty content-fingerprint tracker.
func NewTracker() *Tracker {
	return &Tracker{locations: make(map[Fingerprint]Location)}
}

// Lookup returns the location of a previously tracked fingerprint and true,
// or the zero Location and false if this content hasn't been seen yet.
func (t *Tracker) Lookup(fp Fingerprint) (Location, bool) {
	loc, ok := t.locations[fp]
	return loc, ok
}

// Track records the first-seen location for a fingerprint. Calling Track
// again for a fingerprint that's already tracked is a no-op: the first
// location recorded is always the one duplicates get pointed at.
func (t *Tracker) Track(fp Fingerprint, loc Location) {
	if _, exists := t.locations[fp]; exists {
		return
	}

	t.locations[fp] = loc
}

// Count returns the number of distinct fingerprints tracked.
func (t *Tracker) Count() int {
	return len(t.locations)
}

// Reset clears all tracked fingerprints, allowing the tracker to be reused
// for planning a new archive.
func (t *Tracker) Reset() {
	for k := range t.locations {
		delete(t.locations, k)
	}
}
