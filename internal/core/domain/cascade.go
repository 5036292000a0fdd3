package domain

// RefGraph gives the cascade planner access to a store's records and to its
// reverse reference index.
type RefGraph interface {
	// Record returns the record for key, or nil if it is absent.
	Record(key CacheKey) (*Record, error)
	// Referrers returns the keys of the records that reference key.
	Referrers(key CacheKey) ([]CacheKey, error)
}

// PlanCascade returns the keys to delete when key is removed with cascade,
// key first. Records reachable from key are deleted too, unless a record
// outside that reachable set still references them; those are kept together
// with everything they reach. The check only looks at the direct referrers of
// the candidates, not at global reachability from the root.
func PlanCascade(key CacheKey, g RefGraph) ([]CacheKey, error) {
	root, err := g.Record(key)
	if err != nil || root == nil {
		return nil, err
	}

	candidates := map[CacheKey]*Record{key: root}
	order := []CacheKey{key}
	queue := root.References()
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if _, seen := candidates[next]; seen {
			continue
		}
		rec, err := g.Record(next)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		candidates[next] = rec
		order = append(order, next)
		queue = append(queue, rec.References()...)
	}

	var held []CacheKey
	for _, k := range order[1:] {
		referrers, err := g.Referrers(k)
		if err != nil {
			return nil, err
		}
		for _, r := range referrers {
			if _, inside := candidates[r]; !inside {
				held = append(held, k)
				break
			}
		}
	}

	retained := make(map[CacheKey]struct{})
	for len(held) > 0 {
		k := held[len(held)-1]
		held = held[:len(held)-1]
		if _, ok := retained[k]; ok {
			continue
		}
		retained[k] = struct{}{}
		for _, ref := range candidates[k].References() {
			if _, inside := candidates[ref]; inside && ref != key {
				held = append(held, ref)
			}
		}
	}

	out := make([]CacheKey, 0, len(order)-len(retained))
	for _, k := range order {
		if _, ok := retained[k]; !ok {
			out = append(out, k)
		}
	}
	return out, nil
}

// ReferenceIndex is an in-memory reverse reference index: for each key, the
// set of keys whose records reference it.
type ReferenceIndex map[CacheKey]map[CacheKey]struct{}

// Update replaces the outgoing references of from, given its previous and new record.
func (idx ReferenceIndex) Update(from CacheKey, previous, current *Record) {
	for _, ref := range previous.References() {
		if set, ok := idx[ref]; ok {
			delete(set, from)
			if len(set) == 0 {
				delete(idx, ref)
			}
		}
	}
	for _, ref := range current.References() {
		set, ok := idx[ref]
		if !ok {
			set = make(map[CacheKey]struct{})
			idx[ref] = set
		}
		set[from] = struct{}{}
	}
}

// Referrers returns the keys referencing key.
func (idx ReferenceIndex) Referrers(key CacheKey) []CacheKey {
	set := idx[key]
	out := make([]CacheKey, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
