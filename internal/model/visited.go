package model

import (
	"encoding/json"
	"slices"
	"sync"
)

// VisitedSet records the source URLs already used by a research run.
// It only grows: URLs are never removed. It is safe for concurrent use.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// NewVisitedSet creates a set holding urls.
func NewVisitedSet(urls ...string) *VisitedSet {
	v := &VisitedSet{urls: make(map[string]struct{}, len(urls))}
	for _, u := range urls {
		if u != "" {
			v.urls[u] = struct{}{}
		}
	}
	return v
}

// AddNew adds the urls not yet in the set and returns them in input order.
// Duplicates within urls and empty strings are dropped, so the set grows by
// at most len(urls).
func (v *VisitedSet) AddNew(urls []string) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.urls == nil {
		v.urls = make(map[string]struct{})
	}

	added := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := v.urls[u]; ok {
			continue
		}
		v.urls[u] = struct{}{}
		added = append(added, u)
	}
	return added
}

// Contains reports whether url is in the set.
func (v *VisitedSet) Contains(url string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.urls[url]
	return ok
}

// Len returns the number of URLs in the set.
func (v *VisitedSet) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.urls)
}

// List returns the URLs in sorted order.
func (v *VisitedSet) List() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	list := make([]string, 0, len(v.urls))
	for u := range v.urls {
		list = append(list, u)
	}
	slices.Sort(list)
	return list
}

// MarshalJSON encodes the set as a sorted array of URLs.
func (v *VisitedSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.List())
}

// UnmarshalJSON replaces the set contents with a JSON array of URLs.
func (v *VisitedSet) UnmarshalJSON(data []byte) error {
	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return err
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.urls = make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u != "" {
			v.urls[u] = struct{}{}
		}
	}
	return nil
}
