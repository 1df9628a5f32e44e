package model

// ItemReport holds the probe results of one content item, keyed by URL in
// extraction order.
//
// Entries are kept in a slice rather than a map so renderers can iterate in
// insertion order without a separate key list.
type ItemReport struct {
	// Item is the validated content item.
	Item ContentItem `json:"item"`

	// Results are the probe results in extraction order. URLs are unique.
	Results []ProbeResult `json:"results"`
}

// NewItemReport creates an ItemReport with capacity for n results.
func NewItemReport(item ContentItem, n int) *ItemReport {
	return &ItemReport{
		Item:    item,
		Results: make([]ProbeResult, 0, n),
	}
}

// Add appends a result. A result for a URL already present is ignored so
// the first occurrence keeps its position.
func (r *ItemReport) Add(result ProbeResult) {
	if r.Has(result.URL) {
		return
	}
	r.Results = append(r.Results, result)
}

// Has reports whether the report contains an entry for url.
func (r *ItemReport) Has(url string) bool {
	for _, res := range r.Results {
		if res.URL == url {
			return true
		}
	}
	return false
}

// Get returns the result for url.
func (r *ItemReport) Get(url string) (ProbeResult, bool) {
	for _, res := range r.Results {
		if res.URL == url {
			return res, true
		}
	}
	return ProbeResult{}, false
}

// URLs returns the keys of the mapping in order.
func (r *ItemReport) URLs() []string {
	urls := make([]string, len(r.Results))
	for i, res := range r.Results {
		urls[i] = res.URL
	}
	return urls
}

// Len returns the number of entries.
func (r *ItemReport) Len() int {
	return len(r.Results)
}

// IsEmpty reports whether the item has no entries.
func (r *ItemReport) IsEmpty() bool {
	return len(r.Results) == 0
}

// ErrorCount returns the number of entries whose status is not 200.
func (r *ItemReport) ErrorCount() int {
	n := 0
	for _, res := range r.Results {
		if res.IsError() {
			n++
		}
	}
	return n
}

// Apply removes the entries the filter does not keep. Order is preserved.
func (r *ItemReport) Apply(f Filter) {
	if f == FilterAll {
		return
	}
	kept := r.Results[:0]
	for _, res := range r.Results {
		if f.Keep(res) {
			kept = append(kept, res)
		}
	}
	r.Results = kept
}

// Clone returns a deep copy of the report. The item's field source is shared.
func (r *ItemReport) Clone() *ItemReport {
	c := &ItemReport{
		Item:    r.Item,
		Results: make([]ProbeResult, len(r.Results)),
	}
	copy(c.Results, r.Results)
	return c
}
