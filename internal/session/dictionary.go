package session

// ElementKey is the structural identity of an element descriptor.
// Two descriptors with equal keys are the same dictionary entry.
type ElementKey struct {
	TestID             string
	AccessibilityLabel string
	Text               string
	Type               string
	Selector           string
}

// Key returns the structural key of e.
func (e ElementInfo) Key() ElementKey {
	return ElementKey{
		TestID:             e.TestID,
		AccessibilityLabel: e.AccessibilityLabel,
		Text:               e.Text,
		Type:               e.Type,
		Selector:           e.Selector,
	}
}

// Dictionary builds an ordered, deduplicated element list.
// The zero value is not usable; call NewDictionary.
type Dictionary struct {
	index    map[ElementKey]int
	elements []ElementInfo
}

// NewDictionary returns a dictionary seeded with existing elements.
// Duplicates in seed collapse onto their first occurrence.
func NewDictionary(seed ...ElementInfo) *Dictionary {
	d := &Dictionary{index: make(map[ElementKey]int, len(seed))}
	for _, e := range seed {
		d.Intern(e)
	}
	return d
}

// Intern returns the index of e, appending it if it is new.
func (d *Dictionary) Intern(e ElementInfo) int {
	k := e.Key()
	if i, ok := d.index[k]; ok {
		return i
	}
	i := len(d.elements)
	d.index[k] = i
	d.elements = append(d.elements, e)
	return i
}

// Lookup returns the index of e without inserting it.
func (d *Dictionary) Lookup(e ElementInfo) (int, bool) {
	i, ok := d.index[e.Key()]
	return i, ok
}

// Len returns the number of distinct elements.
func (d *Dictionary) Len() int {
	return len(d.elements)
}

// Elements returns a copy of the dictionary in insertion order.
func (d *Dictionary) Elements() []ElementInfo {
	out := make([]ElementInfo, len(d.elements))
	copy(out, d.elements)
	return out
}
