package store

import "encoding/json"

// NumCategories is the size of the fixed category universe. Category
// ids run from 0 to NumCategories-1 (the five color labels).
const NumCategories = 5

// CategorySet is a set of category ids backed by a bitmask. The zero
// value is the empty set, which is semantically "no category" and is
// never stored distinctly from absent.
type CategorySet uint8

// NewCategorySet builds a set from ids. Ids outside [0, NumCategories)
// are ignored.
func NewCategorySet(ids ...int) CategorySet {
	var c CategorySet
	for _, id := range ids {
		c = c.With(id)
	}
	return c
}

// Has reports whether id is in the set.
func (c CategorySet) Has(id int) bool {
	if id < 0 || id >= NumCategories {
		return false
	}
	return c&(1<<uint(id)) != 0
}

// With returns the set with id added.
func (c CategorySet) With(id int) CategorySet {
	if id < 0 || id >= NumCategories {
		return c
	}
	return c | 1<<uint(id)
}

// Without returns the set with id removed.
func (c CategorySet) Without(id int) CategorySet {
	if id < 0 || id >= NumCategories {
		return c
	}
	return c &^ (1 << uint(id))
}

// Contains reports whether every member of other is also in c.
func (c CategorySet) Contains(other CategorySet) bool {
	return c&other == other
}

// IsEmpty reports whether the set has no members.
func (c CategorySet) IsEmpty() bool {
	return c == 0
}

// Len returns the number of members.
func (c CategorySet) Len() int {
	n := 0
	for id := 0; id < NumCategories; id++ {
		if c.Has(id) {
			n++
		}
	}
	return n
}

// IDs returns the members in ascending order. An empty set yields an
// empty (non-nil) slice so it serializes as [] rather than null.
func (c CategorySet) IDs() []int {
	ids := make([]int, 0, NumCategories)
	for id := 0; id < NumCategories; id++ {
		if c.Has(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

// MarshalJSON encodes the set as a JSON array of ids, the format the
// categories table stores.
func (c CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.IDs())
}

// UnmarshalJSON decodes a JSON array of ids, ignoring out-of-range
// values.
func (c *CategorySet) UnmarshalJSON(data []byte) error {
	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*c = NewCategorySet(ids...)
	return nil
}
