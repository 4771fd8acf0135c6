package taxonomy

import "encoding/json"

// Set is an unordered collection of taxonomy fields. The zero value is not
// usable; construct with NewSet.
type Set map[Field]struct{}

// NewSet builds a set from the given fields.
func NewSet(fields ...Field) Set {
	s := make(Set, len(fields))
	for _, f := range fields {
		s[f] = struct{}{}
	}
	return s
}

// Add inserts a field into the set.
func (s Set) Add(f Field) {
	s[f] = struct{}{}
}

// Has reports whether the set contains f.
func (s Set) Has(f Field) bool {
	_, ok := s[f]
	return ok
}

// Len returns the number of fields in the set.
func (s Set) Len() int {
	return len(s)
}

// Values returns the members in canonical catalog order. Members outside the
// catalog are omitted.
func (s Set) Values() []Field {
	out := make([]Field, 0, len(s))
	for _, f := range ordered {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// Union returns a new set containing the members of both sets.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for f := range s {
		out[f] = struct{}{}
	}
	for f := range other {
		out[f] = struct{}{}
	}
	return out
}

// MarshalJSON encodes the set as a sorted array of field names.
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes an array of field names into the set.
func (s *Set) UnmarshalJSON(data []byte) error {
	var fields []Field
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*s = NewSet(fields...)
	return nil
}
