package timeline

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Scalar is a JSON value that may arrive as a number or as a string.
// Upstream data uses both freely: a year can be 1893 or "1893", and an
// unknown coordinate is the empty string. The raw token is kept verbatim
// so a load/save round-trip preserves exactly what was given.
type Scalar struct {
	raw json.RawMessage
}

// Int returns a Scalar holding a JSON number.
func Int(n int) Scalar {
	return Scalar{raw: json.RawMessage(strconv.Itoa(n))}
}

// Num returns a Scalar holding a JSON floating-point number.
func Num(f float64) Scalar {
	return Scalar{raw: json.RawMessage(strconv.FormatFloat(f, 'f', -1, 64))}
}

// Str returns a Scalar holding a JSON string.
func Str(s string) Scalar {
	b, _ := json.Marshal(s)
	return Scalar{raw: b}
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	if len(s.raw) == 0 {
		return []byte(`""`), nil
	}
	return s.raw, nil
}

func (s *Scalar) UnmarshalJSON(b []byte) error {
	s.raw = append(s.raw[:0:0], b...)
	return nil
}

// IsEmpty reports whether the value is unset, null, or the empty string.
func (s Scalar) IsEmpty() bool {
	switch string(s.raw) {
	case "", "null", `""`:
		return true
	}
	return false
}

// Float64 returns the value as a float64 when it is a number or a string
// containing one.
func (s Scalar) Float64() (float64, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	raw := string(s.raw)
	if strings.HasPrefix(raw, `"`) {
		var str string
		if err := json.Unmarshal(s.raw, &str); err != nil {
			return 0, false
		}
		raw = strings.TrimSpace(str)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// String returns the value without JSON quoting, for display and logging.
func (s Scalar) String() string {
	if len(s.raw) == 0 {
		return ""
	}
	if strings.HasPrefix(string(s.raw), `"`) {
		var str string
		if err := json.Unmarshal(s.raw, &str); err == nil {
			return str
		}
	}
	return string(s.raw)
}

// Event is one entry of a person's life trajectory.
type Event struct {
	Year   Scalar `json:"year"`
	Age    Scalar `json:"age"`
	Place  string `json:"place"`
	Lat    Scalar `json:"lat"`
	Lon    Scalar `json:"lon"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Style controls how a person's trajectory is drawn on the map.
type Style struct {
	MarkerColor string `json:"markerColor"`
	LineColor   string `json:"lineColor"`
}

// Person is one biographical timeline: a display name, optional style,
// and an ordered sequence of events. Events are kept in the order they
// were supplied; chronological order is the common case but not enforced.
type Person struct {
	Name   string  `json:"name"`
	Style  *Style  `json:"style"`
	Events []Event `json:"events"`
}

// Clone returns a deep copy of the person.
func (p Person) Clone() Person {
	cp := p
	if p.Style != nil {
		style := *p.Style
		cp.Style = &style
	}
	if p.Events != nil {
		cp.Events = make([]Event, len(p.Events))
		copy(cp.Events, p.Events)
	}
	return cp
}

// Dataset is the full person collection, the unit persisted as one JSON
// document.
type Dataset struct {
	Persons []Person `json:"persons"`
}

// IsEmpty reports whether the dataset carries no persons.
func (d Dataset) IsEmpty() bool {
	return len(d.Persons) == 0
}

// Find looks up a person by exact name match against the trimmed stored
// name. Lookups are deliberately case-SENSITIVE while Upsert dedupes
// case-insensitively: a read for "foo" does not match a stored "Foo",
// but upserting "foo" replaces a stored "Foo". Callers relying on the
// asymmetry should not "fix" it here.
func (d Dataset) Find(name string) (Person, bool) {
	for _, p := range d.Persons {
		if strings.TrimSpace(p.Name) == name {
			return p.Clone(), true
		}
	}
	return Person{}, false
}

// Clone returns a deep copy of the dataset.
func (d Dataset) Clone() Dataset {
	if d.Persons == nil {
		return Dataset{}
	}
	persons := make([]Person, len(d.Persons))
	for i, p := range d.Persons {
		persons[i] = p.Clone()
	}
	return Dataset{Persons: persons}
}
