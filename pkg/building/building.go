package building

import "slices"

// Sensor describes one sensor mounted in a building. Type is also the name
// of the sensor's column in the building frame.
type Sensor struct {
	Type string `json:"type"`
	Desc string `json:"desc"`
	Unit string `json:"unit"`
}

// Building is a building with its sensors and their readings.
type Building struct {
	Name    string
	Sensors []Sensor
	Frame   *Frame
}

// SensorTypes returns the sensor types in order.
func (b *Building) SensorTypes() []string {
	types := make([]string, len(b.Sensors))
	for i, s := range b.Sensors {
		types[i] = s.Type
	}
	return types
}

// Clone returns a deep copy of the building.
func (b *Building) Clone() *Building {
	return &Building{
		Name:    b.Name,
		Sensors: slices.Clone(b.Sensors),
		Frame:   b.Frame.Clone(),
	}
}

// Set is an ordered collection of buildings keyed by name.
type Set struct {
	names     []string
	buildings map[string]*Building
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{buildings: make(map[string]*Building)}
}

// Add appends b, replacing any building of the same name in place.
func (s *Set) Add(b *Building) {
	if _, ok := s.buildings[b.Name]; !ok {
		s.names = append(s.names, b.Name)
	}
	s.buildings[b.Name] = b
}

// Get returns the named building.
func (s *Set) Get(name string) (*Building, bool) {
	b, ok := s.buildings[name]
	return b, ok
}

// Len returns the number of buildings.
func (s *Set) Len() int {
	return len(s.names)
}

// Names returns the building names in order.
func (s *Set) Names() []string {
	return slices.Clone(s.names)
}

// Buildings returns the buildings in order.
func (s *Set) Buildings() []*Building {
	out := make([]*Building, len(s.names))
	for i, name := range s.names {
		out[i] = s.buildings[name]
	}
	return out
}

// Filter returns a new set holding the buildings for which keep is true.
// Buildings are shared, not copied.
func (s *Set) Filter(keep func(*Building) bool) *Set {
	out := NewSet()
	for _, b := range s.Buildings() {
		if keep(b) {
			out.Add(b)
		}
	}
	return out
}

// Clone returns a deep copy of the set.
func (s *Set) Clone() *Set {
	out := NewSet()
	for _, b := range s.Buildings() {
		out.Add(b.Clone())
	}
	return out
}

// SensorCount returns the total number of sensors over all buildings.
func (s *Set) SensorCount() int {
	n := 0
	for _, b := range s.buildings {
		n += len(b.Sensors)
	}
	return n
}
