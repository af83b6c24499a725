// Package demomap resolves demographic column headers to demographic
// dimension descriptors. It is a pure lookup: unresolved headers are
// reported by the caller, never invented here.
//
// The built-in table covers the standard wave layout (gender, six age bands,
// twelve regions, four social grades). New survey-wave columns are added by
// configuration, not code.
package demomap

import "strings"

// Dimension codes. Each names a category axis used to slice response facts;
// the codes mirror the demographic question numbers of the source surveys.
const (
	DimAge    = "QD1"
	DimGender = "QD2"
	DimRegion = "QD3"
	DimGrade  = "QD4"
)

// Descriptor identifies one demographic dimension value.
type Descriptor struct {
	// Code uniquely identifies the value, e.g. "age_18_24".
	Code string
	// Dimension is the axis the value belongs to, e.g. QD1.
	Dimension string
	// Label is the display label as printed in sheets, e.g. "18-24".
	Label string
}

// Mapper maps normalized column headers to descriptors.
type Mapper struct {
	byHeader map[string]Descriptor
}

// defaults is the built-in header table, matching the column layout the
// source surveys have carried since 2019.
var defaults = []Descriptor{
	{"gender_male", DimGender, "Male"},
	{"gender_female", DimGender, "Female"},
	{"age_18_24", DimAge, "18-24"},
	{"age_25_34", DimAge, "25-34"},
	{"age_35_44", DimAge, "35-44"},
	{"age_45_54", DimAge, "45-54"},
	{"age_55_64", DimAge, "55-64"},
	{"age_65_plus", DimAge, "65+"},
	{"region_scotland", DimRegion, "Scotland"},
	{"region_north_east", DimRegion, "North East"},
	{"region_north_west", DimRegion, "North West"},
	{"region_yorkshire_humberside", DimRegion, "Yorkshire & Humberside"},
	{"region_west_midlands", DimRegion, "West Midlands"},
	{"region_east_midlands", DimRegion, "East Midlands"},
	{"region_wales", DimRegion, "Wales"},
	{"region_eastern", DimRegion, "Eastern"},
	{"region_london", DimRegion, "London"},
	{"region_south_east", DimRegion, "South East"},
	{"region_south_west", DimRegion, "South West"},
	{"region_northern_ireland", DimRegion, "Northern Ireland"},
	{"seg_ab", DimGrade, "AB"},
	{"seg_c1", DimGrade, "C1"},
	{"seg_c2", DimGrade, "C2"},
	{"seg_de", DimGrade, "DE"},
}

// aliases folds header variations onto canonical labels before lookup.
var aliases = map[string]string{
	"men":   "male",
	"women": "female",
}

// New returns a Mapper with the built-in table.
func New() *Mapper {
	m := &Mapper{byHeader: make(map[string]Descriptor, len(defaults))}
	for _, d := range defaults {
		m.byHeader[normalize(d.Label)] = d
	}
	return m
}

// WithOverrides extends the mapper with header → code overrides from
// configuration. The code must name a known descriptor; unknown codes are
// returned so the caller can report them.
func (m *Mapper) WithOverrides(overrides map[string]string) (unknown []string) {
	byCode := make(map[string]Descriptor, len(defaults))
	for _, d := range defaults {
		byCode[d.Code] = d
	}
	for header, code := range overrides {
		d, ok := byCode[code]
		if !ok {
			unknown = append(unknown, code)
			continue
		}
		m.byHeader[normalize(header)] = Descriptor{Code: d.Code, Dimension: d.Dimension, Label: header}
	}
	return unknown
}

// Resolve maps a column header to its descriptor. The second return is false
// for headers this mapper does not know.
func (m *Mapper) Resolve(header string) (Descriptor, bool) {
	d, ok := m.byHeader[normalize(header)]
	return d, ok
}

// IsTotal reports whether the header names the authoritative Total column.
// Total is not a demographic dimension and is never resolved by the mapper.
func IsTotal(header string) bool {
	return strings.EqualFold(strings.TrimSpace(header), "Total")
}

// Descriptors returns every descriptor the mapper can resolve to, for
// seeding reference data.
func (m *Mapper) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(m.byHeader))
	seen := make(map[string]bool, len(m.byHeader))
	for _, d := range m.byHeader {
		if seen[d.Code] {
			continue
		}
		seen[d.Code] = true
		out = append(out, d)
	}
	return out
}

func normalize(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	if canonical, ok := aliases[h]; ok {
		return canonical
	}
	return h
}
