package marker

import (
	"encoding/json"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

// LoadClass is a pavement load class (Belastungsklasse) per RStO.
// Values are ordered by descending load capacity; None is the zero value.
type LoadClass int

const (
	None LoadClass = iota
	Bk100
	Bk32
	Bk10
	Bk3_2
	Bk1_8
	Bk1_0
	Bk0_3
)

// LoadClasses lists every classified value in descending load capacity.
var LoadClasses = []LoadClass{Bk100, Bk32, Bk10, Bk3_2, Bk1_8, Bk1_0, Bk0_3}

var loadClassNames = map[LoadClass]string{
	None:  "None",
	Bk100: "Bk100",
	Bk32:  "Bk32",
	Bk10:  "Bk10",
	Bk3_2: "Bk3_2",
	Bk1_8: "Bk1_8",
	Bk1_0: "Bk1_0",
	Bk0_3: "Bk0_3",
}

// legacy short forms written by the old planning page
var loadClassAliases = map[string]LoadClass{
	"bk100": Bk100,
	"bk32":  Bk32,
	"bk10":  Bk10,
	"bk3_2": Bk3_2,
	"bk3":   Bk3_2,
	"bk1_8": Bk1_8,
	"bk1":   Bk1_8,
	"bk1_0": Bk1_0,
	"bk0_3": Bk0_3,
}

// String returns the canonical wire spelling ("Bk3_2", "None").
func (c LoadClass) String() string {
	if name, ok := loadClassNames[c]; ok {
		return name
	}
	return loadClassNames[None]
}

// Valid reports whether c is a member of the enumeration.
func (c LoadClass) Valid() bool {
	_, ok := loadClassNames[c]
	return ok
}

// ParseLoadClass normalises a load class spelling. It accepts "." "," and "_"
// as decimal separators, ignores case and surrounding space, and maps
// anything unrecognised to None.
func ParseLoadClass(s string) LoadClass {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(".", "_", ",", "_", " ", "").Replace(key)
	if c, ok := loadClassAliases[key]; ok {
		return c
	}
	return None
}

// MarshalText implements encoding.TextMarshaler.
func (c LoadClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown values decode to
// None so historical imports never fail.
func (c *LoadClass) UnmarshalText(text []byte) error {
	*c = ParseLoadClass(string(text))
	return nil
}

// MarshalJSON encodes the canonical spelling.
func (c LoadClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts a string or null.
func (c *LoadClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = None
		return nil
	}
	*c = ParseLoadClass(s)
	return nil
}

// Schema describes LoadClass as a string in the OpenAPI document. Legacy
// spellings are accepted on input, so no enum is enforced.
func (LoadClass) Schema(huma.Registry) *huma.Schema {
	examples := make([]any, 0, len(LoadClasses)+1)
	for _, c := range LoadClasses {
		examples = append(examples, c.String())
	}
	return &huma.Schema{
		Type:        huma.TypeString,
		Description: "Pavement load class (Belastungsklasse); legacy spellings such as Bk3.2 are normalised",
		Examples:    append(examples, None.String()),
	}
}
