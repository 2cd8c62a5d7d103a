package quiz

// Category groups the regional/national test variants for one discipline.
type Category struct {
	Name  string
	Tests []string
}

// GeneralTestID is available to every proctor regardless of category.
const GeneralTestID = "general"

// Categories is static configuration: category id -> governed tests.
// Immutable at runtime.
var Categories = map[string]Category{
	"al": {Name: "AL", Tests: []string{"ch8_regional", "ch8_national"}},
	"fs": {Name: "FS", Tests: []string{"ch9_regional", "ch9_national"}},
	"cf": {Name: "CF", Tests: []string{"ch10_regional", "ch10_national"}},
	"ae": {Name: "AE", Tests: []string{"ch11_regional", "ch11_national"}},
	"cp": {Name: "CP", Tests: []string{"ch12_13_regional", "ch12_13_national"}},
	"ws": {Name: "WS", Tests: []string{"ch14_regional", "ch14_national"}},
	"sp": {Name: "SP", Tests: []string{"ch15_regional", "ch15_national"}},
}

// ValidCategory reports whether id names a configured category.
func ValidCategory(id string) bool {
	_, ok := Categories[id]
	return ok
}
