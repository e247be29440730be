package domain

import "fmt"

// AllClinicians is the roster sentinel meaning "no clinician filter"
const AllClinicians = "ALL"

// Selection is the user's current pick in the clinician roster.
// The zero value is NoSelection.
type Selection struct {
	index int
	set   bool
}

// NoSelection means nothing is chosen; it behaves like index 0
var NoSelection = Selection{}

// SelectIndex returns a selection of the given roster row
func SelectIndex(i int) Selection {
	return Selection{index: i, set: true}
}

// SelectionFromPtr maps an optional index onto a Selection
func SelectionFromPtr(i *int) Selection {
	if i == nil {
		return NoSelection
	}
	return SelectIndex(*i)
}

// Index returns the selected row and whether a row was chosen
func (s Selection) Index() (int, bool) {
	return s.index, s.set
}

func (s Selection) String() string {
	if !s.set {
		return "none"
	}
	return fmt.Sprintf("%d", s.index)
}

// ChartKind is the chart type requested from the renderer
type ChartKind string

const (
	ChartBar ChartKind = "bar"
	ChartPie ChartKind = "pie"
)

// ChartRequest carries a count table and its presentation labels
type ChartRequest struct {
	ID            string     `json:"id"`
	Kind          ChartKind  `json:"kind"`
	Title         string     `json:"title"`
	CategoryLabel string     `json:"category_label"`
	CountLabel    string     `json:"count_label"`
	Attribute     Attribute  `json:"attribute"`
	Table         CountTable `json:"table"`
}
