package dayindex

import "lifeledger/internal/core"

// Palette maps events to display colours. Lookups fall through
// ByType, then ByCategory, then Neutral.
type Palette struct {
	Income     string
	Expense    string
	Neutral    string
	ByType     map[string]string
	ByCategory map[core.Category]string
}

// DefaultPalette returns the built-in colours.
func DefaultPalette() Palette {
	return Palette{
		Income:  "#a6e3a1",
		Expense: "#f38ba8",
		Neutral: "#7f849c",
		ByType: map[string]string{
			core.TypeWedding:     "#f5c2e7",
			core.TypeFuneral:     "#6c7086",
			core.TypeBirthday:    "#f9e2af",
			core.TypeAppointment: "#cba6f7",
		},
		ByCategory: map[core.Category]string{
			core.CategoryCeremony: "#f5c2e7",
			core.CategoryTodo:     "#89b4fa",
			core.CategorySchedule: "#94e2d5",
			core.CategoryExpense:  "#fab387",
		},
	}
}

// ColorFor applies the colour precedence: inflow, then outflow of a
// receipt or transfer, then type, category and neutral.
func (p Palette) ColorFor(e core.UnifiedEvent) string {
	switch {
	case e.IsReceived:
		return p.Income
	case e.Type == core.TypeReceipt || e.Type == core.TypeTransfer:
		return p.Expense
	}
	if c, ok := p.ByType[e.Type]; ok {
		return c
	}
	if c, ok := p.ByCategory[effectiveCategory(e.Category)]; ok {
		return c
	}
	return p.Neutral
}
