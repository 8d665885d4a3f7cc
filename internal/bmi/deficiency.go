package bmi

import "strings"

// Deficiency is one of the fixed nutrient options offered on the form.
type Deficiency string

const (
	Iron       Deficiency = "Iron"
	VitaminD   Deficiency = "Vitamin D"
	VitaminB12 Deficiency = "Vitamin B12"
	Calcium    Deficiency = "Calcium"
	Protein    Deficiency = "Protein"
	Fiber      Deficiency = "Fiber"
	Magnesium  Deficiency = "Magnesium"
	Zinc       Deficiency = "Zinc"
)

// DeficiencyOptions returns the fixed options in display order.
func DeficiencyOptions() []Deficiency {
	return []Deficiency{Iron, VitaminD, VitaminB12, Calcium, Protein, Fiber, Magnesium, Zinc}
}

// SelectDeficiencies unions the checked options with an optional free-text
// entry. Checked options come first in display order, the trimmed custom entry
// last. Labels outside the fixed list are ignored and duplicates collapse.
// It returns nil when nothing remains.
func SelectDeficiencies(selected []string, custom string) []string {
	checked := make(map[string]bool, len(selected))
	for _, s := range selected {
		checked[s] = true
	}

	var out []string
	for _, opt := range DeficiencyOptions() {
		if checked[string(opt)] {
			out = append(out, string(opt))
		}
	}

	if c := strings.TrimSpace(custom); c != "" {
		for _, existing := range out {
			if existing == c {
				return out
			}
		}
		out = append(out, c)
	}
	return out
}
