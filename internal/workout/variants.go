package workout

// Variants returns the drop-one variants of exercises. For n exercises there are exactly n variants and variant i is
// exercises without the exercise at position i, keeping the order of the rest. Variants are computed on every call
// so they always reflect the current exercise list.
func Variants(exercises []Exercise) [][]Exercise {
	variants := make([][]Exercise, len(exercises))
	for i := range exercises {
		variants[i] = without(exercises, i)
	}
	return variants
}

// ResolveSelection returns the exercises to train for selectedSetIndex.
//
// BaseSet selects the full list. An index within the current variants selects that variant. Any other index, which
// happens when exercises were removed after the selection was made, falls back to the full list.
func ResolveSelection(exercises []Exercise, selectedSetIndex int) []Exercise {
	if selectedSetIndex < 0 || selectedSetIndex >= len(exercises) {
		return exercises
	}
	return without(exercises, selectedSetIndex)
}

const alphabetSize = 26

// VariantLabel returns the display label of variant i: "A" for the first variant, "B" for the second, and so on.
// After "Z" the labels continue with "AA", "AB" like spreadsheet columns.
func VariantLabel(i int) string {
	if i < 0 {
		return ""
	}
	var label []byte
	for n := i + 1; n > 0; n = (n - 1) / alphabetSize {
		label = append([]byte{byte('A' + (n-1)%alphabetSize)}, label...)
	}
	return string(label)
}

func without(exercises []Exercise, i int) []Exercise {
	variant := make([]Exercise, 0, len(exercises)-1)
	variant = append(variant, exercises[:i]...)
	return append(variant, exercises[i+1:]...)
}
