package skeleton

// ResolveMotherLengths assigns each reported component the pixel count of
// its mother: the largest original-skeleton component that contains more
// than half of the component's pixels.
//
// The two labelings are deliberately different masks — reported components
// come from the filtered blue-only residual, mothers from the original
// unfiltered skeleton — which is the only way a non-trivial overlap between
// disjoint connected components can occur. A component with no qualifying
// mother is its own mother: the result is never smaller than the
// component's own size.
//
// The returned slice is indexed like reported.Components.
func ResolveMotherLengths(reported, original *Labeling) []int {
	lengths := make([]int, len(reported.Components))
	mothersBySize := componentsBySizeDesc(original.Components)

	overlap := make([]int, len(original.Components)+1)

	for i, comp := range reported.Components {
		n := comp.Size()

		// Tally how many of this component's pixels fall in each
		// original-skeleton component.
		touched := touchedLabels(comp, original, overlap)

		lengths[i] = n
		for _, mother := range mothersBySize {
			if mother.Size() <= n {
				// Candidates are sorted descending; nothing larger remains.
				break
			}
			if 2*overlap[mother.ID] > n {
				lengths[i] = mother.Size()
				break
			}
		}

		for _, id := range touched {
			overlap[id] = 0
		}
	}
	return lengths
}

// touchedLabels accumulates per-mother overlap counts for one component
// into overlap (indexed by mother id) and returns the ids it touched so
// the caller can reset them without clearing the whole slice.
func touchedLabels(comp *Component, original *Labeling, overlap []int) []int {
	var touched []int
	for _, idx := range comp.Pixels {
		id := int(original.Labels[idx])
		if id == 0 {
			continue
		}
		if overlap[id] == 0 {
			touched = append(touched, id)
		}
		overlap[id]++
	}
	return touched
}
