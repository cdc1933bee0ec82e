package skeleton

import "axonmorph/pkg/raster"

// SpiderParams bounds and gates the spider classification.
type SpiderParams struct {
	// WindowLength is the BFS depth bound: a spider contains the pixels
	// reachable from its seed within this many 8-connected steps along
	// the skeleton.
	WindowLength int

	// DensityThreshold is the branch-point fraction a spider must exceed
	// to be marked pink.
	DensityThreshold float64

	// ThicknessThreshold is the minimum average thickness over the spider
	// for the pink criterion.
	ThicknessThreshold float64
}

// SpiderClassifier grows bounded BFS neighborhoods ("spiders") from branch
// points and marks structurally dense regions pink. The classifier reuses
// one visited arena across seeds; call sites that need concurrency create
// one classifier per goroutine.
type SpiderClassifier struct {
	params SpiderParams

	// Generation-stamped visited arena keyed by row-major pixel index.
	// Bumping the generation clears the arena in O(1) between seeds.
	visited    []uint32
	generation uint32

	frontier []int
	next     []int
	reached  []int
}

// NewSpiderClassifier creates a classifier with the given parameters.
func NewSpiderClassifier(params SpiderParams) *SpiderClassifier {
	return &SpiderClassifier{params: params}
}

// Spider returns the row-major indexes of all pixels reachable from seed
// within WindowLength steps of 8-connected BFS restricted to mask-true
// pixels. The expansion stops early once a round yields no new pixels.
// The returned slice is valid until the next Spider call.
func (c *SpiderClassifier) Spider(mask *raster.Bitmap, seed int) []int {
	if len(c.visited) != len(mask.Bits) {
		c.visited = make([]uint32, len(mask.Bits))
		c.generation = 0
	}
	c.generation++
	gen := c.generation

	w, h := mask.Width, mask.Height
	c.reached = append(c.reached[:0], seed)
	c.frontier = append(c.frontier[:0], seed)
	c.visited[seed] = gen

	for step := 0; step < c.params.WindowLength; step++ {
		c.next = c.next[:0]
		for _, idx := range c.frontier {
			row, col := idx/w, idx%w
			for _, off := range raster.MooreOffsets {
				nr, nc := row+off.Row, col+off.Col
				if nr < 0 || nr >= h || nc < 0 || nc >= w {
					continue
				}
				nidx := nr*w + nc
				if mask.Bits[nidx] && c.visited[nidx] != gen {
					c.visited[nidx] = gen
					c.reached = append(c.reached, nidx)
					c.next = append(c.next, nidx)
				}
			}
		}
		if len(c.next) == 0 {
			break
		}
		c.frontier, c.next = c.next, c.frontier
	}
	return c.reached
}

// Classify runs the spider analysis over every branch point that is still
// part of the eligible skeleton and returns the pink mask.
//
// Each seed's spider is measured against the branch-point mask and the
// thickness map, neither of which is mutated, and qualifying spiders are
// unioned into a fresh output mask. Because no seed observes the marks of
// earlier seeds, the result is independent of seed processing order.
func (c *SpiderClassifier) Classify(eligible, branchPoints *raster.Bitmap, thickness *raster.FloatMap) *raster.Bitmap {
	pink := raster.NewBitmap(eligible.Width, eligible.Height)

	for idx, isBranch := range branchPoints.Bits {
		if !isBranch || !eligible.Bits[idx] {
			continue
		}
		spider := c.Spider(eligible, idx)

		branchCount := 0
		thicknessSum := 0.0
		for _, sidx := range spider {
			if branchPoints.Bits[sidx] {
				branchCount++
			}
			thicknessSum += thickness.Values[sidx]
		}
		density := float64(branchCount) / float64(len(spider))
		avgThickness := thicknessSum / float64(len(spider))

		if density > c.params.DensityThreshold && avgThickness >= c.params.ThicknessThreshold {
			for _, sidx := range spider {
				pink.Bits[sidx] = true
			}
		}
	}
	return pink
}
