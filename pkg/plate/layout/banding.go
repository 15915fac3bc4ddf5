package layout

// BandHeight returns the row band height used for groupSize on a plate with
// the given number of rows. It is groupSize, plus one when groupSize does not
// divide rows evenly. Returns 0 for a non-positive groupSize.
func BandHeight(rows, groupSize int) int {
	if groupSize <= 0 {
		return 0
	}
	if rows%groupSize != 0 {
		return groupSize + 1
	}
	return groupSize
}

// StartRows returns the first row of each band: 0, h, 2h, ... for every
// multiple of the band height strictly below rows. The result is empty for a
// non-positive rows or groupSize.
func StartRows(rows, groupSize int) []int {
	h := BandHeight(rows, groupSize)
	if h == 0 || rows <= 0 {
		return nil
	}
	starts := make([]int, 0, (rows+h-1)/h)
	for r := 0; r < rows; r += h {
		starts = append(starts, r)
	}
	return starts
}

// evenBands keeps the start rows at even band indices.
func evenBands(starts []int) []int {
	kept := make([]int, 0, (len(starts)+1)/2)
	for i := 0; i < len(starts); i += 2 {
		kept = append(kept, starts[i])
	}
	return kept
}
