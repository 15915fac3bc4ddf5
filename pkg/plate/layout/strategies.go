package layout

import (
	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
)

// cdcDims and cdcGroupSize fix the legacy CDC layout.
var cdcDims = plate.Plate96

const cdcGroupSize = 3

func exhaustiveLayout(dims plate.Dimensions, _ int) (plate.Sequence, error) {
	seq := make(plate.Sequence, 0, dims.Cells())
	for r := 0; r < dims.Rows; r++ {
		for c := 0; c < dims.Columns; c++ {
			seq = append(seq, plate.At(r, c))
		}
	}
	return seq, nil
}

func sampleLayout(dims plate.Dimensions, groupSize int) (plate.Sequence, error) {
	if groupSize > dims.Rows {
		return nil, perrors.New(perrors.ErrCodeInvalidGroupSize,
			"group size %d does not fit a plate with %d rows", groupSize, dims.Rows)
	}
	return bandedColumns(dims, StartRows(dims.Rows, groupSize), groupSize, 1), nil
}

func skipSampleLayout(dims plate.Dimensions, groupSize int) (plate.Sequence, error) {
	if span := 2*(groupSize-1) + 1; span > dims.Rows {
		return nil, perrors.New(perrors.ErrCodeInvalidGroupSize,
			"group size %d spans %d rows when skipping, plate has %d", groupSize, span, dims.Rows)
	}
	starts := evenBands(StartRows(dims.Rows, groupSize))
	return bandedColumns(dims, starts, groupSize, 2), nil
}

func primerLayout(dims plate.Dimensions, _ int) (plate.Sequence, error) {
	return bandedRows(dims, StartRows(dims.Rows, 1)), nil
}

func skipPrimerLayout(dims plate.Dimensions, _ int) (plate.Sequence, error) {
	return bandedRows(dims, evenBands(StartRows(dims.Rows, 1))), nil
}

func cdcSampleLayout(dims plate.Dimensions, _ int) (plate.Sequence, error) {
	if dims.Rows < cdcDims.Rows || dims.Columns < cdcDims.Columns {
		return nil, perrors.New(perrors.ErrCodeInvalidDimensions,
			"cdc layout needs a %s plate, got %s", cdcDims, dims)
	}
	return sampleLayout(cdcDims, cdcGroupSize)
}

// bandedColumns emits, for each band start and each column, groupSize wells
// at rows start, start+stride, ... Bands whose last row falls off the plate
// are skipped.
func bandedColumns(dims plate.Dimensions, starts []int, groupSize, stride int) plate.Sequence {
	seq := make(plate.Sequence, 0, len(starts)*dims.Columns*groupSize)
	for _, start := range starts {
		if start+stride*(groupSize-1) >= dims.Rows {
			continue
		}
		for c := 0; c < dims.Columns; c++ {
			for j := 0; j < groupSize; j++ {
				seq = append(seq, plate.At(start+stride*j, c))
			}
		}
	}
	return seq
}

// bandedRows emits every column of each start row.
func bandedRows(dims plate.Dimensions, starts []int) plate.Sequence {
	seq := make(plate.Sequence, 0, len(starts)*dims.Columns)
	for _, r := range starts {
		for c := 0; c < dims.Columns; c++ {
			seq = append(seq, plate.At(r, c))
		}
	}
	return seq
}
