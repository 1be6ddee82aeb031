package data

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/blockscale/pkg/errors"
)

// Dataset pairs a sample matrix with optional labels, both partitioned into
// subsets of SubsetSize rows. Each subset spans every feature, so subset i is
// exactly block-row i of the underlying arrays.
type Dataset struct {
	samples *Array
	labels  *Array
}

// Subset is one row-partition of a Dataset.
type Subset struct {
	Samples   Block
	Labels    Block
	HasLabels bool
}

// LoadData partitions samples (and labels, when non-nil) into subsets of
// subsetSize rows. Labels must have one row per sample.
func LoadData(samples, labels mat.Matrix, subsetSize int) (*Dataset, error) {
	if subsetSize <= 0 {
		return nil, errors.NewValidationError("subsetSize", "must be positive", subsetSize)
	}
	n, features := samples.Dims()
	if n == 0 || features == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "LoadData")
	}
	x, err := NewArray(samples, subsetSize, features)
	if err != nil {
		return nil, err
	}
	var y *Array
	if labels != nil {
		ln, lc := labels.Dims()
		if ln != n {
			return nil, errors.NewShapeMismatchError("LoadData", "label rows", n, ln)
		}
		if y, err = NewArray(labels, subsetSize, lc); err != nil {
			return nil, err
		}
	}
	return &Dataset{samples: x, labels: y}, nil
}

// NewDataset wraps existing arrays. Both must have a single block-column and
// the same block-row layout.
func NewDataset(samples, labels *Array) (*Dataset, error) {
	if samples == nil {
		return nil, errors.Wrap(errors.ErrEmptyData, "NewDataset")
	}
	if _, cb := samples.BlocksShape(); cb != 1 {
		return nil, errors.NewShapeMismatchError("NewDataset", "sample block-columns", 1, cb)
	}
	if labels != nil {
		if _, cb := labels.BlocksShape(); cb != 1 {
			return nil, errors.NewShapeMismatchError("NewDataset", "label block-columns", 1, cb)
		}
		n, _ := samples.Shape()
		ln, _ := labels.Shape()
		if ln != n {
			return nil, errors.NewShapeMismatchError("NewDataset", "label rows", n, ln)
		}
		sr, _ := samples.BlockShape()
		lr, _ := labels.BlockShape()
		if lr != sr {
			return nil, errors.NewShapeMismatchError("NewDataset", "subset size", sr, lr)
		}
	}
	return &Dataset{samples: samples, labels: labels}, nil
}

// Len returns the number of subsets.
func (d *Dataset) Len() int {
	rb, _ := d.samples.BlocksShape()
	return rb
}

// SubsetSize returns the nominal rows per subset.
func (d *Dataset) SubsetSize() int {
	r, _ := d.samples.BlockShape()
	return r
}

// NSamples returns the total number of rows.
func (d *Dataset) NSamples() int {
	r, _ := d.samples.Shape()
	return r
}

// NFeatures returns the number of sample columns.
func (d *Dataset) NFeatures() int {
	_, c := d.samples.Shape()
	return c
}

// IsSparse reports whether samples are stored as CSR.
func (d *Dataset) IsSparse() bool {
	return d.samples.IsSparse()
}

// Samples returns the sample array.
func (d *Dataset) Samples() *Array {
	return d.samples
}

// Labels returns the label array, or nil if the dataset is unlabelled.
func (d *Dataset) Labels() *Array {
	return d.labels
}

// Subset returns subset i.
func (d *Dataset) Subset(i int) (Subset, error) {
	if i < 0 || i >= d.Len() {
		return Subset{}, errors.NewValueError("Dataset.Subset", fmt.Sprintf("subset %d out of range [0, %d)", i, d.Len()))
	}
	s := Subset{Samples: d.samples.Block(i, 0)}
	if d.labels != nil {
		s.Labels = d.labels.Block(i, 0)
		s.HasLabels = true
	}
	return s, nil
}

// String summarizes the dataset.
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset(samples=%d, features=%d, subsets=%d, subset_size=%d, labels=%t)",
		d.NSamples(), d.NFeatures(), d.Len(), d.SubsetSize(), d.labels != nil)
}
