// Package log defines standard attribute keys for block-partitioned array
// operations. Keys follow a hierarchical "area.name" convention so records
// from kernels, the scheduler and estimators can be filtered uniformly.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator type, e.g. "StandardScaler".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one estimator instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "transform", "fit_transform", "shuffle", "resample"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is logging.
	ComponentKey = "ml.component"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of rows of the logical matrix.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of columns of the logical matrix.
	FeaturesKey = "data.features"

	// SparseKey reports whether the array is stored as CSR blocks.
	SparseKey = "data.sparse"

	// BlockRowsKey and BlockColsKey give the nominal block shape.
	BlockRowsKey = "block.rows"
	BlockColsKey = "block.cols"

	// RowBandsKey is the number of row-bands (and therefore tasks) of a kernel.
	RowBandsKey = "block.row_bands"

	// BandKey identifies one row-band within a kernel call.
	BandKey = "block.band"

	// SubsetSizeKey is the row count used to partition a dataset.
	SubsetSizeKey = "data.subset_size"
)

// Scheduling
const (
	// TaskNameKey names the kernel a task belongs to.
	TaskNameKey = "task.name"

	// TaskIDKey is a unique id per submitted task.
	TaskIDKey = "task.id"

	// TasksKey is the number of tasks a call submitted.
	TasksKey = "task.count"

	// WorkersKey is the concurrency bound of a scheduler.
	WorkersKey = "scheduler.workers"
)

// Performance
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// WarningKey carries a warning value routed through pkg/errors.Warn.
	WarningKey = "warning"
)

// Configuration
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute values.
const (
	OperationFit              = "fit"
	OperationTransform        = "transform"
	OperationFitTransform     = "fit_transform"
	OperationInverseTransform = "inverse_transform"
	OperationShuffle          = "shuffle"
	OperationResample         = "resample"
)
