package ingestion

import "errors"

var (
	// ErrRepositoryRequired is returned when a candidate repository is not provided.
	ErrRepositoryRequired = errors.New("candidate repository required")

	// ErrInvalidBatchSize is returned when the import batch size is not positive.
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrInvalidDataset is returned when a dataset document cannot be decoded.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrDatasetRequired is returned when Import is called with a nil dataset.
	ErrDatasetRequired = errors.New("dataset required")
)
