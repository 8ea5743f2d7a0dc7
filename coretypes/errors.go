package coretypes

import "fmt"

const (
	ErrNilDataset      ErrorCode = "ERR_NIL_DATASET"
	ErrNilBatch        ErrorCode = "ERR_NIL_BATCH"
	ErrZeroBatchSize   ErrorCode = "ERR_ZERO_BATCH_SIZE"
	ErrBatchIndexRange ErrorCode = "ERR_BATCH_INDEX_RANGE"
	ErrSampleTooLarge  ErrorCode = "ERR_SAMPLE_TOO_LARGE"
	ErrTooManyDims     ErrorCode = "ERR_TOO_MANY_DIMS"
	ErrTruncatedHeader ErrorCode = "ERR_TRUNCATED_HEADER"
	ErrTruncatedData   ErrorCode = "ERR_TRUNCATED_DATA"
	ErrCropTooLarge    ErrorCode = "ERR_CROP_TOO_LARGE"
)

// CoreError reports a structural misuse the core cannot continue past,
// as opposed to an arithmetic edge case (see Faults), which is always
// accumulated rather than raised.
type CoreError struct {
	Code ErrorCode
	Msg  string
}

func (e *CoreError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func NewError(code ErrorCode, msg string) error {
	return &CoreError{Code: code, Msg: msg}
}
