package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPeriod        ErrorCode = 102
	ErrCodeInvalidThreshold     ErrorCode = 103
	ErrCodeMissingParameter     ErrorCode = 104
	ErrCodeUnknownStrategy      ErrorCode = 105
	ErrCodeInvalidType          ErrorCode = 106

	// Data errors (200-299)
	ErrCodeNoData            ErrorCode = 200
	ErrCodeDataNotFound      ErrorCode = 201
	ErrCodeQueryFailed       ErrorCode = 202
	ErrCodeInvalidDataFormat ErrorCode = 203

	// Backtest errors (300-399)
	ErrCodeBacktestState ErrorCode = 300
	ErrCodeRunCancelled  ErrorCode = 301
	ErrCodeWriteFailed   ErrorCode = 302
)
