package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidSignal        ErrorCode = 102
	ErrCodeInvalidTrade         ErrorCode = 103
	ErrCodeInvalidInput         ErrorCode = 104
	ErrCodeMissingParameter     ErrorCode = 105

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeDateOutOfRange        ErrorCode = 203
	ErrCodeStoreWriteFailed      ErrorCode = 204
	ErrCodeStoreVersionMismatch  ErrorCode = 205

	// Strategy errors (400-499)
	ErrCodeInvalidSignalSequence ErrorCode = 400
	ErrCodeLogicError            ErrorCode = 401
	ErrCodeInvalidBias           ErrorCode = 402
	ErrCodeUnsupportedStrategy   ErrorCode = 403

	// Portfolio errors (500-599)
	ErrCodeInvalidSelectionMethod ErrorCode = 500
	ErrCodeTimelineFailed         ErrorCode = 501

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed   ErrorCode = 601
	ErrCodeBacktestNoDatasource ErrorCode = 608
	ErrCodeBacktestNoStore      ErrorCode = 609

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataWriteFailed ErrorCode = 701
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidProvider       ErrorCode = 704
)
