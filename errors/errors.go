package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode classifies every failure the CLI can surface
type ErrorCode string

const (
	// Fatal: the run aborts before (or instead of) sending anything
	ErrCodeMissingCredentialFile   ErrorCode = "missing_credential_file"
	ErrCodeInvalidPrivateKeyFormat ErrorCode = "invalid_private_key_format"
	ErrCodeNoRecipientFile         ErrorCode = "no_recipient_file"
	ErrCodeInsufficientBalance     ErrorCode = "insufficient_balance"
	ErrCodeNetworkUnreachable      ErrorCode = "network_unreachable"
	ErrCodeChainMismatch           ErrorCode = "chain_mismatch"
	ErrCodeInvalidAmount           ErrorCode = "invalid_amount"
	ErrCodeInvalidCount            ErrorCode = "invalid_count"
	ErrCodeInvalidMnemonic         ErrorCode = "invalid_mnemonic"
	ErrCodeInvalidConfig           ErrorCode = "invalid_config"
	ErrCodeStorage                 ErrorCode = "storage_error"
	ErrCodeInternal                ErrorCode = "internal_error"

	// Per-item: logged against one recipient, the batch continues
	ErrCodeSubmissionFailed ErrorCode = "submission_failed"
	ErrCodeInvalidAddress   ErrorCode = "invalid_address"
)

// Error message constants
const (
	ErrMsgMissingCredentialFile = "%s file not found. Please create this file with your private key"
	ErrMsgInvalidKeyLength      = "Invalid private key length: %d chars (expected 66)"
	ErrMsgInvalidKeyEncoding    = "Private key is not valid hex"
	ErrMsgInvalidKeyScalar      = "Private key is not a valid secp256k1 scalar"
	ErrMsgNoRecipientPath       = "No recipient file given"
	ErrMsgNoRecipientFile       = "Recipient file %s not found"
	ErrMsgEmptyRecipientFile    = "Recipient file %s contains no addresses"
	ErrMsgInsufficientBalance   = "Insufficient balance. Need %s %s but have %s %s"
	ErrMsgNetworkUnreachable    = "Failed to reach network at %s"
	ErrMsgChainMismatch         = "Endpoint reports chain id %s, expected %s"
	ErrMsgAmountRequired        = "Amount must be specified"
	ErrMsgAmountNotPositive     = "Amount must be greater than 0 %s"
	ErrMsgCountTooLow           = "Number of wallets must be at least 1"
	ErrMsgInvalidAddress        = "Recipient %q is not a valid address"
	ErrMsgBadChecksum           = "Recipient %q has an invalid checksum"
	ErrMsgTxReverted            = "Transaction %s reverted in block %s"
)

// Error carries a code, an operator-facing message and the underlying cause
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fatal reports whether the error must abort the whole run
func (e *Error) Fatal() bool {
	switch e.Code {
	case ErrCodeSubmissionFailed, ErrCodeInvalidAddress:
		return false
	default:
		return true
	}
}

// NewError creates a new Error and returns it as error interface
func NewError(code ErrorCode, message string) error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Newf is NewError with a format string
func Newf(code ErrorCode, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Wrap attaches a code and message to an existing error. A nil err yields nil.
func Wrap(code ErrorCode, err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or ErrCodeInternal
func CodeOf(err error) ErrorCode {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Code
	}
	return ErrCodeInternal
}

// Is reports whether err carries the given code
func Is(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}

// IsFatal reports whether err should abort a run. Errors without a code are fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if stderrors.As(err, &e) {
		return e.Fatal()
	}
	return true
}
