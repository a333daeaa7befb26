package kvs

import "strings"

// ErrorKind is the closed taxonomy of failures this store can report
// (spec.md §7). It is deliberately flat: domain errors are never wrapped
// past the boundary where a collaborator error is translated into one.
type ErrorKind string

const (
	ErrUnmappedError          ErrorKind = "UnmappedError"
	ErrFileNotFound           ErrorKind = "FileNotFound"
	ErrKvsFileReadError       ErrorKind = "KvsFileReadError"
	ErrKvsHashFileReadError   ErrorKind = "KvsHashFileReadError"
	ErrJsonParserError        ErrorKind = "JsonParserError"
	ErrJsonGeneratorError     ErrorKind = "JsonGeneratorError"
	ErrPhysicalStorageFailure ErrorKind = "PhysicalStorageFailure"
	ErrIntegrityCorrupted     ErrorKind = "IntegrityCorrupted"
	ErrValidationFailed       ErrorKind = "ValidationFailed"
	ErrEncryptionFailed       ErrorKind = "EncryptionFailed"
	ErrResourceBusy           ErrorKind = "ResourceBusy"
	ErrOutOfStorageSpace      ErrorKind = "OutOfStorageSpace"
	ErrQuotaExceeded          ErrorKind = "QuotaExceeded"
	ErrAuthenticationFailed   ErrorKind = "AuthenticationFailed"
	ErrKeyNotFound            ErrorKind = "KeyNotFound"
	ErrKeyDefaultNotFound     ErrorKind = "KeyDefaultNotFound"
	ErrSerializationFailed    ErrorKind = "SerializationFailed"
	ErrInvalidSnapshotId      ErrorKind = "InvalidSnapshotId"
	ErrConversionFailed       ErrorKind = "ConversionFailed"
	ErrMutexLockFailed        ErrorKind = "MutexLockFailed"
	ErrInvalidValueType       ErrorKind = "InvalidValueType"
)

var errorMessages = map[ErrorKind]string{
	ErrUnmappedError:          "Error that was not yet mapped",
	ErrFileNotFound:           "File not found",
	ErrKvsFileReadError:       "KVS file read error",
	ErrKvsHashFileReadError:   "KVS hash file read error",
	ErrJsonParserError:        "JSON parser error",
	ErrJsonGeneratorError:     "JSON generator error",
	ErrPhysicalStorageFailure: "Physical storage failure",
	ErrIntegrityCorrupted:     "Integrity corrupted",
	ErrValidationFailed:       "Validation failed",
	ErrEncryptionFailed:       "Encryption failed",
	ErrResourceBusy:           "Resource is busy",
	ErrOutOfStorageSpace:      "Out of storage space",
	ErrQuotaExceeded:          "Quota exceeded",
	ErrAuthenticationFailed:   "Authentication failed",
	ErrKeyNotFound:            "Key not found",
	ErrKeyDefaultNotFound:     "Key default value not found",
	ErrSerializationFailed:    "Serialization failed",
	ErrInvalidSnapshotId:      "Invalid snapshot ID",
	ErrConversionFailed:       "Conversion failed",
	ErrMutexLockFailed:        "Mutex failed",
	ErrInvalidValueType:       "Invalid value type",
}

// Message returns the fixed English text for k, or "Unknown Error!" for any
// kind not in the taxonomy above (spec.md §7).
func (k ErrorKind) Message() string {
	if msg, ok := errorMessages[k]; ok {
		return msg
	}
	return "Unknown Error!"
}

// Error carries the domain error kind plus enough context (operation, path,
// wrapped cause) to diagnose a failure without a second lookup.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Err  error
}

func kvsErrf(kind ErrorKind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Error() string {
	var buf strings.Builder
	if e.Op != "" {
		buf.WriteString(e.Op)
		buf.WriteString(": ")
	}
	if e.Path != "" {
		buf.WriteString(e.Path)
		buf.WriteString(": ")
	}
	buf.WriteString(e.Kind.Message())
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
