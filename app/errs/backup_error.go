package errs

import "fmt"

type BackupErrorCode string

const (
	CodeNotFound        BackupErrorCode = "BACKUP_NOT_FOUND"
	CodeNotCompleted    BackupErrorCode = "BACKUP_NOT_COMPLETED"
	CodeInvalidMode     BackupErrorCode = "INVALID_RESTORE_MODE"
	CodeBadPassword     BackupErrorCode = "INVALID_PASSWORD"
	CodePasswordNeeded  BackupErrorCode = "PASSWORD_REQUIRED"
	CodeCorruptArchive  BackupErrorCode = "CORRUPT_ARCHIVE"
	CodeStorageFailure  BackupErrorCode = "STORAGE_FAILURE"
	CodeRestoreConflict BackupErrorCode = "RESTORE_CONFLICT"
)

// BackupError is the domain error for the backup subsystem. Recoverable
// errors (bad input, wrong password) map to 400 at the route boundary;
// the rest map to 500.
type BackupError struct {
	Code        BackupErrorCode
	Recoverable bool
	Message     string
	Err         error
}

func (e *BackupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BackupError) Unwrap() error { return e.Err }

func Recoverable(code BackupErrorCode, msg string) *BackupError {
	return &BackupError{Code: code, Recoverable: true, Message: msg}
}

func Fatal(code BackupErrorCode, msg string, err error) *BackupError {
	return &BackupError{Code: code, Recoverable: false, Message: msg, Err: err}
}
