package errors

import "errors"

// ErrOptimisticLock the record was changed by someone else since it was read.
var ErrOptimisticLock = errors.New("record was modified concurrently, reload and retry")

// ErrDuplicate a unique column (matricule, email) already holds the value.
var ErrDuplicate = errors.New("duplicate value")
