package kv

import "errors"

var (
	ErrFailedOpenDB      = errors.New("failed to open database")
	ErrFailedToInit      = errors.New("failed to initialize schema")
	ErrFailedToEnableWAL = errors.New("failed to enable WAL mode")
	ErrFailedToQuery     = errors.New("failed to query")
	ErrFailedToPut       = errors.New("failed to put")
	ErrFailedToDelete    = errors.New("failed to delete")
)
