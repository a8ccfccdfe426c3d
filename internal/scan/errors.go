package scan

import "errors"

var (
	ErrInvalidImage         = errors.New("invalid image")
	ErrIdentificationFailed = errors.New("identification failed")
	ErrNoSuggestions        = errors.New("no identification suggestions")
	ErrStorageFailed        = errors.New("image storage failed")
	ErrPersistFailed        = errors.New("scan record persistence failed")
	ErrScanExists           = errors.New("scan already exists")
)
