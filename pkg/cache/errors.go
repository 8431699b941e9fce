package cache

import "errors"

// ErrCorrupt is returned by GetJSON when a stored entry no longer decodes.
// The entry is deleted before the error is returned.
var ErrCorrupt = errors.New("corrupt cache entry")
