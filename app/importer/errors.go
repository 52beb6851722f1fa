package importer

import "errors"

// ErrResolution marks a store failure during identity resolution. It is
// fatal to the whole run: the pipeline must not keep writing into
// unresolved state, unlike per-post failures which are logged and skipped.
var ErrResolution = errors.New("identity resolution failed")
