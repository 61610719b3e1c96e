package remote

import "errors"

// Sentinel errors classifying transport failures. The monitor loop
// retries ErrConnect on the next cycle but treats ErrAuth as fatal,
// since retrying with the same credentials cannot succeed.
var (
	ErrAuth    = errors.New("authentication rejected")
	ErrConnect = errors.New("connection failed")
)
