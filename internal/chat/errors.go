package chat

import "errors"

// ErrQuotaExceeded indicates the ledger denied the user's daily allowance.
// The pipeline stops before any provider spend when this is returned.
var ErrQuotaExceeded = errors.New("daily question quota exceeded")
