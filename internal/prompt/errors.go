package prompt

import "errors"

// ErrUnknownReportType is returned when a report type has no registered
// prompt builder.
var ErrUnknownReportType = errors.New("unknown report type")
