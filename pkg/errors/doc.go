// Package errors provides structured error types for better observability
// and programmatic error handling across the application.
//
// Example usage:
//
//	err := errors.WrapWithContext(
//	    errors.ErrCodeCallFailure,
//	    "failed to list units",
//	    callErr,
//	    map[string]interface{}{
//	        "collector": "units",
//	        "machine": machineName,
//	    },
//	)
package errors
