package diag

// Diagnostic is one reportable finding.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Notes    []string
	// Err is the error the diagnostic was built from, if any.
	Err error
}
