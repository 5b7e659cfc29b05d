package main

// Exit codes
const (
	ExitSuccess     = 0 // Success, including lookups that yield no badge
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable config, invalid values)
	ExitDataError   = 3 // Data error (unreadable input file or PDF)
	ExitNoDOI       = 4 // extract found no DOI
)
