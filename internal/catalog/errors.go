package catalog

import "fmt"

// LoadError reports that the catalog feed could not be fetched. It is fatal for
// the session; nothing retries it.
type LoadError struct {
	Endpoint string
	Err      error
}

func (e *LoadError) Error() string {
	if e.Endpoint == "" {
		return fmt.Sprintf("loading catalog: %v", e.Err)
	}
	return fmt.Sprintf("loading catalog from %s: %v", e.Endpoint, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ParseError reports a payload that is not an object of provider objects.
type ParseError struct {
	// Path locates the offending value, e.g. "openai.models.gpt-4o".
	Path   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := "parsing catalog"
	if e.Path != "" {
		msg += " at " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
