// Package rules loads and exposes the immutable formatting rule catalog.
package rules

import "fmt"

// CatalogError reports a rule catalog that cannot be used
type CatalogError struct {
	Source  string
	RuleID  string
	Message string
	Cause   error
}

func (e *CatalogError) Error() string {
	where := e.Source
	if e.RuleID != "" {
		where = fmt.Sprintf("%s: rule %q", where, e.RuleID)
	}
	if e.Cause != nil {
		return fmt.Sprintf("rule catalog error: %s: %s: %v", where, e.Message, e.Cause)
	}
	return fmt.Sprintf("rule catalog error: %s: %s", where, e.Message)
}

func (e *CatalogError) Unwrap() error {
	return e.Cause
}
