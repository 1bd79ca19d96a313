// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classify

// CategorizedError attaches a failure category to an error chain. The
// launcher's own components wrap their sentinel errors with a category so
// the orchestrator never has to pattern-match their text.
type CategorizedError struct {
	Category Category
	Err      error
}

// Error returns the wrapped error's message.
func (e *CategorizedError) Error() string {
	if e.Err == nil {
		return e.Category.String()
	}
	return e.Err.Error()
}

// Unwrap enables errors.Is and errors.As through the chain.
func (e *CategorizedError) Unwrap() error { return e.Err }

// FailureCategory implements Categorized.
func (e *CategorizedError) FailureCategory() Category { return e.Category }

// Wrap attaches a category to err. Returns nil for a nil err.
func Wrap(c Category, err error) error {
	if err == nil {
		return nil
	}
	return &CategorizedError{Category: c, Err: err}
}

var _ Categorized = (*CategorizedError)(nil)
