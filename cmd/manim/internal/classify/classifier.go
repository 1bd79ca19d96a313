// Copyright (C) 2025 MANIM Project
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package classify

import (
	"errors"
	"strings"
)

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

// Category identifies a user-actionable failure class.
type Category int

const (
	// CategoryUnclassified is the total-function default when no rule matches.
	CategoryUnclassified Category = iota

	// CategoryToolMissing means no usable language runtime was found.
	CategoryToolMissing

	// CategoryVersionUnsupported means the located runtime is too old.
	CategoryVersionUnsupported

	// CategoryDependencyInstallFailed means package installation failed.
	// FailureRecord.Network distinguishes connectivity from other causes.
	CategoryDependencyInstallFailed

	// CategoryKeyGenerationFailed means fresh key material could not be
	// generated or persisted.
	CategoryKeyGenerationFailed

	// CategoryKeyParseFailed means persisted key material is missing,
	// incomplete, or unreadable.
	CategoryKeyParseFailed

	// CategoryGuiDependencyMissing means the optional GUI toolkit is absent
	// at the point the application actually needs it.
	CategoryGuiDependencyMissing

	// CategoryEncryptionBackendUnavailable means the encrypted storage
	// engine is absent and fallback is not permitted.
	CategoryEncryptionBackendUnavailable
)

// String returns the stable identifier used in logs and JSON output.
func (c Category) String() string {
	switch c {
	case CategoryToolMissing:
		return "ToolMissing"
	case CategoryVersionUnsupported:
		return "VersionUnsupported"
	case CategoryDependencyInstallFailed:
		return "DependencyInstallFailed"
	case CategoryKeyGenerationFailed:
		return "KeyGenerationFailed"
	case CategoryKeyParseFailed:
		return "KeyParseFailed"
	case CategoryGuiDependencyMissing:
		return "GuiDependencyMissing"
	case CategoryEncryptionBackendUnavailable:
		return "EncryptionBackendUnavailable"
	default:
		return "Unclassified"
	}
}

// Categorized is implemented by typed errors from the launcher's own
// components. Errors that carry a category skip substring matching entirely;
// text rules exist only for opaque third-party output.
type Categorized interface {
	FailureCategory() Category
}

// -----------------------------------------------------------------------------
// FailureRecord
// -----------------------------------------------------------------------------

// maxExcerptBytes caps the retained raw output. Diagnostic detail in tool
// output clusters at the end (tracebacks, pip error summaries), so the tail
// is kept.
const maxExcerptBytes = 4096

// FailureRecord is the classified, user-facing form of a stage failure.
// Ephemeral; produced per failing stage and never persisted.
type FailureRecord struct {
	// Category is the failure class. Never a zero-information value:
	// unmatched input still yields CategoryUnclassified with RawExcerpt set.
	Category Category

	// Network is meaningful only for CategoryDependencyInstallFailed and
	// reports whether the failure looks like a connectivity problem.
	Network bool

	// RawExcerpt is the tail of the captured sub-tool output.
	RawExcerpt string

	// Remediation is a localized, actionable message distinct from the raw
	// diagnostic text.
	Remediation string
}

// -----------------------------------------------------------------------------
// Rule table
// -----------------------------------------------------------------------------

// rule binds a literal diagnostic phrase to a category. Rules are evaluated
// in order and the first match wins, so more specific phrases must precede
// broader ones.
type rule struct {
	substring string
	category  Category
	network   bool
}

// rules is ordered and case-sensitive. Sources for the phrases:
//   - pip resolver and network errors ("No matching distribution found",
//     "Could not find a version that satisfies the requirement", urllib3
//     timeout/DNS strings)
//   - Python import errors for the optional GUI toolkit and the encrypted
//     backend module
//   - the application's own startup guard messages
var rules = []rule{
	{"No matching distribution found", CategoryDependencyInstallFailed, true},
	{"Could not find a version that satisfies the requirement", CategoryDependencyInstallFailed, true},
	{"Temporary failure in name resolution", CategoryDependencyInstallFailed, true},
	{"ReadTimeoutError", CategoryDependencyInstallFailed, true},
	{"NewConnectionError", CategoryDependencyInstallFailed, true},
	{"Connection refused", CategoryDependencyInstallFailed, true},
	{"No module named 'PySide6'", CategoryGuiDependencyMissing, false},
	{"No module named PySide6", CategoryGuiDependencyMissing, false},
	{"No module named 'pysqlcipher3'", CategoryEncryptionBackendUnavailable, false},
	{"SQLCipher is required but unavailable", CategoryEncryptionBackendUnavailable, false},
	{"Required environment variable is missing", CategoryKeyParseFailed, false},
	{"Runtime key file is missing while database file exists", CategoryKeyParseFailed, false},
	{"externally-managed-environment", CategoryDependencyInstallFailed, false},
	{"No space left on device", CategoryDependencyInstallFailed, false},
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

// Classify maps raw sub-tool output to a FailureRecord.
//
// # Description
//
// Pure and total: every input produces a record. The ordered rule table is
// scanned for the first case-sensitive substring match; unmatched input
// yields CategoryUnclassified with the raw text retained so the user can be
// pointed at the full log.
//
// # Inputs
//
//   - rawOutput: combined captured stdout/stderr of the failed sub-tool
//
// # Outputs
//
//   - FailureRecord: category, network flag, excerpt, localized remediation
func Classify(rawOutput string) FailureRecord {
	rec := FailureRecord{
		Category:   CategoryUnclassified,
		RawExcerpt: excerpt(rawOutput),
	}
	for _, r := range rules {
		if strings.Contains(rawOutput, r.substring) {
			rec.Category = r.category
			rec.Network = r.network
			break
		}
	}
	rec.Remediation = Remediation(rec.Category, rec.Network)
	return rec
}

// ClassifyError builds a FailureRecord from a stage error plus its captured
// output. Typed errors from the launcher's own components carry their
// category directly; only untyped failures fall back to substring matching
// over the captured text.
func ClassifyError(err error, rawOutput string) FailureRecord {
	var cat Categorized
	if errors.As(err, &cat) {
		rec := FailureRecord{
			Category:   cat.FailureCategory(),
			RawExcerpt: excerpt(rawOutput),
		}
		if rec.RawExcerpt == "" {
			rec.RawExcerpt = err.Error()
		}
		// Typed install failures still consult the text rules for the
		// network flag; connectivity is only visible in pip's output.
		if rec.Category == CategoryDependencyInstallFailed {
			rec.Network = looksLikeNetworkFailure(rawOutput)
		}
		rec.Remediation = Remediation(rec.Category, rec.Network)
		return rec
	}
	return Classify(rawOutput + "\n" + err.Error())
}

// looksLikeNetworkFailure reports whether captured output matches any
// network-flagged rule.
func looksLikeNetworkFailure(rawOutput string) bool {
	for _, r := range rules {
		if r.network && strings.Contains(rawOutput, r.substring) {
			return true
		}
	}
	return false
}

// excerpt keeps the tail of the output, bounded by maxExcerptBytes.
func excerpt(raw string) string {
	raw = strings.TrimSpace(raw)
	if len(raw) <= maxExcerptBytes {
		return raw
	}
	return raw[len(raw)-maxExcerptBytes:]
}
