package models

import "slices"

// ============================================================================
// Logical Types
// ============================================================================

// LogicalType is the semantic type assigned to a column after reinterpreting
// the backend-declared type and its value frequencies. It is what candidate
// selection and persisted configuration are based on.
type LogicalType string

const (
	LogicalTypeNumeric     LogicalType = "numeric"
	LogicalTypeCategorical LogicalType = "categorical"
	LogicalTypeBoolean     LogicalType = "boolean"
	LogicalTypeDatetime    LogicalType = "datetime"
	LogicalTypeText        LogicalType = "text"
	LogicalTypeUnknown     LogicalType = "unknown"
)

// LogicalTypeOptions lists every logical type in the order type pickers show them.
var LogicalTypeOptions = []LogicalType{
	LogicalTypeNumeric,
	LogicalTypeCategorical,
	LogicalTypeBoolean,
	LogicalTypeDatetime,
	LogicalTypeText,
	LogicalTypeUnknown,
}

var logicalTypeLabels = map[LogicalType]string{
	LogicalTypeNumeric:     "Numeric (numbers, amounts)",
	LogicalTypeCategorical: "Categorical (categories, labels)",
	LogicalTypeBoolean:     "Boolean (yes/no, true/false, 0/1)",
	LogicalTypeDatetime:    "Date / Time",
	LogicalTypeText:        "Free text",
	LogicalTypeUnknown:     "Unknown / mixed",
}

// IsValidLogicalType checks if the given type is one of LogicalTypeOptions.
func IsValidLogicalType(t LogicalType) bool {
	return slices.Contains(LogicalTypeOptions, t)
}

// Label returns the human-readable label for the type.
// Invalid types get the "Unknown / mixed" label.
func (t LogicalType) Label() string {
	if label, ok := logicalTypeLabels[t]; ok {
		return label
	}
	return logicalTypeLabels[LogicalTypeUnknown]
}

// ============================================================================
// Declared Types
// ============================================================================

// DeclaredType is the column classification reported by the analysis backend.
// It is an open set: the backend may introduce new tags, which are carried
// verbatim and treated as unrecognized.
type DeclaredType string

const (
	DeclaredTypeNumeric     DeclaredType = "numeric"
	DeclaredTypeCategorical DeclaredType = "categorical"
	DeclaredTypeBoolean     DeclaredType = "boolean"
	DeclaredTypeDatetime    DeclaredType = "datetime"
	DeclaredTypeOther       DeclaredType = "other"
	DeclaredTypeUnknown     DeclaredType = "unknown"
	DeclaredTypeIgnored     DeclaredType = "ignored"
)

var knownDeclaredTypes = []DeclaredType{
	DeclaredTypeNumeric,
	DeclaredTypeCategorical,
	DeclaredTypeBoolean,
	DeclaredTypeDatetime,
	DeclaredTypeOther,
	DeclaredTypeUnknown,
	DeclaredTypeIgnored,
}

// Known reports whether the tag is one the engine recognizes.
func (t DeclaredType) Known() bool {
	return slices.Contains(knownDeclaredTypes, t)
}

// OrOther returns the type, or DeclaredTypeOther when it is absent.
func (t DeclaredType) OrOther() DeclaredType {
	if t == "" {
		return DeclaredTypeOther
	}
	return t
}
