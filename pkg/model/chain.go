// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package model

// ChainType classifies a Chain by which end it reaches.
type ChainType string

const (
	ChainFull            ChainType = "Full"
	ChainFrontendInternal ChainType = "FrontendInternal"
	ChainBackendInternal  ChainType = "BackendInternal"
)

// StitchKind is the nature of the boundary between two adjacent chain nodes.
type StitchKind string

const (
	StitchCall      StitchKind = "call"
	StitchHTTP      StitchKind = "http"
	StitchPersist   StitchKind = "persist"
	StitchTransform StitchKind = "transform"
)

// MismatchKind is the category of a contract violation found on a stitch.
type MismatchKind string

const (
	MismatchTypeMismatch     MismatchKind = "TypeMismatch"
	MismatchMissingField     MismatchKind = "MissingField"
	MismatchUnnormalizedData MismatchKind = "UnnormalizedData"
	MismatchDecoratorInvalid MismatchKind = "DecoratorInvalid"
	MismatchOpenAPIDrift     MismatchKind = "OpenAPIDrift"
)

// Severity is how serious a Mismatch is, per the configured rules table.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Mismatch is one finding on a Stitch.
type Mismatch struct {
	Kind     MismatchKind `json:"kind" yaml:"kind"`
	Severity Severity     `json:"severity" yaml:"severity"`
	Field    string       `json:"field,omitempty" yaml:"field,omitempty"`
	Message  string       `json:"message" yaml:"message"`
}

// Stitch is the adjacent pair of nodes in a Chain where the data's schema
// could change, together with whatever was found there.
type Stitch struct {
	Kind          StitchKind `json:"kind" yaml:"kind"`
	LeftSchemaRef NodeId     `json:"left_schema_ref,omitempty" yaml:"left_schema_ref,omitempty"`
	RightSchemaRef NodeId    `json:"right_schema_ref,omitempty" yaml:"right_schema_ref,omitempty"`
	Mismatches    []Mismatch `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// Chain is an ordered sequence of nodes a single logical piece of data
// flows through, from a frontend entry point to (when reached) a
// persistence model.
type Chain struct {
	Nodes    []NodeId  `json:"nodes" yaml:"nodes"`
	Type     ChainType `json:"type" yaml:"type"`
	Stitches []Stitch  `json:"stitches" yaml:"stitches"`
}

// HasCriticalMismatch reports whether any stitch in the chain carries a
// critical-severity finding.
func (c Chain) HasCriticalMismatch() bool {
	for _, s := range c.Stitches {
		for _, m := range s.Mismatches {
			if m.Severity == SeverityCritical {
				return true
			}
		}
	}
	return false
}

// ContainsDuplicateNode reports whether the chain revisits a NodeId,
// violating the acyclicity invariant. Used by tests; the extractor does not
// call it and is built to never produce one.
func (c Chain) ContainsDuplicateNode() bool {
	seen := make(map[NodeId]struct{}, len(c.Nodes))
	for _, n := range c.Nodes {
		if _, ok := seen[n]; ok {
			return true
		}
		seen[n] = struct{}{}
	}
	return false
}
