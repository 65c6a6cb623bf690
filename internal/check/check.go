// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package check implements the contract checker: for each stitch in a
// chain, canonicalizes the two sides' field types and validators and
// classifies any divergence into a Mismatch with its configured severity.
package check

import (
	"sort"
	"strings"

	"github.com/contractlens/contractlens/internal/config"
	"github.com/contractlens/contractlens/pkg/model"
)

// schemaLookup is the subset of *graph.Graph the checker needs.
type schemaLookup interface {
	Schema(id model.NodeId) (model.Schema, bool)
}

// Checker applies the configured severity rules to every stitch of every
// chain in a run.
type Checker struct {
	rules config.RulesConfig
	g     schemaLookup
}

// New returns a Checker using the given severity rules.
func New(g schemaLookup, rules config.RulesConfig) *Checker {
	return &Checker{g: g, rules: rules}
}

// CheckChains mutates each chain's stitches in place, filling in their
// Mismatches, and returns the same slice for convenience.
func (c *Checker) CheckChains(chains []model.Chain) []model.Chain {
	for i := range chains {
		for j := range chains[i].Stitches {
			c.checkStitch(&chains[i].Stitches[j])
		}
	}
	return chains
}

func (c *Checker) checkStitch(s *model.Stitch) {
	left, leftOk := c.g.Schema(s.LeftSchemaRef)
	right, rightOk := c.g.Schema(s.RightSchemaRef)
	if !leftOk || !rightOk {
		return
	}

	var mismatches []model.Mismatch
	fieldNames := unionFieldNames(left, right)
	for _, name := range fieldNames {
		lf, lok := left.FieldByName(name)
		rf, rok := right.FieldByName(name)

		if lok != rok {
			mismatches = append(mismatches, model.Mismatch{
				Kind:     model.MismatchMissingField,
				Severity: severityOf(c.rules.MissingField),
				Field:    name,
				Message:  "field " + name + " present on one side but absent on the other",
			})
			continue
		}
		if !lok || !rok {
			continue
		}

		lc := canonicalType(lf.DeclaredType)
		rc := canonicalType(rf.DeclaredType)
		if lc != rc {
			mismatches = append(mismatches, model.Mismatch{
				Kind:     model.MismatchTypeMismatch,
				Severity: severityOf(c.rules.TypeMismatch),
				Field:    name,
				Message:  "field " + name + " has type " + lf.DeclaredType + " on one side and " + rf.DeclaredType + " on the other",
			})
		}

		miss := missingValidator(lf, rf)
		if miss == "" {
			miss = missingValidator(rf, lf)
		}
		if miss != "" {
			mismatches = append(mismatches, model.Mismatch{
				Kind:     model.MismatchUnnormalizedData,
				Severity: severityOf(c.rules.UnnormalizedData),
				Field:    name,
				Message:  "field " + name + " enforces " + miss + " on one side but not the other",
			})
		}
	}

	sort.Slice(mismatches, func(i, j int) bool {
		if mismatches[i].Kind != mismatches[j].Kind {
			return mismatches[i].Kind < mismatches[j].Kind
		}
		return mismatches[i].Field < mismatches[j].Field
	})
	s.Mismatches = mismatches
}

func unionFieldNames(a, b model.Schema) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range a.Fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	for _, f := range b.Fields {
		if !seen[f.Name] {
			seen[f.Name] = true
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)
	return names
}

func severityOf(s config.Severity) model.Severity {
	switch s {
	case config.SeverityCritical:
		return model.SeverityCritical
	case config.SeverityInfo:
		return model.SeverityInfo
	default:
		return model.SeverityWarning
	}
}

// canonicalType applies the canonicalization table: integer widths unify,
// string+format unifies with its validator-bearing counterpart, and
// nullable unions/Optional[T]/.nullish() all collapse to their base type.
func canonicalType(t string) string {
	t = strings.TrimSpace(t)

	for _, prefix := range []string{"Optional[", "Optional<"} {
		if strings.HasPrefix(t, prefix) {
			t = strings.TrimSuffix(strings.TrimPrefix(t, prefix), closingFor(prefix))
			break
		}
	}
	t = strings.TrimSuffix(t, ".nullish()")
	t = strings.TrimSuffix(t, ".optional()")

	if idx := strings.Index(t, "|"); idx >= 0 {
		t = strings.TrimSpace(t[:idx])
	}

	switch strings.ToLower(t) {
	case "int", "int32", "int64", "integer", "number", "float", "double":
		return "number"
	case "str", "string", "emailstr", "httpurl", "anyurl", "uuid":
		return "string"
	case "bool", "boolean":
		return "boolean"
	}

	if strings.HasSuffix(t, "[]") {
		return canonicalType(strings.TrimSuffix(t, "[]")) + "[]"
	}
	if strings.HasPrefix(t, "List[") {
		return canonicalType(strings.TrimSuffix(strings.TrimPrefix(t, "List["), "]")) + "[]"
	}
	if strings.HasPrefix(t, "list[") {
		return canonicalType(strings.TrimSuffix(strings.TrimPrefix(t, "list["), "]")) + "[]"
	}

	return t
}

func closingFor(prefix string) string {
	if prefix == "Optional[" {
		return "]"
	}
	return ">"
}

// missingValidator reports a validator kind left enforces that right lacks
// on the same field, or "" if none.
func missingValidator(left, right model.Field) model.Validator {
	rightSet := make(map[model.Validator]bool, len(right.Validators))
	for _, v := range right.Validators {
		rightSet[v] = true
	}
	for _, v := range left.Validators {
		if !rightSet[v] {
			return v
		}
	}
	return ""
}
