// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package report builds the in-memory report model from a checked set of
// chains and renders it to JSON, Markdown or DOT.
package report

import (
	"time"

	"github.com/google/uuid"

	"github.com/contractlens/contractlens/pkg/model"
)

// ChainTypeCounts tallies chains by their ChainType.
type ChainTypeCounts struct {
	Full             int `json:"Full" yaml:"Full"`
	FrontendInternal int `json:"FrontendInternal" yaml:"FrontendInternal"`
	BackendInternal  int `json:"BackendInternal" yaml:"BackendInternal"`
}

// SchemaTypeCounts tallies schemas by their SchemaFlavor.
type SchemaTypeCounts struct {
	Pydantic        int `json:"pydantic" yaml:"pydantic"`
	Zod             int `json:"zod" yaml:"zod"`
	TSInterface     int `json:"ts-interface" yaml:"ts-interface"`
	TSAlias         int `json:"ts-alias" yaml:"ts-alias"`
	OpenAPIComponent int `json:"openapi-component" yaml:"openapi-component"`
	DTO             int `json:"dto" yaml:"dto"`
	ORM             int `json:"orm" yaml:"orm"`
}

// SchemaSummary nests SchemaTypeCounts under the by_type key the JSON
// report format names.
type SchemaSummary struct {
	ByType SchemaTypeCounts `json:"by_type" yaml:"by_type"`
}

// Summary holds the aggregate counts the JSON/Markdown report formats both
// derive their top section from.
type Summary struct {
	TotalChains    int             `json:"total_chains" yaml:"total_chains"`
	CriticalIssues int             `json:"critical_issues" yaml:"critical_issues"`
	Warnings       int             `json:"warnings" yaml:"warnings"`
	ValidChains    int             `json:"valid_chains" yaml:"valid_chains"`
	ChainsByType   ChainTypeCounts `json:"chains_by_type" yaml:"chains_by_type"`
	Schemas        SchemaSummary   `json:"schemas" yaml:"schemas"`
}

// Report is the in-memory structure the JSON/Markdown writers consume,
// per the Report Model stage of the pipeline.
type Report struct {
	Version     string        `json:"version" yaml:"version"`
	RunID       string        `json:"run_id" yaml:"run_id"`
	ProjectName string        `json:"project_name" yaml:"project_name"`
	GeneratedAt time.Time     `json:"generated_at" yaml:"generated_at"`
	Summary     Summary       `json:"summary" yaml:"summary"`
	Chains      []model.Chain `json:"chains" yaml:"chains"`
}

const reportVersion = "1"

// Build assembles a Report from the checker's output chains and the
// graph's full schema set, stamping a fresh run id and the current time.
func Build(projectName string, chains []model.Chain, schemas []model.Schema) Report {
	return build(projectName, chains, schemas, uuid.NewString(), time.Now().UTC())
}

// build is the deterministic core of Build: given an explicit run id and
// timestamp, two calls over the same chains/schemas produce byte-identical
// reports modulo those two inputs, per spec.md §8's determinism property.
func build(projectName string, chains []model.Chain, schemas []model.Schema, runID string, generatedAt time.Time) Report {
	summary := Summary{TotalChains: len(chains)}
	for _, c := range chains {
		switch c.Type {
		case model.ChainFull:
			summary.ChainsByType.Full++
		case model.ChainFrontendInternal:
			summary.ChainsByType.FrontendInternal++
		case model.ChainBackendInternal:
			summary.ChainsByType.BackendInternal++
		}

		if c.HasCriticalMismatch() {
			summary.CriticalIssues++
		} else {
			summary.ValidChains++
		}

		for _, stitch := range c.Stitches {
			for _, m := range stitch.Mismatches {
				if m.Severity == model.SeverityWarning {
					summary.Warnings++
				}
			}
		}
	}

	for _, s := range schemas {
		switch s.Flavor {
		case model.FlavorPydantic:
			summary.Schemas.ByType.Pydantic++
		case model.FlavorZod:
			summary.Schemas.ByType.Zod++
		case model.FlavorTSInterface:
			summary.Schemas.ByType.TSInterface++
		case model.FlavorTSAlias:
			summary.Schemas.ByType.TSAlias++
		case model.FlavorOpenAPIComponent:
			summary.Schemas.ByType.OpenAPIComponent++
		case model.FlavorDTO:
			summary.Schemas.ByType.DTO++
		case model.FlavorORM:
			summary.Schemas.ByType.ORM++
		}
	}

	return Report{
		Version:     reportVersion,
		RunID:       runID,
		ProjectName: projectName,
		GeneratedAt: generatedAt,
		Summary:     summary,
		Chains:      chains,
	}
}
