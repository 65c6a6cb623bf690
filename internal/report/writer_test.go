// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractlens/contractlens/pkg/model"
)

func sampleReport() Report {
	return build("demo", []model.Chain{
		mismatchChain(model.MismatchTypeMismatch, model.SeverityCritical),
	}, []model.Schema{
		{Id: nodeId("ItemSchema"), Flavor: model.FlavorZod, Name: "ItemSchema"},
	}, "fixed-run-id", time.Unix(0, 0).UTC())
}

func TestNewWriter(t *testing.T) {
	w := NewWriter()
	assert.Equal(t, 2, w.Indent)
}

func TestWriter_WriteJSON(t *testing.T) {
	w := NewWriter()
	r := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, w.WriteJSON(r, &buf))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, r.RunID, decoded.RunID)
	assert.Equal(t, r.Summary.TotalChains, decoded.Summary.TotalChains)
}

func TestWriter_WriteMarkdown(t *testing.T) {
	w := NewWriter()
	r := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, w.WriteMarkdown(r, &buf))
	output := buf.String()

	assert.Contains(t, output, "# demo — Contract Report")
	assert.Contains(t, output, "Total chains: 1")
	assert.Contains(t, output, "TypeMismatch")
	assert.Contains(t, output, "## Recommendations")
	assert.Contains(t, output, "Chain 1 — Full (Item Schema)")
}

func TestChainLabel(t *testing.T) {
	cases := []struct {
		symbol string
		want   string
	}{
		{"create_user", "Create User"},
		{"getItems", "Get Items"},
		{"UserCreate.email", "User Create Email"},
		{"", ""},
	}
	for _, c := range cases {
		chain := model.Chain{Nodes: []model.NodeId{nodeId(c.symbol)}}
		assert.Equal(t, c.want, chainLabel(chain))
	}
	assert.Equal(t, "", chainLabel(model.Chain{}))
}

type fakeGraphView struct {
	modules []model.Module
	edges   []model.Edge
}

func (f fakeGraphView) Modules() []model.Module { return f.modules }
func (f fakeGraphView) Edges() []model.Edge     { return f.edges }

func TestWriter_WriteDOT(t *testing.T) {
	w := NewWriter()
	g := fakeGraphView{
		modules: []model.Module{
			{Path: "app/routes/users.py", Adapter: model.AdapterFastAPI, Language: model.LanguagePython},
		},
		edges: []model.Edge{
			{Kind: model.EdgeImplementsRoute, Src: nodeId("create_user"), Dst: nodeId("POST /users")},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, w.WriteDOT(g, &buf))
	output := buf.String()

	assert.Contains(t, output, "digraph fastapi {")
	assert.Contains(t, output, `"app/routes/users.py"`)
	assert.Contains(t, output, "implements-route")
}

func TestWriter_WriteFile_InfersFormatFromExtension(t *testing.T) {
	w := NewWriter()
	r := sampleReport()
	tmpDir := t.TempDir()

	jsonPath := filepath.Join(tmpDir, "report.json")
	require.NoError(t, w.WriteFile(r, jsonPath, ""))
	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"run_id"`)

	mdPath := filepath.Join(tmpDir, "report.md")
	require.NoError(t, w.WriteFile(r, mdPath, ""))
	data, err = os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# demo — Contract Report")
}

func TestWriter_WriteFile_UnsupportedFormat(t *testing.T) {
	w := NewWriter()
	r := sampleReport()
	tmpDir := t.TempDir()

	err := w.WriteFile(r, filepath.Join(tmpDir, "report.txt"), "yaml")
	require.Error(t, err)
}
