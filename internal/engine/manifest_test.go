package engine

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

func TestEngine_BuildManifest(t *testing.T) {
	e, _ := newTestEngine(t)

	registerModel(e, "stg_orders", "SELECT * FROM {{ source('raw', 'orders') }}", core.MaterializationView)
	m := registerModel(e, "fct_orders", "SELECT * FROM {{ ref('stg_orders') }}", core.MaterializationTable)
	m.Tags = []string{"daily"}

	e.Catalog().RegisterSource(&core.Source{
		Name: "raw", Database: "snowduck", Schema: "RAW",
		Tables: []core.SourceTable{{Name: "orders", Identifier: "ORDERS_LANDING"}},
	})

	man := e.BuildManifest()
	require.Len(t, man.Models, 2)
	require.Len(t, man.Sources, 1)

	assert.Equal(t, "fct_orders", man.Models[0].Name)
	assert.Equal(t, []string{"stg_orders"}, man.Models[0].DependsOn)
	assert.Equal(t, []string{"daily"}, man.Models[0].Tags)
	assert.Equal(t, "table", man.Models[0].Materialized)

	assert.Equal(t, "snowduck.RAW.ORDERS_LANDING", man.Sources[0].Tables[0].Relation)
}

func TestEngine_WriteManifest(t *testing.T) {
	e, _ := newTestEngine(t)
	registerModel(e, "a", "SELECT 1", core.MaterializationTable)

	var buf bytes.Buffer
	require.NoError(t, e.WriteManifest(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "models")
	assert.Contains(t, decoded, "generated_at")
}
