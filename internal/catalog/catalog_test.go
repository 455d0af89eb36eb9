package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snowduck-labs/snowduck/pkg/core"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := New()

	m := &core.Model{Name: "stg_customers", Database: "snowduck", Schema: "STAGING"}
	r.RegisterModel(m)

	assert.Equal(t, 1, r.ModelCount())

	got, ok := r.Model("stg_customers")
	assert.True(t, ok)
	assert.Same(t, m, got)

	// Case-insensitive fallback.
	got, ok = r.Model("STG_CUSTOMERS")
	assert.True(t, ok)
	assert.Same(t, m, got)

	_, ok = r.Model("missing")
	assert.False(t, ok)
}

func TestRegistry_LastRegistrationWins(t *testing.T) {
	r := New()

	r.RegisterModel(&core.Model{Name: "m", Schema: "A"})
	r.RegisterModel(&core.Model{Name: "m", Schema: "B"})

	got, ok := r.Model("m")
	assert.True(t, ok)
	assert.Equal(t, "B", got.Schema)
	assert.Equal(t, 1, r.ModelCount())
}

func TestRegistry_Sources(t *testing.T) {
	r := New()
	r.RegisterSource(&core.Source{Name: "raw", Database: "snowduck", Schema: "RAW"})

	got, ok := r.Source("RAW")
	assert.True(t, ok)
	assert.Equal(t, "raw", got.Name)

	_, ok = r.Source("events")
	assert.False(t, ok)
}

func TestRegistry_SortedListings(t *testing.T) {
	r := New()
	r.RegisterModel(&core.Model{Name: "zeta"})
	r.RegisterModel(&core.Model{Name: "alpha"})
	r.RegisterModel(&core.Model{Name: "mid"})

	names := make([]string, 0, 3)
	for _, m := range r.Models() {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
}

func TestRegistry_View(t *testing.T) {
	r := New()
	r.RegisterModel(&core.Model{Name: "a"})
	r.RegisterSource(&core.Source{Name: "raw"})

	v := r.View()
	assert.Len(t, v.Models, 1)
	assert.Len(t, v.Sources, 1)

	// Later registrations do not leak into an existing view.
	r.RegisterModel(&core.Model{Name: "b"})
	assert.Len(t, v.Models, 1)
}

func TestRegistry_OtherNodeKinds(t *testing.T) {
	r := New()
	r.RegisterSeed(&core.Seed{Name: "country_codes"})
	r.RegisterSnapshot(&core.Snapshot{Name: "customers_snapshot"})
	r.RegisterTest(&core.Test{Name: "unique_stg_customers_id"})

	_, ok := r.Seed("country_codes")
	assert.True(t, ok)
	_, ok = r.Snapshot("customers_snapshot")
	assert.True(t, ok)
	assert.Len(t, r.Tests(), 1)
	assert.Len(t, r.Seeds(), 1)
	assert.Len(t, r.Snapshots(), 1)
}
