package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEntities(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/api/entities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, 16.0, body["total"])
	assert.Len(t, body["entities"], 10)

	rec = env.do(t, http.MethodGet, "/api/entities?q=harbor&flagged=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["total"])

	rec = env.do(t, http.MethodGet, "/api/entities?page=1&per_page=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	first := decode(t, rec)["entities"].([]any)[0].(map[string]any)
	assert.Equal(t, 6.0, first["id"])

	for _, q := range []string{"flagged=maybe", "page=-1", "per_page=x"} {
		rec = env.do(t, http.MethodGet, "/api/entities?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestEntityOptions(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/api/entities/options", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["types"], "Holding Company")
	assert.Contains(t, body["roles"], "Guarantor")
}

func TestAddAndGetEntity(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodPost, "/api/entities", map[string]any{
		"name":          "Acme LLC",
		"type":          "LLC",
		"role_in_deal":  "Sponsor",
		"ownership_pct": "10%",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)
	assert.Equal(t, 17.0, created["id"])
	assert.Equal(t, "Borrower intake", created["source"])

	rec = env.do(t, http.MethodPost, "/api/entities", map[string]any{
		"name": "acme llc", "type": "LLC", "role_in_deal": "Sponsor",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "acme llc (2)", decode(t, rec)["name"])

	rec = env.do(t, http.MethodGet, "/api/entities/17", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, "Acme LLC", got["name"])
	assert.Equal(t, true, got["is_new"])
}

func TestEntityNotes(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodPut, "/api/entities/3/notes", map[string]string{"notes": "Cleared."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Cleared.", decode(t, rec)["uw_notes"])

	rec = env.do(t, http.MethodPut, "/api/entities/999/notes", map[string]string{"notes": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFindingsAndAnnotation(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/api/entities/2/findings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["findings"], 2)

	rec = env.do(t, http.MethodPut, "/api/entities/2/findings/lf-1", map[string]any{
		"is_false_positive": true,
		"note":              "Name match only.",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["is_false_positive"])

	rec = env.do(t, http.MethodGet, "/api/entities/2/findings", nil)
	first := decode(t, rec)["findings"].([]any)[0].(map[string]any)
	assert.Equal(t, "lf-1", first["id"])
	assert.Equal(t, "Name match only.", first["note"])
}

func TestImportPriorFindings(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodPost, "/api/entities/1/import", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3.0, decode(t, rec)["added"])

	rec = env.do(t, http.MethodPost, "/api/entities/1/import", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["added"])

	rec = env.do(t, http.MethodGet, "/api/entities/1/findings", nil)
	assert.Len(t, decode(t, rec)["findings"], 3)
}

func TestBorrowers(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/api/borrowers", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["borrowers"], 4)
}

func TestPriorDealsAndBulkImport(t *testing.T) {
	env := newTestEnv(t, testConfig())

	rec := env.do(t, http.MethodGet, "/api/deals/prior", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	deals := decode(t, rec)["deals"].([]any)
	require.Len(t, deals, 4)
	assert.Equal(t, "Harborview Portfolio Acquisition", deals[0].(map[string]any)["deal_name"])

	rec = env.do(t, http.MethodGet, "/api/imports/bulk", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["selected"], 4)

	rec = env.do(t, http.MethodPost, "/api/imports/bulk", map[string]any{"deals": []string{"Lakeside MHC Portfolio"}})
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode(t, rec)
	assert.Equal(t, []any{3.0, 8.0}, res["entity_ids"])
	assert.Equal(t, 2.0, res["findings_imported"])

	rec = env.do(t, http.MethodGet, "/api/imports/bulk", nil)
	assert.Equal(t, []any{"Lakeside MHC Portfolio"}, decode(t, rec)["selected"])
}
