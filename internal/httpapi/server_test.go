package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/izumilab/groundwater-viewer/internal/config"
	"github.com/izumilab/groundwater-viewer/internal/db"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	datasets map[uuid.UUID]*db.Dataset
	payloads map[uuid.UUID][]byte
}

func newMemStore() *memStore {
	return &memStore{
		datasets: make(map[uuid.UUID]*db.Dataset),
		payloads: make(map[uuid.UUID][]byte),
	}
}

func (m *memStore) CreateDataset(_ context.Context, name string, sourceFile *string, rowCount int) (*db.Dataset, error) {
	d := &db.Dataset{
		ID: uuid.New(), Name: name, SourceFile: sourceFile, RowCount: rowCount,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	m.datasets[d.ID] = d
	return d, nil
}

func (m *memStore) ListDatasets(_ context.Context, limit int) ([]db.Dataset, error) {
	out := make([]db.Dataset, 0, len(m.datasets))
	for _, d := range m.datasets {
		if len(out) >= limit {
			break
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memStore) GetDataset(_ context.Context, id uuid.UUID) (*db.Dataset, error) {
	d, ok := m.datasets[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	return d, nil
}

func (m *memStore) SaveResults(_ context.Context, datasetID uuid.UUID, payload []byte) error {
	m.payloads[datasetID] = payload
	return nil
}

func (m *memStore) LoadResults(_ context.Context, datasetID uuid.UUID) ([]byte, error) {
	p, ok := m.payloads[datasetID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return p, nil
}

func (m *memStore) DeleteDataset(_ context.Context, id uuid.UUID) error {
	if _, ok := m.datasets[id]; !ok {
		return db.ErrNotFound
	}
	delete(m.datasets, id)
	delete(m.payloads, id)
	return nil
}

func newTestServer() (*Server, *memStore) {
	store := newMemStore()
	cfg := config.Config{Port: 0, DefaultLimit: 200, MaxUploadBytes: 1 << 20}
	return New(cfg, store, nil), store
}

func doJSON(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func newMultipart(t *testing.T, buf *bytes.Buffer, filename, content string) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	return mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", w.Code)
	}
}

func TestCreateDatasetFromJSONRows(t *testing.T) {
	srv, store := newTestServer()
	body := `{"name": "august survey", "rows": [
		{"id": "S1", "latitude": "6.25", "longitude": "-75.56", "Cd": "0.002", "Pb": "0.025"}
	]}`
	w := doJSON(t, srv, http.MethodPost, "/api/v1/datasets", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Dataset db.Dataset `json:"dataset"`
			Results []struct {
				ID       string  `json:"id"`
				HPI      float64 `json:"hpi"`
				Category string  `json:"category"`
			} `json:"results"`
		} `json:"data"`
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Meta.Count != 1 || len(resp.Data.Results) != 1 {
		t.Fatalf("count = %d, results = %d", resp.Meta.Count, len(resp.Data.Results))
	}
	r := resp.Data.Results[0]
	if r.ID != "S1" || r.HPI != 108.97 || r.Category != "Slightly Polluted" {
		t.Fatalf("result = %+v", r)
	}

	// The persisted handoff is a JSON array.
	payload, ok := store.payloads[resp.Data.Dataset.ID]
	if !ok {
		t.Fatalf("payload was not persisted")
	}
	if !bytes.HasPrefix(bytes.TrimSpace(payload), []byte("[")) {
		t.Fatalf("persisted payload is not an array: %s", payload)
	}
}

func TestCreateDatasetRowsNotArray(t *testing.T) {
	srv, _ := newTestServer()
	w := doJSON(t, srv, http.MethodPost, "/api/v1/datasets", `{"name": "x", "rows": {"id": "S1"}}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("non-array rows status = %d, want 400", w.Code)
	}
}

func TestCreateDatasetEmptyRows(t *testing.T) {
	srv, _ := newTestServer()
	w := doJSON(t, srv, http.MethodPost, "/api/v1/datasets", `{"name": "x", "rows": []}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty dataset status = %d, want 422", w.Code)
	}
}

func TestCreateDatasetMultipartCSV(t *testing.T) {
	srv, _ := newTestServer()

	var buf bytes.Buffer
	mw := newMultipart(t, &buf, "samples.csv", "id,Pb\nS1,0.025\nS2,trace\n")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/datasets", &buf)
	req.Header.Set("Content-Type", mw)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"count":2`) {
		t.Fatalf("expected 2 results, body = %s", w.Body.String())
	}
}

func TestDatasetResultsRoundTrip(t *testing.T) {
	srv, store := newTestServer()
	w := doJSON(t, srv, http.MethodPost, "/api/v1/datasets",
		`{"rows": [{"id": "S1", "latitude": "1", "longitude": "2", "Pb": "0.02"}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d", w.Code)
	}

	var id uuid.UUID
	for did := range store.payloads {
		id = did
	}

	res := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/"+id.String()+"/results", "")
	if res.Code != http.StatusOK {
		t.Fatalf("results status = %d, body = %s", res.Code, res.Body.String())
	}
	if !strings.Contains(res.Body.String(), `"id":"S1"`) {
		t.Fatalf("results body = %s", res.Body.String())
	}
}

func TestDatasetResultsMalformedPayload(t *testing.T) {
	srv, store := newTestServer()
	d, _ := store.CreateDataset(context.Background(), "broken", nil, 0)
	store.payloads[d.ID] = []byte(`{"not": "an array"}`)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/results", "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("malformed payload status = %d, want 422", w.Code)
	}
}

func TestExportEndpoints(t *testing.T) {
	srv, store := newTestServer()
	d, _ := store.CreateDataset(context.Background(), "export me", nil, 2)
	store.payloads[d.ID] = []byte(`[
		{"id": "S1", "latitude": 6.25, "longitude": -75.56, "hpi": 10.0, "hei": 0.5, "cd": 0.5, "category": "Safe"},
		{"id": "S2", "hpi": 20.0, "hei": 1.0, "cd": 1.0, "category": "Safe"}
	]`)

	csvRes := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/export/csv", "")
	if csvRes.Code != http.StatusOK {
		t.Fatalf("csv status = %d", csvRes.Code)
	}
	lines := strings.Split(strings.TrimSpace(csvRes.Body.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("csv lines = %d, want header + 2", len(lines))
	}

	geoRes := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/"+d.ID.String()+"/export/geojson", "")
	if geoRes.Code != http.StatusOK {
		t.Fatalf("geojson status = %d", geoRes.Code)
	}
	var fc struct {
		Features []json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(geoRes.Body.Bytes(), &fc); err != nil {
		t.Fatalf("unmarshal geojson: %v", err)
	}
	// S2 has no coordinates and is left out of the map export.
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
}

func TestGetDatasetNotFound(t *testing.T) {
	srv, _ := newTestServer()
	w := doJSON(t, srv, http.MethodGet, "/api/v1/datasets/"+uuid.NewString(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteDataset(t *testing.T) {
	srv, store := newTestServer()
	d, _ := store.CreateDataset(context.Background(), "bye", nil, 0)

	w := doJSON(t, srv, http.MethodDelete, "/api/v1/datasets/"+d.ID.String(), "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, srv, http.MethodDelete, "/api/v1/datasets/"+d.ID.String(), "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d, want 404", w.Code)
	}
}

func TestStandardsEndpoint(t *testing.T) {
	srv, _ := newTestServer()
	w := doJSON(t, srv, http.MethodGet, "/api/v1/standards", "")
	if w.Code != http.StatusOK {
		t.Fatalf("standards status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"Pb":0.01`) {
		t.Fatalf("standards body = %s", w.Body.String())
	}
}

func TestBearerAuth(t *testing.T) {
	store := newMemStore()
	cfg := config.Config{Port: 0, DefaultLimit: 200, MaxUploadBytes: 1 << 20, BearerToken: "sekrit"}
	srv := New(cfg, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/datasets", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d, want 200", w.Code)
	}
}
