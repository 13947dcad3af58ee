package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/formhunt/internal/adapters/http"
	"github.com/samirrijal/formhunt/internal/core/domain"
	"github.com/samirrijal/formhunt/internal/core/usecases"
)

// ---- Mock engine ----

type mockEngine struct {
	mu      sync.Mutex
	calls   int
	points  []domain.GeoPoint
	queryFn func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error)
}

func (m *mockEngine) NearbyFeatures(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
	m.mu.Lock()
	m.calls++
	m.points = append(m.points, p)
	m.mu.Unlock()
	if m.queryFn != nil {
		return m.queryFn(ctx, p)
	}
	return nil, nil
}

func (m *mockEngine) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// ---- Test helpers ----

var engineFound = domain.EngineStatus{Available: true, Path: "/usr/local/bin/wolframscript"}

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          handler.ErrorHandler,
	})
	handler.SetupRoutes(app, deps)
	return app
}

func makeDeps(engine *mockEngine, status domain.EngineStatus) *handler.Dependencies {
	return &handler.Dependencies{
		Metadata:       usecases.NewMetadataService(engine, status, nil, time.Second),
		RequestTimeout: 5 * time.Second,
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func get(t *testing.T, app *fiber.App, path string) (int, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", path, nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("decode error body %q: %v", body, err)
	}
	return apiErr
}

// ---- Metadata handler tests ----

func TestMetadata_Success(t *testing.T) {
	engine := &mockEngine{queryFn: func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
		return domain.Metadata{"cities": {"Springfield"}, "lakes": {}}, nil
	}}
	app := setupApp(makeDeps(engine, engineFound))

	status, body := postJSON(t, app, "/api/metadata", `{"lat": 39.7817, "lon": -89.6501}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var md map[string][]string
	if err := json.Unmarshal(body, &md); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(md) != 1 || len(md["cities"]) != 1 || md["cities"][0] != "Springfield" {
		t.Errorf(`expected {"cities":["Springfield"]}, got %s`, body)
	}
	if engine.points[0] != (domain.GeoPoint{Lat: 39.7817, Lon: -89.6501}) {
		t.Errorf("unexpected point passed to engine: %v", engine.points[0])
	}
}

func TestMetadata_MissingOrMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty object", `{}`, "lat and lon are required"},
		{"missing lon", `{"lat": 10}`, "lat and lon are required"},
		{"missing lat", `{"lon": 10}`, "lat and lon are required"},
		{"null lat", `{"lat": null, "lon": 10}`, "lat and lon are required"},
		{"empty body", ``, "request body must be a JSON object"},
		{"not json", `lat=1&lon=2`, "request body must be a JSON object"},
		{"array body", `[1, 2]`, "request body must be a JSON object"},
		{"text lat", `{"lat": "north", "lon": 10}`, "lat and lon must be numbers"},
		{"bool lon", `{"lat": 10, "lon": true}`, "lat and lon must be numbers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &mockEngine{}
			app := setupApp(makeDeps(engine, engineFound))

			status, body := postJSON(t, app, "/api/metadata", tt.body)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, body)
			}
			apiErr := decodeError(t, body)
			if apiErr.Error != tt.want {
				t.Errorf("expected %q, got %q", tt.want, apiErr.Error)
			}
			if apiErr.Code != "bad_request" {
				t.Errorf("expected code bad_request, got %q", apiErr.Code)
			}
			if engine.callCount() != 0 {
				t.Errorf("engine should not be called, got %d calls", engine.callCount())
			}
		})
	}
}

func TestMetadata_OutOfRange(t *testing.T) {
	for _, body := range []string{
		`{"lat": 91, "lon": 0}`,
		`{"lat": -91, "lon": 0}`,
		`{"lat": 0, "lon": 181}`,
		`{"lat": 0, "lon": -181}`,
		`{"lat": "NaN", "lon": 0}`,
		`{"lat": 0, "lon": "Inf"}`,
	} {
		t.Run(body, func(t *testing.T) {
			engine := &mockEngine{}
			app := setupApp(makeDeps(engine, engineFound))

			status, resp := postJSON(t, app, "/api/metadata", body)
			if status != 400 {
				t.Fatalf("expected 400, got %d: %s", status, resp)
			}
			if engine.callCount() != 0 {
				t.Errorf("engine should not be called for invalid input")
			}
		})
	}
}

func TestMetadata_BoundaryValuesAccepted(t *testing.T) {
	for _, p := range []domain.GeoPoint{
		{Lat: 90, Lon: 0},
		{Lat: -90, Lon: 0},
		{Lat: 0, Lon: 180},
		{Lat: 0, Lon: -180},
	} {
		t.Run(p.String(), func(t *testing.T) {
			engine := &mockEngine{}
			app := setupApp(makeDeps(engine, engineFound))

			status, body := postJSON(t, app, "/api/metadata", fmt.Sprintf(`{"lat": %v, "lon": %v}`, p.Lat, p.Lon))
			if status != 200 {
				t.Fatalf("expected 200, got %d: %s", status, body)
			}
			if engine.callCount() != 1 || engine.points[0] != p {
				t.Errorf("expected engine called with %v, got %v", p, engine.points)
			}
		})
	}
}

func TestMetadata_NumericStrings(t *testing.T) {
	engine := &mockEngine{}
	app := setupApp(makeDeps(engine, engineFound))

	status, body := postJSON(t, app, "/api/metadata", `{"lat": "43.2630", "lon": " -2.935 "}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	if got := engine.points[0]; got.Lat != 43.263 || got.Lon != -2.935 {
		t.Errorf("unexpected coerced point %v", got)
	}
}

func TestMetadata_EngineUnavailable(t *testing.T) {
	engine := &mockEngine{}
	app := setupApp(makeDeps(engine, domain.EngineStatus{}))

	status, body := postJSON(t, app, "/api/metadata", `{"lat": 43.26, "lon": -2.93}`)
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	if string(body) != "{}" {
		t.Errorf("expected {}, got %s", body)
	}
	if engine.callCount() != 0 {
		t.Errorf("expected no engine calls, got %d", engine.callCount())
	}
}

func TestMetadata_EngineFailureIsSilent(t *testing.T) {
	for _, engineErr := range []error{
		domain.ErrEngineExit,
		domain.ErrEngineTimeout,
		domain.ErrEngineMalformed,
		domain.ErrEngineNoOutput,
	} {
		t.Run(engineErr.Error(), func(t *testing.T) {
			engine := &mockEngine{queryFn: func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
				return nil, engineErr
			}}
			app := setupApp(makeDeps(engine, engineFound))

			status, body := postJSON(t, app, "/api/metadata", `{"lat": 1, "lon": 2}`)
			if status != 200 {
				t.Fatalf("expected 200, got %d", status)
			}
			if string(body) != "{}" {
				t.Errorf("expected {}, got %s", body)
			}
		})
	}
}

func TestMetadata_PanicYieldsGeneric500(t *testing.T) {
	engine := &mockEngine{queryFn: func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
		panic("secret internal detail")
	}}
	app := setupApp(makeDeps(engine, engineFound))

	status, body := postJSON(t, app, "/api/metadata", `{"lat": 1, "lon": 2}`)
	if status != 500 {
		t.Fatalf("expected 500, got %d: %s", status, body)
	}
	apiErr := decodeError(t, body)
	if apiErr.Error != "internal server error" || apiErr.Code != "internal_error" {
		t.Errorf("unexpected error body %+v", apiErr)
	}
	if strings.Contains(string(body), "secret") {
		t.Errorf("internal detail leaked: %s", body)
	}
}

func TestMetadata_NoStore(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))

	req := httptest.NewRequest("POST", "/api/metadata", strings.NewReader(`{"lat": 1, "lon": 2}`))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Cache-Control"); got != "no-store" {
		t.Errorf("expected Cache-Control no-store, got %q", got)
	}
}

// ---- Engine status tests ----

func TestEngineStatus_StableAcrossCalls(t *testing.T) {
	for _, st := range []domain.EngineStatus{engineFound, {}} {
		app := setupApp(makeDeps(&mockEngine{}, st))
		want := fmt.Sprintf(`{"available":%t}`, st.Available)
		for i := 0; i < 3; i++ {
			status, body := get(t, app, "/api/engine-status")
			if status != 200 {
				t.Fatalf("expected 200, got %d", status)
			}
			if string(body) != want {
				t.Fatalf("call %d: expected %s, got %s", i, want, body)
			}
		}
	}
}

func TestEngineStatus_DoesNotLeakPath(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	_, body := get(t, app, "/api/engine-status")
	if strings.Contains(string(body), "wolframscript") {
		t.Errorf("engine path leaked: %s", body)
	}
}

func TestEngineStatus_ETag(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/engine-status", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}

	req := httptest.NewRequest("GET", "/api/engine-status", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 304 {
		t.Errorf("expected 304, got %d", resp.StatusCode)
	}
}

// ---- Legacy routes ----

func TestLegacyRoutes_Deprecated(t *testing.T) {
	engine := &mockEngine{queryFn: func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
		return domain.Metadata{"lakes": {"Lake Geneva"}}, nil
	}}
	app := setupApp(makeDeps(engine, engineFound))

	req := httptest.NewRequest("POST", "/api/wolfram-metadata", strings.NewReader(`{"lat": 46.45, "lon": 6.55}`))
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Deprecation") != "true" {
		t.Error("expected Deprecation header")
	}
	if resp.Header.Get("Sunset") == "" {
		t.Error("expected Sunset header")
	}
	if got := resp.Header.Get("Link"); !strings.Contains(got, "</api/metadata>") {
		t.Errorf("expected successor link, got %q", got)
	}
	if body := readBody(t, resp.Body); string(body) != `{"lakes":["Lake Geneva"]}` {
		t.Errorf("unexpected body %s", body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/wolfram-status", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Link"); !strings.Contains(got, "</api/engine-status>") {
		t.Errorf("expected successor link, got %q", got)
	}
}

func TestCurrentRoutes_NotDeprecated(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	resp, err := app.Test(httptest.NewRequest("GET", "/api/engine-status", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Header.Get("Deprecation") != "" {
		t.Error("current route must not be marked deprecated")
	}
}

// ---- Health, readiness and misc ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	status, body := get(t, app, "/api/health")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result["status"] != "healthy" {
		t.Errorf("unexpected health body %s", body)
	}
}

func TestReady_EngineMissingIsStillReady(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, domain.EngineStatus{}))
	status, body := get(t, app, "/api/ready")
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var result struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	if result.Checks["engine"] == "ok" {
		t.Error("engine check should report not found")
	}
	if result.Checks["nats"] != "not configured" {
		t.Errorf("unexpected nats check %q", result.Checks["nats"])
	}
}

func TestCategories(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	status, body := get(t, app, "/api/categories")
	if status != 200 {
		t.Fatalf("expected 200, got %d", status)
	}
	var list []struct {
		Name  string `json:"name"`
		Limit int    `json:"limit"`
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != len(domain.Categories) {
		t.Fatalf("expected %d categories, got %d", len(domain.Categories), len(list))
	}
	if list[0].Name != "divisions" || list[0].Limit != 4 {
		t.Errorf("unexpected first category %+v", list[0])
	}
}

func TestIndex(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected html, got %q", ct)
	}
	if body := readBody(t, resp.Body); !strings.Contains(string(body), "/api/metadata") {
		t.Error("page does not call the metadata endpoint")
	}
}

func TestUnknownRoute(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	status, body := get(t, app, "/api/nope")
	if status != 404 {
		t.Fatalf("expected 404, got %d", status)
	}
	if apiErr := decodeError(t, body); apiErr.Code != "not_found" {
		t.Errorf("expected not_found, got %+v", apiErr)
	}
}

func TestWebSocket_WithoutNATS(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	status, _ := get(t, app, "/ws")
	if status != 503 {
		t.Fatalf("expected 503, got %d", status)
	}
}

// ---- GraphQL ----

func graphqlQuery(t *testing.T, app *fiber.App, query string) map[string]any {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	status, body := postJSON(t, app, "/graphql", string(payload))
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}
	var result map[string]any
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatal(err)
	}
	return result
}

func TestGraphQL_EngineStatus(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, domain.EngineStatus{}))
	result := graphqlQuery(t, app, `{ engineStatus { available } }`)

	data := result["data"].(map[string]any)
	st := data["engineStatus"].(map[string]any)
	if st["available"] != false {
		t.Errorf("expected available=false, got %v", st["available"])
	}
}

func TestGraphQL_Metadata(t *testing.T) {
	engine := &mockEngine{queryFn: func(ctx context.Context, p domain.GeoPoint) (domain.Metadata, error) {
		return domain.Metadata{
			"lakes":     {"Lake Tahoe"},
			"cities":    {"South Lake Tahoe", "Stateline"},
			"mountains": {},
		}, nil
	}}
	app := setupApp(makeDeps(engine, engineFound))
	result := graphqlQuery(t, app, `{ metadata(lat: 38.94, lon: -119.98) { category names } }`)

	if errs, ok := result["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}
	groups := result["data"].(map[string]any)["metadata"].([]any)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	first := groups[0].(map[string]any)
	if first["category"] != "cities" {
		t.Errorf("expected cities first (catalog order), got %v", first["category"])
	}
}

func TestGraphQL_MetadataRejectsInvalidCoordinate(t *testing.T) {
	engine := &mockEngine{}
	app := setupApp(makeDeps(engine, engineFound))
	result := graphqlQuery(t, app, `{ metadata(lat: 95, lon: 0) { category } }`)

	if _, ok := result["errors"]; !ok {
		t.Fatal("expected GraphQL errors for out-of-range lat")
	}
	if engine.callCount() != 0 {
		t.Error("engine should not be called")
	}
}

func TestGraphQL_BadBody(t *testing.T) {
	app := setupApp(makeDeps(&mockEngine{}, engineFound))
	status, _ := postJSON(t, app, "/graphql", `{"query": ""}`)
	if status != 400 {
		t.Fatalf("expected 400, got %d", status)
	}
}
