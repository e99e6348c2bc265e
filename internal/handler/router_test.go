package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreveal/backoffice/internal/config"
	"github.com/dreveal/backoffice/internal/middleware"
	"github.com/dreveal/backoffice/internal/notify"
	"github.com/dreveal/backoffice/internal/service"
	"github.com/dreveal/backoffice/internal/session"
	"github.com/dreveal/backoffice/internal/store"
)

const forecastJSON = `{
	"forecast": {
		"asset": "XAU/USD",
		"direction": "bearish",
		"timeframe": "1M",
		"confidence": 61
	}
}`

type testAPI struct {
	router chi.Router
	store  store.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	codec := session.NewCodec("api-test-secret", "admin")
	rotator, err := session.NewRotator(config.SecretRotationInterval)
	require.NoError(t, err)

	auth := service.NewAuthService(codec, rotator, "admin", "hunter2", "")
	gate := middleware.NewSessionGate(auth, false)

	r := chi.NewRouter()
	RegisterRoutes(r, RouterDeps{
		Auth:       NewAuthHandler(auth, false),
		Waitlist:   NewWaitlistHandler(service.NewWaitlistService(st, notify.NopNotifier{})),
		Reports:    NewReportHandler(service.NewReportService(st)),
		Artifacts:  NewArtifactHandler(st),
		Gate:       gate.Handler,
		LoginLimit: middleware.NewLoginLimitMiddleware(middleware.NewMemoryLoginLimiter()).Handler,
	})

	return &testAPI{router: r, store: st}
}

func (a *testAPI) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T) *http.Cookie {
	t.Helper()

	body := strings.NewReader(`{"username":"admin","password":"hunter2"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth", body)
	req.Header.Set("Content-Type", "application/json")

	rec := a.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("login set no session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func multipartReport(t *testing.T, clientName, date string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("clientName", clientName))
	require.NoError(t, mw.WriteField("generatedDate", date))

	chart, err := mw.CreateFormFile("chartFile", "chart.png")
	require.NoError(t, err)
	chart.Write([]byte("\x89PNG fake bytes"))

	data, err := mw.CreateFormFile("jsonFile", "data.json")
	require.NoError(t, err)
	data.Write([]byte(forecastJSON))

	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAuthEndpoints(t *testing.T) {
	api := newTestAPI(t)

	t.Run("bad credentials are a 401", func(t *testing.T) {
		body := strings.NewReader(`{"username":"admin","password":"wrong"}`)
		rec := api.do(httptest.NewRequest(http.MethodPost, "/auth", body))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login check logout", func(t *testing.T) {
		cookie := api.login(t)

		req := httptest.NewRequest(http.MethodGet, "/auth", nil)
		req.AddCookie(cookie)
		rec := api.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, "admin", body["username"])

		rec = api.do(httptest.NewRequest(http.MethodDelete, "/auth", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rotation status and manual rotation", func(t *testing.T) {
		cookie := api.login(t)

		req := httptest.NewRequest(http.MethodGet, "/session-status", nil)
		req.AddCookie(cookie)
		rec := api.do(req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, decodeBody(t, rec), "rotationIntervalMinutes")

		req = httptest.NewRequest(http.MethodPost, "/session-status", nil)
		req.AddCookie(cookie)
		rec = api.do(req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestGatedEndpointsRejectAnonymousRequests(t *testing.T) {
	api := newTestAPI(t)

	gated := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth"},
		{http.MethodGet, "/session-status"},
		{http.MethodPost, "/session-status"},
		{http.MethodGet, "/waitlist"},
		{http.MethodDelete, "/waitlist?id=x"},
		{http.MethodPost, "/reports/generate"},
		{http.MethodGet, "/reports"},
		{http.MethodDelete, "/reports/x"},
	}

	for _, g := range gated {
		rec := api.do(httptest.NewRequest(g.method, g.path, nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", g.method, g.path)
	}

	// nothing leaked through the closed door
	cookie := api.login(t)
	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.AddCookie(cookie)
	rec := api.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestWaitlistLifecycle(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	body := strings.NewReader(`{
		"fullName": "Jordan Vale",
		"email": "jordan@fund.example",
		"company": "Vale Fund",
		"primaryMarkets": ["forex"]
	}`)
	rec := api.do(httptest.NewRequest(http.MethodPost, "/waitlist", body))
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody(t, rec)["id"].(string)
	require.NotEmpty(t, id)

	req := httptest.NewRequest(http.MethodGet, "/waitlist", nil)
	req.AddCookie(cookie)
	rec = api.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	listing := decodeBody(t, rec)
	assert.Equal(t, float64(1), listing["count"])
	assert.Contains(t, rec.Body.String(), "Jordan Vale")

	req = httptest.NewRequest(http.MethodDelete, "/waitlist?id="+id, nil)
	req.AddCookie(cookie)
	rec = api.do(req)
	require.Equal(t, http.StatusOK, rec.Code)

	// deleting again succeeds too
	req = httptest.NewRequest(http.MethodDelete, "/waitlist?id="+id, nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, api.do(req).Code)

	req = httptest.NewRequest(http.MethodGet, "/waitlist", nil)
	req.AddCookie(cookie)
	rec = api.do(req)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])
}

func TestWaitlistSubmitValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodPost, "/waitlist",
		strings.NewReader(`{"email":"x@example.com"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(httptest.NewRequest(http.MethodPost, "/waitlist",
		strings.NewReader(`{broken`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportLifecycle(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	body, contentType := multipartReport(t, "Acme Capital", "2026-08-30")
	req := httptest.NewRequest(http.MethodPost, "/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(cookie)
	rec := api.do(req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	issued := decodeBody(t, rec)
	id := issued["id"].(string)
	token := issued["token"].(string)
	chartURL := issued["chartUrl"].(string)
	dataURL := issued["dataUrl"].(string)
	require.GreaterOrEqual(t, len(token), 43)

	// public fetch by token, no cookie
	rec = api.do(httptest.NewRequest(http.MethodGet, "/report/"+token, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Acme Capital")
	assert.Contains(t, rec.Body.String(), "XAU/USD")

	// artifacts resolve at their locators
	rec = api.do(httptest.NewRequest(http.MethodGet, chartURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = api.do(httptest.NewRequest(http.MethodGet, dataURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "XAU/USD")

	// admin listing shows it
	req = httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.AddCookie(cookie)
	rec = api.do(req)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	// delete, then the public link dies
	req = httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil)
	req.AddCookie(cookie)
	require.Equal(t, http.StatusOK, api.do(req).Code)

	rec = api.do(httptest.NewRequest(http.MethodGet, "/report/"+token, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// idempotent delete
	req = httptest.NewRequest(http.MethodDelete, "/reports/"+id, nil)
	req.AddCookie(cookie)
	assert.Equal(t, http.StatusOK, api.do(req).Code)
}

func TestReportGenerateRejectsBadUploads(t *testing.T) {
	api := newTestAPI(t)
	cookie := api.login(t)

	issue := func(mutate func(mw *multipart.Writer)) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mutate(mw)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/reports/generate", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.AddCookie(cookie)
		return api.do(req)
	}

	writeFile := func(mw *multipart.Writer, field, name, content string) {
		f, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		io.WriteString(f, content)
	}

	t.Run("missing files", func(t *testing.T) {
		rec := issue(func(mw *multipart.Writer) {
			mw.WriteField("clientName", "Acme")
			mw.WriteField("generatedDate", "2026-08-30")
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid json payload leaves no trace", func(t *testing.T) {
		rec := issue(func(mw *multipart.Writer) {
			mw.WriteField("clientName", "Acme")
			mw.WriteField("generatedDate", "2026-08-30")
			writeFile(mw, "chartFile", "chart.png", "png")
			writeFile(mw, "jsonFile", "data.json", "{not json")
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/reports", nil)
		req.AddCookie(cookie)
		listing := api.do(req)
		assert.Equal(t, float64(0), decodeBody(t, listing)["count"])
	})

	t.Run("missing client name", func(t *testing.T) {
		rec := issue(func(mw *multipart.Writer) {
			mw.WriteField("generatedDate", "2026-08-30")
			writeFile(mw, "chartFile", "chart.png", "png")
			writeFile(mw, "jsonFile", "data.json", forecastJSON)
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestArtifactRoutesRejectTraversal(t *testing.T) {
	api := newTestAPI(t)

	for _, path := range []string{
		"/charts/..%2F..%2Fetc%2Fpasswd.png",
		"/charts/secrets.txt",
		"/reports/data/..%2Findex.json",
	} {
		rec := api.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.True(t, rec.Code == http.StatusBadRequest || rec.Code == http.StatusNotFound,
			"%s -> %d", path, rec.Code)
	}

	rec := api.do(httptest.NewRequest(http.MethodGet, "/charts/absent.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUnknownReportToken(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(httptest.NewRequest(http.MethodGet, "/report/"+fmt.Sprintf("%064d", 0), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
