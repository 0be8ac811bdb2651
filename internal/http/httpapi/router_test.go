package httpapi

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/sindhuth/donation-ocr-app/internal/adapter/repo"
	"github.com/sindhuth/donation-ocr-app/internal/aggregate"
	"github.com/sindhuth/donation-ocr-app/internal/domain"
	"github.com/sindhuth/donation-ocr-app/internal/events"
	"github.com/sindhuth/donation-ocr-app/internal/extraction"
	"github.com/sindhuth/donation-ocr-app/internal/http/handlers"
	"github.com/sindhuth/donation-ocr-app/internal/infra"
	"github.com/sindhuth/donation-ocr-app/internal/lifecycle"
	"github.com/sindhuth/donation-ocr-app/internal/roles"
)

type fixture struct {
	srv *httptest.Server
	hub *events.Hub
}

func newFixture(t *testing.T, policy roles.Policy, ex extraction.Extractor) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := infra.NewSQLiteDB(ctx, filepath.Join(t.TempDir(), "donors.db"))
	require.NoError(t, err)
	store := repo.NewSQLiteStore(db, zerolog.Nop())
	require.NoError(t, store.EnsureSchema(ctx))
	t.Cleanup(func() { _ = store.Close() })

	hub := events.NewHub(8)
	arb := roles.NewArbiter(store, policy, zerolog.Nop())
	svc := lifecycle.NewService(store, zerolog.Nop(), lifecycle.WithPublisher(hub), lifecycle.WithSessionCache(arb))
	ev := infra.DefaultEventConfig()
	ev.Goal = 100
	app := handlers.NewApp(zerolog.Nop(), ev, arb, svc, aggregate.NewView(store), ex, hub)
	app.Location = time.UTC
	app.Now = func() time.Time { return time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC) }

	srv := httptest.NewServer(NewRouter(app, Options{Logger: zerolog.Nop(), UploadsPerMin: 100}))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, hub: hub}
}

// browser is one session: its own cookie jar.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (f *fixture) browser(t *testing.T) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: f.srv.URL, client: &http.Client{Jar: jar}}
}

func (b *browser) do(method, path string, body io.Reader, contentType string) *http.Response {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (b *browser) getJSON(path string, out any) int {
	resp := b.do(http.MethodGet, path, nil, "")
	if out != nil {
		require.NoError(b.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (b *browser) postJSON(path string, in, out any) int {
	raw, err := json.Marshal(in)
	require.NoError(b.t, err)
	resp := b.do(http.MethodPost, path, bytes.NewReader(raw), "application/json")
	if out != nil {
		require.NoError(b.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (b *browser) role() domain.Role {
	var out struct {
		Role domain.Role `json:"role"`
	}
	require.Equal(b.t, http.StatusOK, b.getJSON("/v1/session", &out))
	return out.Role
}

func (b *browser) upload(image []byte, fields map[string]string) *http.Response {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "form.jpg")
	require.NoError(b.t, err)
	_, err = fw.Write(image)
	require.NoError(b.t, err)
	for k, v := range fields {
		require.NoError(b.t, mw.WriteField(k, v))
	}
	require.NoError(b.t, mw.Close())
	return b.do(http.MethodPost, "/v1/donations", &buf, mw.FormDataContentType())
}

func TestEventFlowOverHTTP(t *testing.T) {
	ex := extraction.ExtractorFunc(func(context.Context, []byte) (extraction.Fields, error) {
		return extraction.Fields{}, nil
	})
	f := newFixture(t, roles.FirstComeFirstServed{}, ex)
	admin, editor, uploader := f.browser(t), f.browser(t), f.browser(t)

	require.Equal(t, domain.RoleAdmin, admin.role())
	require.Equal(t, domain.RoleEditor, editor.role())
	require.Equal(t, domain.RoleUploader, uploader.role())
	require.Equal(t, domain.RoleAdmin, admin.role(), "roles are stable per session")

	resp := uploader.upload([]byte("jpeg-bytes"), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Amount string `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.Empty(t, created.Name)

	// Only the editor reviews.
	require.Equal(t, http.StatusForbidden, uploader.getJSON("/v1/donations/review", nil))

	var review struct {
		Donation *struct {
			ID       int64  `json:"id"`
			ImageURL string `json:"image_url"`
		} `json:"donation"`
		Remaining int `json:"remaining"`
	}
	require.Equal(t, http.StatusOK, editor.getJSON("/v1/donations/review", &review))
	require.NotNil(t, review.Donation)
	require.Equal(t, created.ID, review.Donation.ID)
	require.Zero(t, review.Remaining)

	img := editor.do(http.MethodGet, review.Donation.ImageURL, nil, "")
	require.Equal(t, http.StatusOK, img.StatusCode)
	body, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(body))

	path := "/v1/donations/" + strconv.FormatInt(created.ID, 10) + "/confirm"
	require.Equal(t, http.StatusOK, editor.postJSON(path, map[string]string{"name": "Anon", "amount": "20"}, nil))

	var dash struct {
		Total        string `json:"total"`
		TotalDisplay string `json:"total_display"`
		Count        int    `json:"count"`
		Progress     string `json:"progress"`
		Remaining    string `json:"remaining"`
		Latest       *struct {
			Name string `json:"name"`
		} `json:"latest"`
	}
	require.Equal(t, http.StatusOK, admin.getJSON("/v1/dashboard", &dash))
	require.Equal(t, "20.00", dash.Total)
	require.Equal(t, "$20.00", dash.TotalDisplay)
	require.Equal(t, 1, dash.Count)
	require.Equal(t, "0.2000", dash.Progress)
	require.Equal(t, "80.00", dash.Remaining)
	require.Equal(t, "Anon", dash.Latest.Name)

	csvResp := admin.do(http.MethodGet, "/v1/export.csv", nil, "")
	require.Equal(t, http.StatusOK, csvResp.StatusCode)
	require.Contains(t, csvResp.Header.Get("Content-Disposition"), "donations_20250301_210000.csv")
	records, err := csv.NewReader(csvResp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, []string{"1", "Anon", "$20"}, records[1][:3])

	require.Equal(t, http.StatusForbidden, editor.getJSON("/v1/export.xlsx", nil))
	xlsx := admin.do(http.MethodGet, "/v1/export.xlsx", nil, "")
	require.Equal(t, http.StatusOK, xlsx.StatusCode)
	require.True(t, strings.HasPrefix(xlsx.Header.Get("Content-Type"), "application/vnd.openxmlformats"))
}

func TestUploadWithManualFieldsSkipsExtraction(t *testing.T) {
	called := false
	ex := extraction.ExtractorFunc(func(context.Context, []byte) (extraction.Fields, error) {
		called = true
		return extraction.Fields{}, nil
	})
	f := newFixture(t, roles.FirstComeFirstServed{}, ex)
	f.browser(t).role()
	f.browser(t).role()
	up := f.browser(t)

	resp := up.upload([]byte("img"), map[string]string{"name": "Jo", "amount": "5"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.False(t, called)
}

func TestUploadExtractionFailure(t *testing.T) {
	ex := extraction.ExtractorFunc(func(context.Context, []byte) (extraction.Fields, error) {
		return extraction.Fields{}, domain.ErrProviderFailure
	})
	f := newFixture(t, roles.FirstComeFirstServed{}, ex)
	f.browser(t).role()
	f.browser(t).role()
	up := f.browser(t)

	resp := up.upload([]byte("img"), nil)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "extraction_failed", body.Error.Code)
}

func TestConfirmMissingDonation(t *testing.T) {
	f := newFixture(t, roles.FirstComeFirstServed{}, nil)
	f.browser(t).role()
	editor := f.browser(t)
	require.Equal(t, domain.RoleEditor, editor.role())

	require.Equal(t, http.StatusNotFound, editor.postJSON("/v1/donations/42/confirm", map[string]string{"name": "x"}, nil))
	require.Equal(t, http.StatusBadRequest, editor.postJSON("/v1/donations/abc/skip", nil, nil))
}

func TestPasswordLogin(t *testing.T) {
	f := newFixture(t, roles.PasswordGated{AdminSecret: "admin123", EditorSecret: "editor123"}, nil)
	b := f.browser(t)
	require.Equal(t, domain.RoleUploader, b.role())

	require.Equal(t, http.StatusUnauthorized, b.postJSON("/v1/session/claim", map[string]string{"role": "admin", "secret": "nope"}, nil))
	require.Equal(t, http.StatusOK, b.postJSON("/v1/session/claim", map[string]string{"role": "admin", "secret": "admin123"}, nil))
	require.Equal(t, domain.RoleAdmin, b.role())

	other := f.browser(t)
	require.Equal(t, http.StatusConflict, other.postJSON("/v1/session/claim", map[string]string{"role": "admin", "secret": "admin123"}, nil))
	require.Equal(t, http.StatusBadRequest, other.postJSON("/v1/session/claim", map[string]string{"role": "uploader"}, nil))
}

func TestResetStartsNewEvent(t *testing.T) {
	f := newFixture(t, roles.FirstComeFirstServed{}, nil)
	admin, editor, third := f.browser(t), f.browser(t), f.browser(t)
	admin.role()
	editor.role()
	require.Equal(t, domain.RoleUploader, third.role())

	require.Equal(t, http.StatusForbidden, editor.postJSON("/v1/event/reset", nil, nil))
	require.Equal(t, http.StatusOK, admin.postJSON("/v1/event/reset", nil, nil))

	require.Equal(t, domain.RoleAdmin, third.role())
}

func TestEventsStream(t *testing.T) {
	f := newFixture(t, roles.FirstComeFirstServed{}, nil)
	b := f.browser(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.srv.URL+"/v1/events", nil)
	require.NoError(t, err)
	resp, err := b.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return f.hub.Subscribers() == 1 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, f.hub.Publish(ctx, events.Event{Kind: events.DonationConfirmed, DonationID: 3}))

	buf := make([]byte, 512)
	var got strings.Builder
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && !strings.Contains(got.String(), "event: donation.confirmed") {
		n, err := resp.Body.Read(buf)
		got.Write(buf[:n])
		if err != nil {
			break
		}
	}
	require.Contains(t, got.String(), "event: donation.confirmed")
}

func TestAPIDocsServed(t *testing.T) {
	f := newFixture(t, roles.FirstComeFirstServed{}, nil)
	b := f.browser(t)

	var doc struct {
		OpenAPI string         `json:"openapi"`
		Paths   map[string]any `json:"paths"`
	}
	require.Equal(t, http.StatusOK, b.getJSON("/v1/openapi.json", &doc))
	require.NotEmpty(t, doc.OpenAPI)
	require.Contains(t, doc.Paths, "/v1/dashboard")

	resp := b.do(http.MethodGet, "/v1/docs", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "<title>Live Donations API</title>")
}

func TestSessionCookieLifetime(t *testing.T) {
	app := handlers.NewApp(zerolog.Nop(), infra.DefaultEventConfig(), nil, nil, nil, nil, nil)
	cases := []struct {
		name     string
		lifetime time.Duration
		want     time.Duration
	}{
		{"default spans the event", 0, 30 * 24 * time.Hour},
		{"configured", 72 * time.Hour, 72 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRouter(app, Options{Logger: zerolog.Nop(), SessionLifetime: tc.lifetime})
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
			require.Equal(t, http.StatusOK, rec.Code)

			cookies := rec.Result().Cookies()
			require.Len(t, cookies, 1)
			require.Equal(t, int(tc.want.Seconds()), cookies[0].MaxAge)
		})
	}
}
