package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	controller "github.com/m-mizutani/sheetmerge/pkg/controller/http"
	"github.com/m-mizutani/sheetmerge/pkg/domain/model"
	"github.com/m-mizutani/sheetmerge/pkg/infra/spreadsheet"
	"github.com/m-mizutani/sheetmerge/pkg/usecase"
)

func newTestServer(t *testing.T, ctx context.Context, opts ...controller.Option) *controller.Server {
	t.Helper()

	uc := usecase.NewMerge(usecase.NewSessions(spreadsheet.New()))
	opts = append([]controller.Option{
		controller.WithAddr("localhost:0"),
		controller.WithSessionSecret([]byte("test-session-secret")),
	}, opts...)

	server, err := controller.NewServer(ctx, uc, opts...)
	gt.NoError(t, err)
	return server
}

// browser is an HTTP client that keeps the session cookie between requests
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, server *controller.Server) *browser {
	t.Helper()

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	gt.NoError(t, err)

	return &browser{
		t:      t,
		base:   ts.URL,
		client: &http.Client{Jar: jar},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, []byte) {
	b.t.Helper()

	resp, err := b.client.Do(req)
	gt.NoError(b.t, err)
	defer func() {
		_ = resp.Body.Close() // Error ignored in test
	}()

	body, err := io.ReadAll(resp.Body)
	gt.NoError(b.t, err)
	return resp, body
}

func (b *browser) get(path string) (*http.Response, []byte) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	gt.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) postForm(path string, values url.Values) (*http.Response, []byte) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(values.Encode()))
	gt.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) upload(files map[string]string, order []string, values url.Values) (*http.Response, []byte) {
	b.t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, name := range order {
		part, err := mw.CreateFormFile("files", name)
		gt.NoError(b.t, err)
		_, err = part.Write([]byte(files[name]))
		gt.NoError(b.t, err)
	}
	for key, vs := range values {
		for _, v := range vs {
			gt.NoError(b.t, mw.WriteField(key, v))
		}
	}
	gt.NoError(b.t, mw.Close())

	req, err := http.NewRequest(http.MethodPost, b.base+"/files", &body)
	gt.NoError(b.t, err)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req)
}

func TestServer_MergeFlow(t *testing.T) {
	b := newBrowser(t, newTestServer(t, context.Background()))

	t.Run("index page starts a session", func(t *testing.T) {
		resp, body := b.get("/")
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		gt.String(t, string(body)).Contains(`name="rows_to_skip"`)

		u, err := url.Parse(b.base)
		gt.NoError(t, err)
		gt.Value(t, len(b.client.Jar.Cookies(u))).Equal(1)
	})

	t.Run("download without files shows a notice", func(t *testing.T) {
		resp, body := b.get("/download")
		gt.Value(t, resp.StatusCode).Equal(http.StatusConflict)
		gt.String(t, string(body)).Contains(model.NoticeNoData)
		gt.Value(t, resp.Header.Get("Content-Disposition")).Equal("")
	})

	t.Run("upload shows one preview per file", func(t *testing.T) {
		resp, body := b.upload(map[string]string{
			"people.csv": "Name,Age\nAlice,30\nBob,\n",
			"more.csv":   "Carol,41\nDave,52\nEve,\n",
		}, []string{"people.csv", "more.csv"}, nil)

		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		page := string(body)
		gt.String(t, page).Contains("<h2>people.csv</h2>")
		gt.String(t, page).Contains("<h2>more.csv</h2>")
		gt.String(t, page).Contains("<th>Column 2</th>")
		gt.True(t, strings.Index(page, "people.csv</h2>") < strings.Index(page, "more.csv</h2>"))
	})

	t.Run("settings refilter previews", func(t *testing.T) {
		resp, body := b.postForm("/settings", url.Values{
			"rows_to_skip":  {"1"},
			"column_filter": {"on"},
			"column_number": {"2"},
		})

		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		page := string(body)
		gt.False(t, strings.Contains(page, "<td>Name</td>"))
		gt.False(t, strings.Contains(page, "<td>Bob</td>"))
		gt.String(t, page).Contains("<td>Alice</td>")
		gt.String(t, page).Contains("checked")
	})

	t.Run("state API reflects the session", func(t *testing.T) {
		resp, body := b.get("/api/state")
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

		var result model.PassResult
		gt.NoError(t, json.Unmarshal(body, &result))
		gt.Value(t, result.Settings).Equal(model.FilterSettings{RowsToSkip: 1, ColumnFilterEnabled: true, ColumnNumber: 2})
		gt.Value(t, len(result.Previews)).Equal(2)
		gt.Value(t, result.TotalRows()).Equal(2)
	})

	t.Run("download returns the combined workbook", func(t *testing.T) {
		resp, body := b.get("/download")
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
		gt.String(t, resp.Header.Get("Content-Disposition")).Contains("combined.xlsx")

		grid, err := spreadsheet.New().Decode(context.Background(), "combined.xlsx", body)
		gt.NoError(t, err)
		gt.Value(t, grid).Equal(model.Grid{
			{"Alice", "30"},
			{"Dave", "52"},
		})
	})

	t.Run("settings API updates the session", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodPut, b.base+"/api/settings", strings.NewReader(`{"rows_to_skip":0}`))
		gt.NoError(t, err)
		resp, body := b.do(req)
		gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

		var result model.PassResult
		gt.NoError(t, json.Unmarshal(body, &result))
		gt.Value(t, result.TotalRows()).Equal(6)
	})
}

func TestServer_TwoFilesDownload(t *testing.T) {
	b := newBrowser(t, newTestServer(t, context.Background()))

	resp, _ := b.upload(map[string]string{
		"a.csv": "a1\na2\n",
		"b.csv": "b1\nb2\nb3\n",
	}, []string{"a.csv", "b.csv"}, url.Values{"rows_to_skip": {"0"}, "column_number": {"1"}})
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	resp, body := b.get("/download")
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	grid, err := spreadsheet.New().Decode(context.Background(), "combined.xlsx", body)
	gt.NoError(t, err)
	gt.Value(t, grid).Equal(model.Grid{{"a1"}, {"a2"}, {"b1"}, {"b2"}, {"b3"}})
}

func TestServer_BrokenFile(t *testing.T) {
	b := newBrowser(t, newTestServer(t, context.Background()))

	resp, body := b.upload(map[string]string{
		"broken.xlsx": "definitely not a workbook",
		"good.csv":    "x,y\n",
	}, []string{"broken.xlsx", "good.csv"}, nil)

	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)
	gt.String(t, string(body)).Contains("An error occurred while processing broken.xlsx.")
	gt.String(t, string(body)).Contains("<td>x</td>")
}

func TestServer_UploadTooLarge(t *testing.T) {
	server := newTestServer(t, context.Background(), controller.WithMaxUploadSize(64))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("files", "big.csv")
	gt.NoError(t, err)
	_, err = part.Write([]byte(strings.Repeat("a,b,c\n", 100)))
	gt.NoError(t, err)
	gt.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/files", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Value(t, w.Code).Equal(http.StatusRequestEntityTooLarge)
	gt.String(t, w.Body.String()).Contains("exceeds the limit")
}

func TestServer_SessionsAreIsolated(t *testing.T) {
	server := newTestServer(t, context.Background())
	alice := newBrowser(t, server)

	resp, _ := alice.upload(map[string]string{"a.csv": "1\n"}, []string{"a.csv"}, nil)
	gt.Value(t, resp.StatusCode).Equal(http.StatusOK)

	// A second browser against the same handler has its own cookie jar.
	bob := &browser{t: t, base: alice.base, client: &http.Client{Jar: mustJar(t)}}
	resp, _ = bob.get("/download")
	gt.Value(t, resp.StatusCode).Equal(http.StatusConflict)
}

func TestServer_InvalidCookieStartsNewSession(t *testing.T) {
	server := newTestServer(t, context.Background())

	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.AddCookie(&http.Cookie{Name: "sheetmerge_session", Value: "forged"})
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)

	gt.Value(t, w.Code).Equal(http.StatusOK)
	cookies := w.Result().Cookies()
	gt.Value(t, len(cookies)).Equal(1)
	gt.Value(t, cookies[0].Value).NotEqual("forged")
	gt.True(t, cookies[0].HttpOnly)
}

func TestNewServer_RequiresSessionSecret(t *testing.T) {
	uc := usecase.NewMerge(usecase.NewSessions(spreadsheet.New()))
	_, err := controller.NewServer(context.Background(), uc)
	gt.Error(t, err)
}

func mustJar(t *testing.T) http.CookieJar {
	t.Helper()
	jar, err := cookiejar.New(nil)
	gt.NoError(t, err)
	return jar
}
