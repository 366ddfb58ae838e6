package inventory

import (
	"bytes"
	"log"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"lager-backend/internal/auth"
	"lager-backend/internal/database"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newHandlerApp(t *testing.T) (*fiber.App, *database.DocStore) {
	t.Helper()
	svc, store, _, _ := newTestService(t)

	app := fiber.New(fiber.Config{UnescapePath: true})
	api := app.Group("/api", func(c *fiber.Ctx) error {
		if u := c.Get("X-User"); u != "" {
			c.Locals(auth.CtxUsernameKey, u)
		}
		return c.Next()
	})
	api.Get("/articles", ListArticlesHandler(svc))
	api.Get("/articles/export.xlsx", ExportArticlesHandler(svc))
	api.Post("/articles/import", ImportArticlesHandler(svc))
	api.Get("/articles/:key", GetArticleHandler(svc))
	api.Post("/articles", CreateArticleHandler(svc))
	api.Put("/articles/:id", UpdateArticleHandler(svc))
	api.Delete("/articles/:key", DeleteArticleHandler(svc))
	api.Post("/add", CreateArticleHandler(svc))
	api.Delete("/remove", RemoveArticleHandler(svc))
	api.Post("/bookings", CreateBookingHandler(svc))
	api.Get("/bookings", ListBookingsHandler(svc))
	api.Post("/verbrauch", BookTypeHandler(svc, models.BookingConsume))
	api.Post("/einkauf", BookTypeHandler(svc, models.BookingPurchase))
	api.Get("/warnlist", WarnlistHandler(svc))
	api.Get("/warnlist/export.xlsx", ExportWarnlistHandler(svc))
	return app, store
}

func call(t *testing.T, app *fiber.App, user, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHandlersRequireSession(t *testing.T) {
	app, _ := newHandlerApp(t)

	resp := call(t, app, "", http.MethodGet, "/api/articles", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestArticleHandlers(t *testing.T) {
	app, store := newHandlerApp(t)

	resp := call(t, app, "lager", http.MethodGet, "/api/articles", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]models.Article](t, resp)
	assert.Len(t, list, 2)

	resp = call(t, app, "admin", http.MethodPost, "/api/articles", `{"artNr":"KB-1","name":"Kabelbinder","bestand":"50","mindestBestand":10}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[models.Article](t, resp)
	assert.Equal(t, models.Article{ID: "00003", ArticleNumber: "KB-1", Name: "Kabelbinder", Quantity: 50, MinimumQuantity: 10}, created)

	resp = call(t, app, "admin", http.MethodPost, "/api/articles", `{"name":"kabelbinder"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = call(t, app, "admin", http.MethodPost, "/api/articles", `{"name":"X","bestand":"viel"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = call(t, app, "lager", http.MethodPost, "/api/articles", `{"name":"Y"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = call(t, app, "lager", http.MethodGet, "/api/articles/KABELBINDER", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "00003", decode[models.Article](t, resp).ID)

	resp = call(t, app, "admin", http.MethodPut, "/api/articles/00003", `{"mindestBestand":60}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 60, decode[models.Article](t, resp).MinimumQuantity)

	resp = call(t, app, "admin", http.MethodPut, "/api/articles/00099", `{"name":"Z"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, app, "admin", http.MethodDelete, "/api/articles/00003", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, app, "admin", http.MethodDelete, "/api/articles/00003", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Len(t, store.Snapshot().Articles, 2)
}

func TestLegacyAddAndRemoveRoutes(t *testing.T) {
	app, store := newHandlerApp(t)

	resp := call(t, app, "admin", http.MethodPost, "/api/add", `{"id":"SCH-7","name":"Schrauben","quantity":"12"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	a := decode[models.Article](t, resp)
	assert.Equal(t, "SCH-7", a.ArticleNumber)
	assert.Equal(t, 12, a.Quantity)

	resp = call(t, app, "admin", http.MethodDelete, "/api/remove", `{"name":"schrauben"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = call(t, app, "admin", http.MethodDelete, "/api/remove", `{"name":"schrauben"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Len(t, store.Snapshot().Articles, 2)
}

func TestBookingHandlers(t *testing.T) {
	app, store := newHandlerApp(t)

	resp := call(t, app, "lager", http.MethodPost, "/api/verbrauch", `{"name":"Handschuhe","amount":"3"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decode[BookingResponse](t, resp)
	assert.Equal(t, 7, res.Bestand)
	assert.Equal(t, -3, res.Booking.Change)

	resp = call(t, app, "lager", http.MethodPost, "/api/bookings", `{"article":"00001","type":"consume","amount":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 4, decode[BookingResponse](t, resp).Bestand)

	resp = call(t, app, "lager", http.MethodGet, "/api/warnlist", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	warn := decode[[]models.Article](t, resp)
	require.Len(t, warn, 1)
	assert.Equal(t, "Handschuhe", warn[0].Name)

	cases := []struct {
		name   string
		user   string
		path   string
		body   string
		status int
	}{
		{"purchase without permission", "lager", "/api/einkauf", `{"name":"Handschuhe","amount":5}`, http.StatusForbidden},
		{"unknown article", "admin", "/api/einkauf", `{"name":"Schrauben","amount":5}`, http.StatusNotFound},
		{"zero amount", "admin", "/api/einkauf", `{"name":"Handschuhe","amount":0}`, http.StatusBadRequest},
		{"zero amount without permission", "lager", "/api/einkauf", `{"name":"Handschuhe","amount":0}`, http.StatusForbidden},
		{"non numeric amount", "admin", "/api/einkauf", `{"name":"Handschuhe","amount":"drei"}`, http.StatusBadRequest},
		{"missing amount", "admin", "/api/einkauf", `{"name":"Handschuhe"}`, http.StatusBadRequest},
		{"unknown type", "admin", "/api/bookings", `{"article":"00001","type":"inventur","amount":1}`, http.StatusBadRequest},
		{"must change password", "neu", "/api/verbrauch", `{"name":"Handschuhe","amount":1}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := call(t, app, tc.user, http.MethodPost, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}

	snap := store.Snapshot()
	assert.Equal(t, 4, snap.Articles[0].Quantity)
	assert.Len(t, snap.Bookings, 2)
}

func TestExportHandlers(t *testing.T) {
	app, _ := newHandlerApp(t)
	resp := call(t, app, "lager", http.MethodPost, "/api/verbrauch", `{"name":"Handschuhe","amount":8}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = call(t, app, "lager", http.MethodGet, "/api/warnlist/export.xlsx", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "warnliste.xlsx")

	f, err := excelize.OpenReader(resp.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Warnliste")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"00001", "HS-100", "Handschuhe", "2", "5"}, rows[1])

	resp = call(t, app, "niemand", http.MethodGet, "/api/articles/export.xlsx", "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestImportHandler(t *testing.T) {
	app, store := newHandlerApp(t)

	f := excelize.NewFile()
	rows := [][]any{
		{"Artikelnummer", "Name", "Bestand", "Mindestbestand"},
		{"KB-1", "Kabelbinder", 40, 10},
		{"HS-100", "Handschuhe", 1, 1},
		{"", "", "", ""},
		{"TN-2", "Toner", 2, 3},
		{"X-9", "", 3, 1},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "artikel.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/articles/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-User", "admin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	res := decode[ImportResult](t, resp)
	require.Len(t, res.Created, 2)
	assert.Equal(t, "00003", res.Created[0].ID)
	assert.Equal(t, "Toner", res.Created[1].Name)
	assert.Equal(t, []string{"Handschuhe", "zeile 6"}, res.Skipped)
	assert.Len(t, store.Snapshot().Articles, 4)
}

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestArticleKeyWithUmlautsAndSpaces(t *testing.T) {
	app, store := newHandlerApp(t)

	resp := call(t, app, "admin", http.MethodPost, "/api/articles", `{"name":"Schläuche groß","bestand":3}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = call(t, app, "lager", http.MethodGet, "/api/articles/Schl%C3%A4uche%20gro%C3%9F", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Schläuche groß", decode[models.Article](t, resp).Name)

	resp = call(t, app, "admin", http.MethodDelete, "/api/articles/schl%C3%A4uche%20GRO%C3%9F", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, store.Snapshot().Articles, 2)
}

func TestArticleChangesAreAuditLogged(t *testing.T) {
	app, _ := newHandlerApp(t)
	out := captureLog(t)

	resp := call(t, app, "admin", http.MethodPut, "/api/articles/00001", `{"bestand":42}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	line := out.String()
	assert.Contains(t, line, "[AUDIT] user=admin action=update article=00001")
	assert.Contains(t, line, "Bestand ohne Buchung gesetzt: 10 -> 42")
	assert.Contains(t, line, `before={"id":"00001","artNr":"HS-100","name":"Handschuhe","bestand":10,"mindestBestand":5}`)
	assert.Contains(t, line, `"bestand":42`)

	resp = call(t, app, "admin", http.MethodGet, "/api/bookings?article=00001", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, decode[[]models.Booking](t, resp), "direct edits write no booking")

	out.Reset()
	resp = call(t, app, "admin", http.MethodPost, "/api/articles", `{"name":"Toner"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = call(t, app, "admin", http.MethodDelete, "/api/articles/Toner", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "action=create article=00003")
	assert.Contains(t, lines[1], "action=delete article=00003")
}
