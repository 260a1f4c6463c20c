package middleware

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

func newMiniredisClient(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// setupEcho mounts a counting handler behind the idempotency middleware so
// tests can observe whether the handler actually ran.
func setupEcho(rdb *redis.Client, calls *int) *echo.Echo {
	e := echo.New()
	h := func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusCreated, map[string]any{"loan_id": 0, "call": *calls})
	}
	e.POST("/loans", h, Idempotency(rdb, 5*time.Minute))
	e.GET("/loans", func(c echo.Context) error {
		*calls++
		return c.JSON(http.StatusOK, []string{})
	}, Idempotency(rdb, 5*time.Minute))
	return e
}

func doReq(e *echo.Echo, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cmdHeaders(reqID string) map[string]string {
	return map[string]string{
		"Ax-Request-Id": reqID,
		"Ax-Actor-Id":   "0xborrower",
		"Ax-Request-At": strconv.FormatInt(time.Now().Unix(), 10),
	}
}

const testReqID = "0f8fad5b-d9cb-469f-a165-70867728950e"

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, &calls)
	body := []byte(`{"borrower":"0xb"}`)

	first := doReq(e, http.MethodPost, "/loans", body, cmdHeaders(testReqID))
	if first.Code != http.StatusCreated {
		t.Fatalf("first call code = %d", first.Code)
	}
	second := doReq(e, http.MethodPost, "/loans", body, cmdHeaders(testReqID))
	if second.Code != http.StatusCreated {
		t.Fatalf("replay code = %d", second.Code)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replay body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestIdempotency_SameIDDifferentBodyConflicts(t *testing.T) {
	rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, &calls)

	if rec := doReq(e, http.MethodPost, "/loans", []byte(`{"borrower":"0xb"}`), cmdHeaders(testReqID)); rec.Code != http.StatusCreated {
		t.Fatalf("first call code = %d", rec.Code)
	}
	rec := doReq(e, http.MethodPost, "/loans", []byte(`{"borrower":"0xother"}`), cmdHeaders(testReqID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("reused id with new body: code = %d, want 409", rec.Code)
	}
	if calls != 1 {
		t.Errorf("handler ran %d times, want 1", calls)
	}
}

func TestIdempotency_DistinctActorsDoNotCollide(t *testing.T) {
	rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, &calls)
	body := []byte(`{"borrower":"0xb"}`)

	doReq(e, http.MethodPost, "/loans", body, cmdHeaders(testReqID))

	h := cmdHeaders(testReqID)
	h["Ax-Actor-Id"] = "0xlender"
	doReq(e, http.MethodPost, "/loans", body, h)

	if calls != 2 {
		t.Errorf("handler ran %d times, want 2 (one per actor)", calls)
	}
}

func TestIdempotency_GetBypassesGuard(t *testing.T) {
	rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, &calls)

	for i := 0; i < 3; i++ {
		if rec := doReq(e, http.MethodGet, "/loans", nil, nil); rec.Code != http.StatusOK {
			t.Fatalf("GET code = %d", rec.Code)
		}
	}
	if calls != 3 {
		t.Errorf("handler ran %d times, want 3", calls)
	}
}

func TestIdempotency_HeaderValidation(t *testing.T) {
	rdb := newMiniredisClient(t)
	calls := 0
	e := setupEcho(rdb, &calls)
	body := []byte(`{}`)

	cases := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"malformed request id", func(h map[string]string) { h["Ax-Request-Id"] = "not-a-uuid" }},
		{"missing actor", func(h map[string]string) { delete(h, "Ax-Actor-Id") }},
		{"actor with spaces", func(h map[string]string) { h["Ax-Actor-Id"] = "two words" }},
		{"missing request at", func(h map[string]string) { delete(h, "Ax-Request-At") }},
		{"naive timestamp", func(h map[string]string) { h["Ax-Request-At"] = "2026-01-02 15:04:05" }},
		{"skewed timestamp", func(h map[string]string) {
			h["Ax-Request-At"] = strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := cmdHeaders(testReqID)
			tc.mutate(h)
			rec := doReq(e, http.MethodPost, "/loans", body, h)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("code = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
	if calls != 0 {
		t.Errorf("handler ran %d times on invalid headers, want 0", calls)
	}
}

func TestParseRequestAt(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)

	cases := []struct {
		name    string
		raw     string
		want    time.Time
		wantErr bool
	}{
		{"epoch seconds", strconv.FormatInt(now.Unix(), 10), now, false},
		{"epoch millis", strconv.FormatInt(now.UnixMilli(), 10), now, false},
		{"rfc3339 zulu", now.Format(time.RFC3339), now, false},
		{"rfc3339 offset", now.In(time.FixedZone("", 7*3600)).Format(time.RFC3339), now, false},
		{"empty", "", time.Time{}, true},
		{"naive local", "2026-01-02T15:04:05", time.Time{}, true},
		{"garbage", "yesterday", time.Time{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseRequestAt(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("want error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseRequestAt(%q): %v", tc.raw, err)
			}
			if !got.Equal(tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidReqID(t *testing.T) {
	if !validReqID(testReqID) {
		t.Error("uuid rejected")
	}
	if !validReqID("0123456789abcdef0123456789abcdef") {
		t.Error("hex32 rejected")
	}
	for _, bad := range []string{"", "short", "0123456789ABCDEF0123456789abcdeg", fmt.Sprintf("%033d", 0)} {
		if validReqID(bad) {
			t.Errorf("%q accepted", bad)
		}
	}
}

func TestBuildKey(t *testing.T) {
	got := buildKey(http.MethodPost, "/loans/:id/accept", "0xlender", testReqID)
	want := "idemp:ledger:post:/loans/:id/accept:0xlender:" + testReqID
	if got != want {
		t.Errorf("key = %q, want %q", got, want)
	}
}
