package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"credit-voucher-engine/pkg/clock"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var t0 = time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)

func setupEcho(rdb redis.Cmdable, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, Options{TTL: ttl, Log: zap.NewNop(), Clock: clock.NewMock(t0)}))
	e.POST("/vouchers/:voucher_id/consume", handler)
	e.GET("/vouchers/:voucher_id", handler)
	e.DELETE("/loans/:loan_id", handler)
	return e
}

func validHeaders() map[string]string {
	return map[string]string{
		HeaderRequestID: strings.Repeat("a", 32),
		HeaderRequestAt: t0.Format(time.RFC3339),
		HeaderActorID:   "resto-42",
	}
}

func doReq(e *echo.Echo, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// countingHandler answers 201 with a body that changes on every real call.
func countingHandler(calls *int32) echo.HandlerFunc {
	return func(c echo.Context) error {
		n := atomic.AddInt32(calls, 1)
		return c.JSON(http.StatusCreated, map[string]any{"call": n})
	}
}

func Test_BypassOnGET_NoHeadersRequired(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))
	rec := doReq(e, http.MethodGet, "/vouchers/v1", "", nil)
	if rec.Code != http.StatusCreated || calls != 1 {
		t.Fatalf("GET should pass through, got %d calls=%d", rec.Code, calls)
	}
}

func Test_ValidationFailures(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	cases := []struct {
		name string
		mut  func(h map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, HeaderRequestID) }},
		{"bad request id", func(h map[string]string) { h[HeaderRequestID] = "NOT-VALID" }},
		{"bad request at", func(h map[string]string) { h[HeaderRequestAt] = "not-a-time" }},
		{"skewed past", func(h map[string]string) {
			h[HeaderRequestAt] = t0.Add(-maxClockSkew - time.Minute).Format(time.RFC3339)
		}},
		{"skewed future", func(h map[string]string) {
			h[HeaderRequestAt] = t0.Add(maxClockSkew + time.Minute).Format(time.RFC3339)
		}},
		{"missing actor", func(h map[string]string) { delete(h, HeaderActorID) }},
		{"bad actor", func(h map[string]string) { h[HeaderActorID] = "has space" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := validHeaders()
			tc.mut(h)
			rec := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"1"}`, h)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d body=%s", rec.Code, rec.Body.String())
			}
		})
	}
	if calls != 0 {
		t.Fatalf("handler must not run on header errors, calls=%d", calls)
	}
}

func Test_HappyPath_Then_Replay(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, 2*time.Minute, countingHandler(&calls))

	rec1 := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"100"}`, validHeaders())
	if rec1.Code != http.StatusCreated {
		t.Fatalf("first request => want 201, got %d body=%s", rec1.Code, rec1.Body.String())
	}
	rec2 := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"100"}`, validHeaders())
	if rec2.Code != http.StatusCreated {
		t.Fatalf("replay => want 201, got %d", rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("replay body mismatch: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func Test_NoContent_Replayed(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return c.NoContent(http.StatusNoContent)
	})

	rec1 := doReq(e, http.MethodDelete, "/loans/abc", "", validHeaders())
	if rec1.Code != http.StatusNoContent {
		t.Fatalf("first delete => want 204, got %d body=%s", rec1.Code, rec1.Body.String())
	}
	rec2 := doReq(e, http.MethodDelete, "/loans/abc", "", validHeaders())
	if rec2.Code != http.StatusNoContent {
		t.Fatalf("retried delete => want 204, got %d body=%s", rec2.Code, rec2.Body.String())
	}
	if rec2.Body.Len() != 0 {
		t.Fatalf("replayed 204 must be empty, got %q", rec2.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func Test_SameRequestID_DifferentVoucher_IsSeparate(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"1"}`, validHeaders())
	doReq(e, http.MethodPost, "/vouchers/v2/consume", `{"amount":"1"}`, validHeaders())
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func Test_Conflict_When_InProgress(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	body := `{"amount":"1"}`
	key := buildKey(http.MethodPost, "/vouchers/v1/consume", "resto-42", strings.Repeat("a", 32))
	if ok, err := provisionalSet(context.Background(), rdb, key, idempEntry{InProgress: true, BodySHA256: bodyHash([]byte(body))}); err != nil || !ok {
		t.Fatalf("seed provisional failed, ok=%v err=%v", ok, err)
	}

	rec := doReq(e, http.MethodPost, "/vouchers/v1/consume", body, validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("in-progress => want 409, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func Test_Conflict_When_SameReqID_DifferentBody(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"1"}`, validHeaders())
	rec := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"2"}`, validHeaders())
	if rec.Code != http.StatusConflict {
		t.Fatalf("different body same reqID => want 409, got %d", rec.Code)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func Test_ServerError_IsNotStored(t *testing.T) {
	_, rdb := newMiniRedis(t)
	var calls int32
	e := setupEcho(rdb, time.Minute, func(c echo.Context) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "concurrent modification"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "used"})
	})

	rec1 := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"1"}`, validHeaders())
	rec2 := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{"amount":"1"}`, validHeaders())
	if rec1.Code != http.StatusServiceUnavailable || rec2.Code != http.StatusOK {
		t.Fatalf("codes = %d, %d; want 503 then 200", rec1.Code, rec2.Code)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
}

func Test_StoreUnavailable_Returns503(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer rdb.Close()
	var calls int32
	e := setupEcho(rdb, time.Minute, countingHandler(&calls))

	rec := doReq(e, http.MethodPost, "/vouchers/v1/consume", `{}`, validHeaders())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("store unavailable => want 503, got %d", rec.Code)
	}
	if calls != 0 {
		t.Fatalf("handler must not run without the store")
	}
}
