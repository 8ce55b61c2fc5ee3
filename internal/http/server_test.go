package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ledger/internal/services"
	"ledger/internal/storage/memory"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *PageMeta       `json:"meta"`
	Error   *ErrorBody      `json:"error"`
}

type testServer struct {
	t   *testing.T
	srv *Server
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.New()
	srv := NewServer(Options{Addr: ":0", RateLimitPerMinute: 1000},
		services.NewLedgerService(store, nil),
		services.NewReportService(store),
		store)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testServer{t: t, srv: srv}
}

func (ts *testServer) do(method, target, body string) (*httptest.ResponseRecorder, envelope) {
	ts.t.Helper()
	var rdr *bytes.Reader
	if body != "" {
		rdr = bytes.NewReader([]byte(body))
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	ts.srv.Handler.ServeHTTP(rr, req)

	var env envelope
	if strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
			ts.t.Fatalf("%s %s: decode %q: %v", method, target, rr.Body.String(), err)
		}
	}
	return rr, env
}

func (ts *testServer) create(target, body string, out any) {
	ts.t.Helper()
	rr, env := ts.do(http.MethodPost, target, body)
	if rr.Code != http.StatusCreated || !env.Success {
		ts.t.Fatalf("POST %s: status=%d body=%s", target, rr.Code, rr.Body.String())
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		ts.t.Fatalf("decode data: %v", err)
	}
}

type idOnly struct {
	ID string `json:"id"`
}

func TestHealthAndReady(t *testing.T) {
	ts := newTestServer(t)
	for path, want := range map[string]string{"/healthz": "ok", "/readyz": "ready"} {
		rr, _ := ts.do(http.MethodGet, path, "")
		if rr.Code != http.StatusOK || rr.Body.String() != want {
			t.Fatalf("%s: %d %q", path, rr.Code, rr.Body.String())
		}
	}
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("db gone") }

func TestReady_StoreDown(t *testing.T) {
	store := memory.New()
	srv := NewServer(Options{}, services.NewLedgerService(store, nil), services.NewReportService(store), failingPinger{})
	defer srv.Shutdown(context.Background())

	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.do(http.MethodGet, "/api/v1/accounts", "")
	rr, _ := ts.do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ledger_http_requests_total") {
		t.Fatalf("metrics: %d", rr.Code)
	}
}

func TestAccounts(t *testing.T) {
	ts := newTestServer(t)

	var acc struct {
		ID           string `json:"id"`
		Type         string `json:"type"`
		Number       *string
		OpeningCents int64 `json:"openingCents"`
	}
	ts.create("/api/v1/accounts", `{"name":"Cassa","opening":"100.005"}`, &acc)
	if acc.Type != "OTHER" || acc.OpeningCents != 10001 || acc.Number != nil {
		t.Fatalf("account = %+v", acc)
	}

	var neg struct {
		OpeningCents int64 `json:"openingCents"`
	}
	ts.create("/api/v1/accounts", `{"name":"Fido","type":"BANK","opening":-12.5}`, &neg)
	if neg.OpeningCents != -1250 {
		t.Fatalf("opening = %d", neg.OpeningCents)
	}

	rr, env := ts.do(http.MethodGet, "/api/v1/accounts", "")
	var list []idOnly
	if err := json.Unmarshal(env.Data, &list); err != nil || rr.Code != 200 {
		t.Fatalf("list: %d %v", rr.Code, err)
	}
	if len(list) != 2 || list[1].ID != acc.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}
}

func TestAccounts_Validation(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not an object", `[1,2]`},
		{"missing name", `{}`},
		{"bad type", `{"name":"x","type":"SAVINGS"}`},
		{"bad opening", `{"name":"x","opening":"lots"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := ts.do(http.MethodPost, "/api/v1/accounts", tc.body)
			if rr.Code != http.StatusBadRequest || env.Success || env.Error == nil || env.Error.Code != CodeValidation {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestTransactions_Lifecycle(t *testing.T) {
	ts := newTestServer(t)
	var acc, cat idOnly
	ts.create("/api/v1/accounts", `{"name":"Bank","type":"BANK"}`, &acc)
	ts.create("/api/v1/categories", `{"name":"Offerte"}`, &cat)

	var tx struct {
		ID          string  `json:"id"`
		Date        string  `json:"date"`
		CreatedBy   string  `json:"createdBy"`
		Description *string `json:"description"`
		CategoryID  *string `json:"categoryId"`
		Account     *idOnly `json:"account"`
	}
	ts.create("/api/v1/transactions",
		`{"date":"2024-03-01T23:30:00Z","amountCents":1500,"type":"INCOME","accountId":"`+acc.ID+`","categoryId":"`+cat.ID+`","description":"Colletta"}`,
		&tx)
	if tx.Date != "2024-03-01" || tx.CreatedBy != "treasurer" || tx.Account == nil || tx.Account.ID != acc.ID {
		t.Fatalf("created = %+v", tx)
	}

	rr, env := ts.do(http.MethodPatch, "/api/v1/transactions",
		`{"id":"`+tx.ID+`","amountCents":2000,"description":"","categoryId":null}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", rr.Code, rr.Body.String())
	}
	var updated struct {
		AmountCents int64   `json:"amountCents"`
		Description *string `json:"description"`
		CategoryID  *string `json:"categoryId"`
		Date        string  `json:"date"`
	}
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		t.Fatal(err)
	}
	if updated.AmountCents != 2000 || updated.Description != nil || updated.CategoryID != nil || updated.Date != "2024-03-01" {
		t.Fatalf("updated = %+v", updated)
	}

	rr, env = ts.do(http.MethodGet, "/api/v1/transactions?page=1&pageSize=10", "")
	if rr.Code != http.StatusOK || env.Meta == nil || env.Meta.Total != 1 || env.Meta.PageSize != 10 {
		t.Fatalf("list: %d %s", rr.Code, rr.Body.String())
	}

	rr, env = ts.do(http.MethodDelete, "/api/v1/transactions?id="+tx.ID, "")
	if rr.Code != http.StatusOK || !env.Success || env.Data != nil {
		t.Fatalf("delete: %d %s", rr.Code, rr.Body.String())
	}

	rr, env = ts.do(http.MethodDelete, "/api/v1/transactions?id="+tx.ID, "")
	if rr.Code != http.StatusNotFound || env.Error.Code != CodeNotFound {
		t.Fatalf("second delete: %d %s", rr.Code, rr.Body.String())
	}
}

func TestTransactions_Errors(t *testing.T) {
	ts := newTestServer(t)
	var acc idOnly
	ts.create("/api/v1/accounts", `{"name":"Bank"}`, &acc)

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
		wantFields []string
	}{
		{"all violations", http.MethodPost, "/api/v1/transactions", `{"amountCents":-1,"type":"GIFT"}`,
			400, CodeValidation, []string{"date", "amountCents", "type", "accountId"}},
		{"fractional amount", http.MethodPost, "/api/v1/transactions",
			`{"date":"2024-01-01","amountCents":10.5,"type":"INCOME","accountId":"` + acc.ID + `"}`,
			400, CodeValidation, []string{"amountCents"}},
		{"bad date", http.MethodPost, "/api/v1/transactions",
			`{"date":"2024-02-30","amountCents":10,"type":"INCOME","accountId":"` + acc.ID + `"}`,
			400, CodeValidation, []string{"date"}},
		{"unknown account", http.MethodPost, "/api/v1/transactions",
			`{"date":"2024-01-01","amountCents":10,"type":"INCOME","accountId":"nope"}`,
			404, CodeNotFound, nil},
		{"unknown category", http.MethodPost, "/api/v1/transactions",
			`{"date":"2024-01-01","amountCents":10,"type":"INCOME","accountId":"` + acc.ID + `","categoryId":"nope"}`,
			404, CodeNotFound, nil},
		{"patch without id", http.MethodPatch, "/api/v1/transactions", `{"amountCents":5}`,
			400, CodeValidation, []string{"id"}},
		{"patch clears required", http.MethodPatch, "/api/v1/transactions", `{"id":"x","date":null}`,
			400, CodeValidation, []string{"date"}},
		{"patch unknown id", http.MethodPatch, "/api/v1/transactions", `{"id":"nope","amountCents":5}`,
			404, CodeNotFound, nil},
		{"delete without id", http.MethodDelete, "/api/v1/transactions", "",
			400, CodeValidation, []string{"id"}},
		{"bad page", http.MethodGet, "/api/v1/transactions?page=0", "",
			400, CodeValidation, []string{"page"}},
		{"inverted range", http.MethodGet, "/api/v1/transactions?startDate=2024-02-01&endDate=2024-01-01", "",
			400, CodeValidation, []string{"startDate"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr, env := ts.do(tc.method, tc.target, tc.body)
			if rr.Code != tc.wantStatus || env.Success || env.Error == nil || env.Error.Code != tc.wantCode {
				t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
			}
			var fields []string
			for _, d := range env.Error.Details {
				fields = append(fields, d.Field)
			}
			if strings.Join(fields, ",") != strings.Join(tc.wantFields, ",") {
				t.Fatalf("violated fields = %v, want %v", fields, tc.wantFields)
			}
		})
	}
}

func TestIncomeExpenseReport(t *testing.T) {
	ts := newTestServer(t)
	var acc, cat idOnly
	ts.create("/api/v1/accounts", `{"name":"Bank"}`, &acc)
	ts.create("/api/v1/categories", `{"name":"Utenze"}`, &cat)
	for _, body := range []string{
		`{"date":"2024-01-10","amountCents":50000,"type":"INCOME","accountId":"` + acc.ID + `"}`,
		`{"date":"2024-02-03","amountCents":12000,"type":"EXPENSE","accountId":"` + acc.ID + `","categoryId":"` + cat.ID + `"}`,
		`{"date":"2024-02-04","amountCents":7000,"type":"TRANSFER","accountId":"` + acc.ID + `"}`,
	} {
		var tx idOnly
		ts.create("/api/v1/transactions", body, &tx)
	}

	rr, env := ts.do(http.MethodGet, "/api/v1/reports/income-expense?period=monthly&startDate=2024-01-01&endDate=2024-12-31", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("report: %d %s", rr.Code, rr.Body.String())
	}
	var rep struct {
		Period    string `json:"period"`
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
		Series    []struct {
			PeriodLabel string `json:"periodLabel"`
			NetCents    int64  `json:"netCents"`
		} `json:"series"`
		Totals struct {
			IncomeCents, ExpenseCents, NetCents int64
		} `json:"totals"`
		BreakdownByCategory []struct {
			Name         string `json:"name"`
			ExpenseCents int64  `json:"expenseCents"`
		} `json:"breakdownByCategory"`
	}
	if err := json.Unmarshal(env.Data, &rep); err != nil {
		t.Fatal(err)
	}
	if rep.Period != "monthly" || rep.StartDate != "2024-01-01" || rep.EndDate != "2024-12-31" {
		t.Fatalf("window = %s %s..%s", rep.Period, rep.StartDate, rep.EndDate)
	}
	if len(rep.Series) != 2 || rep.Series[0].PeriodLabel != "2024-01" || rep.Series[1].NetCents != -12000 {
		t.Fatalf("series = %+v", rep.Series)
	}
	if rep.Totals.IncomeCents != 50000 || rep.Totals.ExpenseCents != 12000 || rep.Totals.NetCents != 38000 {
		t.Fatalf("totals = %+v", rep.Totals)
	}
	if len(rep.BreakdownByCategory) != 2 {
		t.Fatalf("breakdown = %+v", rep.BreakdownByCategory)
	}

	for _, q := range []string{"period=weekly", "startDate=2024-03-01&endDate=2024-02-01", "startDate=yesterday"} {
		rr, env := ts.do(http.MethodGet, "/api/v1/reports/income-expense?"+q, "")
		if rr.Code != http.StatusBadRequest || env.Error.Code != CodeValidation {
			t.Errorf("%s: status=%d", q, rr.Code)
		}
	}
}

func TestSummary_Empty(t *testing.T) {
	ts := newTestServer(t)
	rr, env := ts.do(http.MethodGet, "/api/v1/meta/summary", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("summary: %d", rr.Code)
	}
	var s map[string]any
	if err := json.Unmarshal(env.Data, &s); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"monthIncomeCents", "monthExpenseCents", "monthNetCents", "totalIncomeCents",
		"totalExpenseCents", "totalNetCents", "accountCount", "accountBalances", "totalBalanceCents"} {
		if _, ok := s[key]; !ok {
			t.Errorf("summary missing %s", key)
		}
	}
	if balances, ok := s["accountBalances"].([]any); !ok || len(balances) != 0 {
		t.Errorf("accountBalances = %v", s["accountBalances"])
	}
}

func TestDirectory(t *testing.T) {
	ts := newTestServer(t)
	var m idOnly
	ts.create("/api/v1/members", `{"name":"Anna"}`, &m)
	ts.create("/api/v1/members", `{"name":"bruno"}`, &m)

	_, env := ts.do(http.MethodGet, "/api/v1/members", "")
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Anna" {
		t.Fatalf("members = %+v", list)
	}

	rr, env := ts.do(http.MethodPost, "/api/v1/categories", `{"name":"   "}`)
	if rr.Code != http.StatusBadRequest || env.Error.Code != CodeValidation {
		t.Fatalf("blank category: %d", rr.Code)
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	ts := newTestServer(t)
	rr, env := ts.do(http.MethodGet, "/api/v1/nope", "")
	if rr.Code != http.StatusNotFound || env.Error.Code != CodeNotFound {
		t.Fatalf("unknown route: %d", rr.Code)
	}
	rr, _ = ts.do(http.MethodPut, "/api/v1/accounts", `{}`)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: %d", rr.Code)
	}
}

func TestRateLimit(t *testing.T) {
	store := memory.New()
	srv := NewServer(Options{RateLimitPerMinute: 1}, services.NewLedgerService(store, nil), services.NewReportService(store), store)
	defer srv.Shutdown(context.Background())

	codes := make([]int, 0, 3)
	for range 2 {
		rr := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader(`{"name":"x"}`)))
		codes = append(codes, rr.Code)
	}
	rr := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/categories", nil))
	codes = append(codes, rr.Code)

	want := []int{http.StatusCreated, http.StatusTooManyRequests, http.StatusOK}
	for i := range want {
		if codes[i] != want[i] {
			t.Fatalf("codes = %v, want %v", codes, want)
		}
	}
}
