package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/providex/supplier-registry/internal/core/domain"
	"github.com/providex/supplier-registry/internal/core/ports"
)

type stubSupplierRegistry struct {
	addFn     func(ctx context.Context, in ports.AddSupplierInput) (*domain.Supplier, error)
	findFn    func(ctx context.Context, raw string) (*domain.Supplier, bool, error)
	snapshots []ports.Snapshot
}

func (s *stubSupplierRegistry) AddSupplier(ctx context.Context, in ports.AddSupplierInput) (*domain.Supplier, error) {
	return s.addFn(ctx, in)
}

func (s *stubSupplierRegistry) FindSupplier(ctx context.Context, raw string) (*domain.Supplier, bool, error) {
	return s.findFn(ctx, raw)
}

func (s *stubSupplierRegistry) Watch(context.Context, ports.SnapshotHandler) (ports.Subscription, error) {
	return nil, errors.New("not used")
}

func (s *stubSupplierRegistry) ObserveAll(ctx context.Context) iter.Seq2[[]domain.Supplier, error] {
	return func(yield func([]domain.Supplier, error) bool) {
		for _, snap := range s.snapshots {
			if !yield(snap.Suppliers, snap.Err) || snap.Err != nil {
				return
			}
		}
		<-ctx.Done()
	}
}

func newTestContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

var sampleSupplier = domain.Supplier{
	Identifier: "12345678000195",
	Name:       "Acme",
	Address:    "Rua A, 1",
	Contact:    "(11) 1234-5678",
	CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
}

func TestSupplierHandler_Create_Success(t *testing.T) {
	stub := &stubSupplierRegistry{
		addFn: func(_ context.Context, in ports.AddSupplierInput) (*domain.Supplier, error) {
			if in.Identifier != "12.345.678/0001-95" || in.Name != "Acme" || in.Notes != "vip" {
				t.Fatalf("unexpected input: %+v", in)
			}
			s := sampleSupplier
			s.Notes = in.Notes
			return &s, nil
		},
	}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/v1/suppliers",
		`{"identifier":"12.345.678/0001-95","name":"Acme","notes":"vip"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp supplierResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Identifier != "12345678000195" || resp.Formatted != "12.345.678/0001-95" {
		t.Errorf("unexpected identifiers: %+v", resp)
	}
	if resp.Links.Self != "/v1/suppliers/12345678000195" {
		t.Errorf("unexpected self link %q", resp.Links.Self)
	}
	if resp.Notes != "vip" {
		t.Errorf("expected notes to round trip, got %q", resp.Notes)
	}
}

func TestSupplierHandler_Create_MissingFields(t *testing.T) {
	stub := &stubSupplierRegistry{
		addFn: func(context.Context, ports.AddSupplierInput) (*domain.Supplier, error) {
			t.Fatal("registry must not be called")
			return nil, nil
		},
	}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/v1/suppliers", `{"address":"Rua A"}`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "identifier is required") || !strings.Contains(body, "name is required") {
		t.Errorf("expected field messages, got %s", body)
	}
}

func TestSupplierHandler_Create_InvalidJSON(t *testing.T) {
	h := NewSupplierHandler(&stubSupplierRegistry{}, zerolog.Nop())

	c, rec := newTestContext(http.MethodPost, "/v1/suppliers", `{"identifier":`)
	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSupplierHandler_Create_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", fmt.Errorf("%w: identifier must contain digits", domain.ErrValidation), http.StatusUnprocessableEntity},
		{"not ready", domain.ErrNotReady, http.StatusServiceUnavailable},
		{"persistence", fmt.Errorf("%w: put supplier: boom", domain.ErrPersistence), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubSupplierRegistry{
				addFn: func(context.Context, ports.AddSupplierInput) (*domain.Supplier, error) {
					return nil, tc.err
				},
			}
			h := NewSupplierHandler(stub, zerolog.Nop())

			c, rec := newTestContext(http.MethodPost, "/v1/suppliers", `{"identifier":"x","name":"Acme"}`)
			if err := h.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
		})
	}
}

func TestSupplierHandler_Create_UnknownErrorBubblesUp(t *testing.T) {
	cause := errors.New("unexpected")
	stub := &stubSupplierRegistry{
		addFn: func(context.Context, ports.AddSupplierInput) (*domain.Supplier, error) {
			return nil, cause
		},
	}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, _ := newTestContext(http.MethodPost, "/v1/suppliers", `{"identifier":"1","name":"Acme"}`)
	if err := h.Create(c); !errors.Is(err, cause) {
		t.Fatalf("expected %v to reach the error handler, got %v", cause, err)
	}
}

func TestSupplierHandler_Get(t *testing.T) {
	stub := &stubSupplierRegistry{
		findFn: func(_ context.Context, raw string) (*domain.Supplier, bool, error) {
			if raw == "12345678000195" {
				s := sampleSupplier
				return &s, true, nil
			}
			return nil, false, nil
		},
	}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/", "")
	c.SetPath("/v1/suppliers/:identifier")
	c.SetParamNames("identifier")
	c.SetParamValues("12345678000195")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp supplierResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Name != "Acme" || !resp.CreatedAt.Equal(sampleSupplier.CreatedAt) {
		t.Errorf("unexpected payload: %+v", resp)
	}

	c, rec = newTestContext(http.MethodGet, "/", "")
	c.SetParamNames("identifier")
	c.SetParamValues("99999999999999")
	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSupplierHandler_List_FirstSnapshot(t *testing.T) {
	second := sampleSupplier
	second.Identifier = "98765432000110"
	stub := &stubSupplierRegistry{snapshots: []ports.Snapshot{
		{Suppliers: []domain.Supplier{sampleSupplier, second}},
		{Suppliers: []domain.Supplier{}},
	}}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/v1/suppliers", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp listSuppliersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Count != 2 || resp.Items[1].Identifier != "98765432000110" {
		t.Errorf("unexpected list: %+v", resp)
	}
}

func TestSupplierHandler_List_Timeout(t *testing.T) {
	h := NewSupplierHandler(&stubSupplierRegistry{}, zerolog.Nop())
	h.listTimeout = 10 * time.Millisecond

	c, rec := newTestContext(http.MethodGet, "/v1/suppliers", "")
	if err := h.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
}

func TestSupplierHandler_Stream(t *testing.T) {
	stub := &stubSupplierRegistry{snapshots: []ports.Snapshot{
		{Suppliers: []domain.Supplier{}},
		{Suppliers: []domain.Supplier{sampleSupplier}},
		{Err: fmt.Errorf("%w: listener closed", domain.ErrSubscription)},
	}}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/v1/suppliers/stream", "")
	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "text/event-stream" {
		t.Errorf("unexpected content type %q", ct)
	}

	events := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %d: %q", len(events), rec.Body.String())
	}
	if !strings.HasPrefix(events[0], "event: snapshot\ndata: {\"items\":[],\"count\":0}") {
		t.Errorf("unexpected first event %q", events[0])
	}
	if !strings.Contains(events[1], `"identifier":"12345678000195"`) {
		t.Errorf("unexpected second event %q", events[1])
	}
	if !strings.HasPrefix(events[2], "event: error\n") {
		t.Errorf("expected terminal error event, got %q", events[2])
	}
}

func TestSupplierHandler_Stream_NotReady(t *testing.T) {
	stub := &stubSupplierRegistry{snapshots: []ports.Snapshot{{Err: domain.ErrNotReady}}}
	h := NewSupplierHandler(stub, zerolog.Nop())

	c, rec := newTestContext(http.MethodGet, "/v1/suppliers/stream", "")
	if err := h.Stream(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), "text/event-stream") {
		t.Errorf("stream must not start before the first snapshot")
	}
}
