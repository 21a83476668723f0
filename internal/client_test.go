package internal

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestClient_LoginSendsFormEncoding(t *testing.T) {
	var gotContentType, gotUser, gotPass string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotContentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error: %v", err)
		}
		gotUser = r.PostFormValue("username")
		gotPass = r.PostFormValue("password")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	token, err := c.Login(context.Background(), "retailer", "retailer123")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token != "tok123" {
		t.Errorf("Login() token = %q, want tok123", token)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q, want form encoding", gotContentType)
	}
	if gotUser != "retailer" || gotPass != "retailer123" {
		t.Errorf("credentials = %q/%q, want retailer/retailer123", gotUser, gotPass)
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	c.SetToken("tok123")
	if _, err := c.NegotiationResults(context.Background()); err != nil {
		t.Fatalf("NegotiationResults() error: %v", err)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want Bearer tok123", gotAuth)
	}
}

func TestClient_APIErrorCarriesDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"Incorrect username or password"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.Login(context.Background(), "x", "y")

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T (%v), want *APIError", err, err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", apiErr.Status)
	}
	if apiErr.Detail != "Incorrect username or password" {
		t.Errorf("detail = %q", apiErr.Detail)
	}
}

func TestClient_APIErrorFallbackDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>upstream exploded</html>"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	err := c.Health(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T (%v), want *APIError", err, err)
	}
	if apiErr.Detail != "request failed" {
		t.Errorf("detail = %q, want fallback", apiErr.Detail)
	}
}

func TestClient_DecodeErrorKeepsRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	_, err := c.NegotiationResults(context.Background())

	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("error = %T (%v), want *DecodeError", err, err)
	}
	if decErr.Body != "not json at all" {
		t.Errorf("body = %q, want the raw response", decErr.Body)
	}
}

func TestClient_TransportErrorOnUnreachableBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := NewClient(srv.URL, time.Second)
	err := c.Health(context.Background())

	var trErr *TransportError
	if !errors.As(err, &trErr) {
		t.Fatalf("error = %T (%v), want *TransportError", err, err)
	}
	if trErr.Op != http.MethodGet {
		t.Errorf("op = %q, want GET", trErr.Op)
	}
}

func TestClient_NullPricesDecodeAsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"wholesaler":"W1","status":"finalized","offers":[
			{"product_name":"A","price":10},
			{"product_name":"B","price":null}
		]}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	results, err := c.NegotiationResults(context.Background())
	if err != nil {
		t.Fatalf("NegotiationResults() error: %v", err)
	}
	if len(results) != 1 || len(results[0].Offers) != 2 {
		t.Fatalf("unexpected results: %+v", results)
	}
	offers := results[0].Offers
	if offers[0].Price == nil || *offers[0].Price != 10 {
		t.Errorf("offer A price = %v, want 10", offers[0].Price)
	}
	if offers[1].Price != nil {
		t.Errorf("offer B price = %v, want nil for null", *offers[1].Price)
	}
	if got := TotalCost(offers); got != 10 {
		t.Errorf("TotalCost() = %v, want 10 with the null skipped", got)
	}
}

func TestClient_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "//") {
			t.Errorf("double slash in request path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	if err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error: %v", err)
	}
}
