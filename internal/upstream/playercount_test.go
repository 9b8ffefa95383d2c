package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPlayerCountAdapter_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"player_count":15000,"result":1}}`))
	}))
	defer srv.Close()

	a := NewPlayerCountAdapter(NewClient(0, nil, nil), srv.URL)
	count, ok := a.GetPlayerCount(context.Background(), 730)
	if !ok {
		t.Fatal("expected ok")
	}
	if count != 15000 {
		t.Fatalf("count = %d, want 15000", count)
	}
}

func TestPlayerCountAdapter_FailureResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response":{"result":42}}`))
	}))
	defer srv.Close()

	a := NewPlayerCountAdapter(NewClient(0, nil, nil), srv.URL)
	_, ok := a.GetPlayerCount(context.Background(), 1)
	if ok {
		t.Fatal("expected not ok on non-1 result")
	}
}

func TestPlayerCountAdapter_UnreachableReturnsNotOK(t *testing.T) {
	a := NewPlayerCountAdapter(NewClient(0, nil, nil), "http://127.0.0.1:1")
	_, ok := a.GetPlayerCount(context.Background(), 1)
	if ok {
		t.Fatal("expected not ok when unreachable")
	}
}
