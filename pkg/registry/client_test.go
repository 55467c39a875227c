package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func archiveServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDownloadArchive_FirstRegistryHit(t *testing.T) {
	srv := archiveServer(t, http.StatusOK, "zipbytes")
	t.Setenv("PONTIS_REGISTRY", srv.URL)

	c := NewClient(zap.NewNop())
	data, err := c.DownloadArchive(context.Background(), "design-system", "5.4.1")
	if err != nil {
		t.Fatalf("DownloadArchive: %v", err)
	}
	if string(data) != "zipbytes" {
		t.Errorf("data = %q, want zipbytes", data)
	}
}

func TestDownloadArchive_FallsThroughChainOn404(t *testing.T) {
	miss := archiveServer(t, http.StatusNotFound, "")
	hit := archiveServer(t, http.StatusOK, "zipbytes")
	t.Setenv("PONTIS_REGISTRY", miss.URL+","+hit.URL)

	c := NewClient(zap.NewNop())
	data, err := c.DownloadArchive(context.Background(), "design-system", "5.4.1")
	if err != nil {
		t.Fatalf("DownloadArchive: %v", err)
	}
	if string(data) != "zipbytes" {
		t.Errorf("data = %q, want the second registry's bytes", data)
	}
}

func TestDownloadArchive_ServerErrorDoesNotFallThrough(t *testing.T) {
	broken := archiveServer(t, http.StatusInternalServerError, "")
	never := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("second registry should not be contacted after a 500")
	}))
	t.Cleanup(never.Close)
	t.Setenv("PONTIS_REGISTRY", broken.URL+","+never.URL)

	c := NewClient(zap.NewNop())
	if _, err := c.DownloadArchive(context.Background(), "design-system", "5.4.1"); err == nil {
		t.Fatal("expected error from a 500 response")
	}
}

func TestDownloadArchive_OffSentinelStopsChain(t *testing.T) {
	never := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("registry after 'off' should not be contacted")
	}))
	t.Cleanup(never.Close)
	t.Setenv("PONTIS_REGISTRY", "off,"+never.URL)

	c := NewClient(zap.NewNop())
	if _, err := c.DownloadArchive(context.Background(), "design-system", "5.4.1"); err == nil {
		t.Fatal("expected not-found error when the chain is off")
	}
}

func TestDownloadArchive_ExhaustedChain(t *testing.T) {
	miss := archiveServer(t, http.StatusNotFound, "")
	t.Setenv("PONTIS_REGISTRY", miss.URL)

	c := NewClient(zap.NewNop())
	if _, err := c.DownloadArchive(context.Background(), "design-system", "5.4.1"); err == nil {
		t.Fatal("expected error when every registry misses")
	}
}

func TestNewClient_ChainParsing(t *testing.T) {
	t.Setenv("PONTIS_REGISTRY", " https://a.example , https://b.example | https://c.example ")
	c := NewClient(zap.NewNop())
	if len(c.registries) != 3 {
		t.Fatalf("registries = %v, want 3 entries", c.registries)
	}

	t.Setenv("PONTIS_REGISTRY", "")
	c = NewClient(zap.NewNop())
	if len(c.registries) != 1 || c.registries[0] != defaultRegistry {
		t.Errorf("default chain = %v, want [%s]", c.registries, defaultRegistry)
	}
}
