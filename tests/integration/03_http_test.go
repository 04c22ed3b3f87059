package integration_test

import (
	"context"
	"encoding/json"
	"math/big"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chemandante/sum-squares/internal/sum-squares/server"
	sumsquares "github.com/chemandante/sum-squares/pkg/sum-squares"
)

// Test03_HTTPRoundTrip starts the HTTP server on a loopback port, queries a
// decomposition and its digest, and compares them with the engine used
// directly
func Test03_HTTPRoundTrip(t *testing.T) {
	t.Log("=== Test 03: HTTP round trip ===")
	gin.SetMode(gin.TestMode)

	config := sumsquares.DefaultConfig().WithDigestFunction("poseidon")
	reg := prometheus.NewRegistry()
	engine, err := sumsquares.NewEngine(config, sumsquares.WithRegisterer(reg))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	srv, err := server.New(config, engine, reg, nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()
	defer func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Serve returned %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down")
		}
	}()

	client := &http.Client{
		Transport: &http.Transport{DisableKeepAlives: true},
		Timeout:   10 * time.Second,
	}
	resp, err := client.Get("http://" + ln.Addr().String() + "/v1/decompositions/2/5525")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body server.DecompositionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	t.Logf("  ✓ 5525 has %d decompositions over HTTP", body.Count)

	direct, err := engine.DecomposeTwo(context.Background(), big.NewInt(5525))
	if err != nil {
		t.Fatalf("DecomposeTwo failed: %v", err)
	}
	if body.Count != direct.Count() {
		t.Errorf("count mismatch: http %d, direct %d", body.Count, direct.Count())
	}
	if body.Digest != engine.Digest(direct) {
		t.Errorf("digest mismatch: http %s, direct %s", body.Digest, engine.Digest(direct))
	}
	if body.DigestFunction != "poseidon" {
		t.Errorf("expected poseidon digest, got %s", body.DigestFunction)
	}
	t.Log("  ✓ HTTP and direct results agree")
}
