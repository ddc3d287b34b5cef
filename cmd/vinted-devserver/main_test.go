package main

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VolkanCARBUGA/VintedClone/internal/logging"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/mockapi"
)

func TestSeedDemo(t *testing.T) {
	srv := mockapi.New()
	seedDemo(srv, logging.Discard())

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	ctx := context.Background()
	c, err := market.NewClient(ts.URL + "/api")
	require.NoError(t, err)

	products, err := c.Products(ctx, market.ProductQuery{})
	require.NoError(t, err)
	assert.Len(t, products, 6)

	resp, err := c.Login(ctx, "ayse@example.com", "secret1")
	require.NoError(t, err)

	sold, err := c.UserProducts(ctx, resp.User.ID, "sold")
	require.NoError(t, err)
	require.Len(t, sold, 1)
	assert.Equal(t, "Film camera", sold[0].Title)

	authed, err := market.NewClient(ts.URL+"/api", market.WithTokenSource(staticToken(resp.Token)))
	require.NoError(t, err)
	convs, err := authed.Conversations(ctx)
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, 1, convs[0].UnreadCount)
	assert.Equal(t, "mert", convs[0].User.Username)
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- serve(ctx, addr, mockapi.New(), logging.Discard()) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/api/products")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
