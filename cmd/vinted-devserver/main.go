package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/VolkanCARBUGA/VintedClone/internal/logging"
	"github.com/VolkanCARBUGA/VintedClone/internal/market"
	"github.com/VolkanCARBUGA/VintedClone/internal/mockapi"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	addr := flag.String("addr", ":5000", "listen address")
	seed := flag.Bool("seed", true, "load demo users, listings and a conversation")
	logLevel := flag.String("log-level", "info", "debug, info, warn or error")
	flag.Parse()

	logger := logging.New(os.Stderr, *logLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv := mockapi.New(mockapi.WithLogger(logger))
	if *seed {
		seedDemo(srv, logger)
	}

	if err := serve(ctx, *addr, srv, logger); err != nil {
		fmt.Fprintf(os.Stderr, "vinted-devserver: %v\n", err)
		return 1
	}
	return 0
}

// serve runs handler on addr until ctx ends, then shuts down gracefully.
func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", addr, "api", "/api")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}

// seedDemo loads two accounts with a few listings, one of them sold, and an
// open conversation.
func seedDemo(srv *mockapi.Server, logger *slog.Logger) {
	ayse := srv.SeedUser("ayse", "ayse@example.com", "secret1")
	mert := srv.SeedUser("mert", "mert@example.com", "secret1")

	listings := []struct {
		seller string
		in     market.ProductInput
	}{
		{ayse.ID, market.ProductInput{Title: "Levi's 501 denim jacket", Description: "Worn twice, no marks.", Price: 450, Category: "women", Condition: "very_good", Brand: "Levi's", Size: "M"}},
		{ayse.ID, market.ProductInput{Title: "Leather ankle boots", Description: "Genuine leather, resoled last winter.", Price: 800, Category: "women", Condition: "good", Size: "38"}},
		{mert.ID, market.ProductInput{Title: "Nike Air Max 90", Description: "Original box included.", Price: 1250, Category: "men", Condition: "new", Brand: "Nike", Size: "43"}},
		{mert.ID, market.ProductInput{Title: "Wool scarf", Description: "Hand knitted.", Price: 120, Category: "men", Condition: "good"}},
		{mert.ID, market.ProductInput{Title: "Wooden toy train", Description: "Complete set, 12 pieces.", Price: 200, Category: "kids", Condition: "good"}},
		{ayse.ID, market.ProductInput{Title: "Film camera", Description: "Olympus, tested with one roll.", Price: 900, Category: "home", Condition: "good", Brand: "Olympus"}},
	}
	var boots market.Product
	for _, l := range listings {
		p := srv.SeedProduct(l.seller, l.in)
		switch l.in.Title {
		case "Leather ankle boots":
			boots = p
		case "Film camera":
			srv.MarkSold(p.ID)
		}
	}

	srv.SeedMessage(mert.ID, ayse.ID, boots.ID, "Hi! Are the boots still available?")

	logger.Info("seeded demo data",
		"users", "ayse@example.com, mert@example.com",
		"password", "secret1",
		"listings", len(listings),
	)
}
