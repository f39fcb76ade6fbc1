package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/shelfkeep/shelfkeep-server/internal/api"
	"github.com/shelfkeep/shelfkeep-server/internal/config"
	"github.com/shelfkeep/shelfkeep-server/internal/logger"
	"github.com/shelfkeep/shelfkeep-server/internal/service"
)

// APIServerHandle wraps the API handler so its rate limiter stops on shutdown.
type APIServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdowner.
func (h *APIServerHandle) Shutdown() {
	h.Close()
}

// ProvideAPIServer builds the router with every route registered.
func ProvideAPIServer(i do.Injector) (*APIServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		User:      do.MustInvoke[*service.UserService](i),
		Book:      do.MustInvoke[*service.BookService](i),
		Publisher: do.MustInvoke[*service.PublisherService](i),
	}

	server := api.NewServer(storeHandle.Store, services, api.Options{
		CORSAllowedOrigins:     cfg.Server.CORSAllowedOrigins,
		AuthRateLimitPerMinute: cfg.Auth.RateLimitPerMinute,
	}, log.Logger)

	return &APIServerHandle{Server: server}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.ShutdownerWithError.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer binds the listen address and serves in the background.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	handler := do.MustInvoke[*APIServerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind before returning so a busy port fails bootstrap instead of a goroutine.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
