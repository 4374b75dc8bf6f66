package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/onxpoint/internal/container"
	"github.com/serroba/onxpoint/internal/identity"
	"github.com/serroba/onxpoint/internal/store"
	"github.com/serroba/onxpoint/internal/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.IdentityPackage(injector)
	container.ShortLinkPackage(injector)
	container.PublisherGroupPackage(injector)
	container.ReviewPackage(injector)
	container.HTTPPackage(injector)
}

// probe fails fast when the store is unreachable or no usable token key is configured.
func probe(injector *do.Injector) error {
	if err := do.MustInvoke[*token.Service](injector).Ready(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return do.MustInvoke[store.KeyValueStore](injector).Ping(ctx)
}

func setCredentialCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-credential <username> <password>",
		Short: "Store a bcrypt hash of password for username",
		Args:  cobra.ExactArgs(2),
		Run: humacli.WithOptions(func(_ *cobra.Command, args []string, options *container.Options) {
			injector := do.New()
			registerPackages(injector, options)

			logger := do.MustInvoke[*zap.Logger](injector)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			gw := do.MustInvoke[*identity.Gateway](injector)
			if err := gw.SetCredential(ctx, args[0], args[1]); err != nil {
				logger.Fatal("failed to store credential", zap.String("username", args[0]), zap.Error(err))
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}
		}),
	}
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			if err := probe(injector); err != nil {
				logger.Fatal("startup check failed", zap.Error(err))
			}

			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("backend", options.Backend),
				zap.String("base_url", options.PublicBaseURL()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Root().AddCommand(setCredentialCommand())

	cli.Run()
}
