package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/storefront/cart/cmd"
	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/config"
	"github.com/Alturino/storefront/internal/infra"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/shopper"
	notificationCmd "github.com/Alturino/storefront/notification/cmd"
	orderCmd "github.com/Alturino/storefront/order/cmd"
	productCmd "github.com/Alturino/storefront/product/cmd"
	shopCmd "github.com/Alturino/storefront/shop/cmd"
	userCmd "github.com/Alturino/storefront/user/cmd"
	wishlistCmd "github.com/Alturino/storefront/wishlist/cmd"
)

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load("storefront", "./env", ".")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := log.InitLogger(cfg.Application.LogFile, cfg.Application.Env).
		With().
		Str(log.KeyAppName, constants.AppStorefrontCli).
		Str(log.KeyTag, "main Start").
		Logger()
	c = logger.WithContext(c)

	if err := NewRootCommand(c, &cfg).ExecuteContext(c); err != nil {
		logger.Debug().Err(err).Msgf("error when executing command=%s", err.Error())
		stop()
		os.Exit(1)
	}
}

// NewRootCommand wires every domain command to one file backed shopper. The
// shopper is created by the first command that needs it.
func NewRootCommand(c context.Context, cfg *config.Config) *cobra.Command {
	var verbose bool
	rootCmd := &cobra.Command{
		Use:          "storefront",
		Short:        "Browse the catalog, manage the cart and check out",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose || cmd.Name() == "serve" {
				return
			}
			logger := zerolog.Ctx(cmd.Context()).Level(zerolog.WarnLevel)
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log below warning level")

	var (
		once sync.Once
		s    *shopper.Shopper
		err  error
	)
	provide := func(c context.Context) (*shopper.Shopper, error) {
		once.Do(func() {
			base := api.New(
				cfg.Api.BaseURL,
				nil,
				api.WithHTTPClient(api.NewHTTPClient(cfg.Api.Timeout)),
				api.WithNotificationTimeout(cfg.Api.NotificationTimeout),
			)
			s, err = shopper.New(c, session.NewFileStorage(cfg.Session.Path), base, nil)
			if err != nil {
				err = fmt.Errorf("failed opening session at %s with error=%w", cfg.Session.Path, err)
			}
		})
		return s, err
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP service",
		Run: func(cmd *cobra.Command, args []string) {
			shopCmd.RunStorefrontService(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(
		serveCmd,
		productCmd.NewProductCommand(provide, productCache(c, cfg.Cache), cfg.Cache.ProductTTL),
		cartCmd.NewCartCommand(provide),
		wishlistCmd.NewWishlistCommand(provide),
		orderCmd.NewCheckoutCommand(provide),
		orderCmd.NewOrderCommand(provide),
		userCmd.NewAddressCommand(provide),
		notificationCmd.NewDeviceCommand(provide),
	)
	rootCmd.AddCommand(userCmd.NewAuthCommands(provide)...)
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if s != nil {
			s.Close()
		}
	}
	return rootCmd
}

// productCache returns nil when no cache is configured or reachable; the
// catalog is then fetched on every call.
func productCache(c context.Context, cfg config.Cache) redis.Cmdable {
	if !cfg.Enabled() {
		return nil
	}
	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "main productCache").Logger()
	cache, err := infra.NewCacheClient(c, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("product cache unavailable, continuing without it")
		return nil
	}
	return cache
}
