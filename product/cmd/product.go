package cmd

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/api"
	"github.com/Alturino/storefront/internal/cli"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/product/internal/common/otel"
	"github.com/Alturino/storefront/product/internal/controller"
	"github.com/Alturino/storefront/product/internal/service"
	"github.com/Alturino/storefront/product/pkg/request"
)

// AttachProductRoutes serves the catalog through the anonymous client; the
// cache is optional.
func AttachProductRoutes(router *mux.Router, client *api.Client, cache redis.Cmdable, ttl time.Duration) {
	controller.AttachProductController(router, service.NewProductService(client, cache, ttl))
}

func NewProductCommand(provide shopper.Provide, cache redis.Cmdable, ttl time.Duration) *cobra.Command {
	productService := func(s *shopper.Shopper) service.ProductService {
		return service.NewProductService(s.Client, cache, ttl)
	}

	productCmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the catalog",
	}

	param := request.ListProducts{}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List products",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "products list")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			page, err := productService(s).List(c, param)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, page)
		},
	}
	listCmd.Flags().StringVar(&param.Search, "search", "", "search term")
	listCmd.Flags().StringVar(&param.Category, "category", "", "category slug")
	listCmd.Flags().StringVar(&param.Sort, "sort", "", "newest, price_asc, price_desc or popular")
	listCmd.Flags().IntVar(&param.Page, "page", 0, "page number")
	listCmd.Flags().IntVar(&param.PerPage, "per-page", 0, "products per page")

	showCmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "products show")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			product, err := productService(s).Get(c, args[0])
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, product)
		},
	}

	var (
		quantity   int
		attributes []string
	)
	quoteCmd := &cobra.Command{
		Use:   "quote <slug>",
		Short: "Price a product for an attribute selection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "products quote")
			defer span.End()

			selection, err := cli.ParseSelection(attributes)
			if err != nil {
				return err
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			quote, err := productService(s).Quote(c, args[0], selection, quantity)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, map[string]any{
				"breakdown": quote.Breakdown,
				"missing":   quote.Missing,
			})
		},
	}
	quoteCmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to price")
	quoteCmd.Flags().StringArrayVarP(&attributes, "attr", "a", nil, "attribute selection as id=value[,value]")

	reviewsCmd := &cobra.Command{
		Use:   "reviews <slug>",
		Short: "List the reviews of a product",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "products reviews")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			reviews, err := productService(s).Reviews(c, args[0])
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, reviews)
		},
	}

	productCmd.AddCommand(listCmd, showCmd, quoteCmd, reviewsCmd)
	return productCmd
}
