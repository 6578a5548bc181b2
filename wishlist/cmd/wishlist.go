package cmd

import (
	"fmt"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/cli"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/wishlist/internal/common/otel"
	"github.com/Alturino/storefront/wishlist/internal/controller"
	"github.com/Alturino/storefront/wishlist/internal/service"
)

func AttachWishlistRoutes(router *mux.Router) {
	controller.AttachWishlistController(router, service.NewWishlistService())
}

func NewWishlistCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewWishlistService()

	wishlistCmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Show the wishlist",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "wishlist show")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			view, err := svc.View(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, view)
		},
	}

	toggleCmd := &cobra.Command{
		Use:   "toggle <product-id>",
		Short: "Add a product to the wishlist or remove it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "wishlist toggle")
			defer span.End()

			productID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("product id %q must be a number", args[0])
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			result, view, err := svc.Toggle(c, s, productID)
			if result.Message != "" {
				fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			}
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, view)
		},
	}

	wishlistCmd.AddCommand(toggleCmd)
	return wishlistCmd
}
