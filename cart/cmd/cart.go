package cmd

import (
	"fmt"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/cart/internal/common/otel"
	"github.com/Alturino/storefront/cart/internal/controller"
	"github.com/Alturino/storefront/cart/internal/service"
	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/cli"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
)

func AttachCartRoutes(router *mux.Router) {
	controller.AttachCartController(router, service.NewCartService())
}

func NewCartCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewCartService()

	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Show and change the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "cart show")
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

	var (
		quantity   int
		attributes []string
	)
	addCmd := &cobra.Command{
		Use:   "add <product-slug>",
		Short: "Add a product to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "cart add")
			defer span.End()

			logger := zerolog.Ctx(c).With().
				Str(log.KeyTag, "cart add").
				Str(log.KeyProductSlug, args[0]).
				Logger()

			selection, err := cli.ParseSelection(attributes)
			if err != nil {
				return err
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			result, err := svc.Add(logger.WithContext(c), s, request.AddToCart{
				ProductSlug: args[0],
				Quantity:    quantity,
				Attributes:  selection,
			})
			return printResult(cmd, s, result, err)
		},
	}
	addCmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "quantity to add")
	addCmd.Flags().StringArrayVarP(&attributes, "attr", "a", nil, "attribute selection as id=value[,value]")

	updateCmd := &cobra.Command{
		Use:   "update <line-id> <quantity>",
		Short: "Change the quantity of a cart line, use remove to drop it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "cart update")
			defer span.End()

			lineID, err := parseLineID(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.Atoi(args[1])
			if err != nil || quantity < 1 {
				return fmt.Errorf("quantity %q must be a number of at least 1, use cart remove to drop the line", args[1])
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			result, err := svc.Update(c, s, lineID, request.UpdateQuantity{Quantity: quantity})
			return printResult(cmd, s, result, err)
		},
	}

	removeCmd := &cobra.Command{
		Use:   "remove <line-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "cart remove")
			defer span.End()

			lineID, err := parseLineID(args[0])
			if err != nil {
				return err
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			result, err := svc.Remove(c, s, lineID)
			return printResult(cmd, s, result, err)
		},
	}

	cartCmd.AddCommand(addCmd, updateCmd, removeCmd)
	return cartCmd
}

func printResult(cmd *cobra.Command, s *shopper.Shopper, result response.Result, err error) error {
	if result.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
	}
	if err != nil {
		if result.Message != "" {
			cmd.SilenceErrors = true
			return err
		}
		return cli.Fail(err)
	}
	return cli.Print(cmd, s.Cart.Snapshot().View())
}

func parseLineID(raw string) (int64, error) {
	lineID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || lineID <= 0 {
		return 0, fmt.Errorf("line id %q must be a positive number", raw)
	}
	return lineID, nil
}
