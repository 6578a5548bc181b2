package cmd

import (
	"fmt"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/cli"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/shopper"
	"github.com/Alturino/storefront/order/internal/common/otel"
	"github.com/Alturino/storefront/order/internal/controller"
	"github.com/Alturino/storefront/order/internal/service"
	"github.com/Alturino/storefront/order/pkg/request"
)

func AttachOrderRoutes(router *mux.Router) {
	controller.AttachOrderController(router, service.NewOrderService())
}

func NewCheckoutCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewOrderService()

	var (
		coupon  string
		place   bool
		address int64
		method  string
		notes   string
	)
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Summarize the cart for checkout, --place submits the order",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "checkout")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			if !place {
				checkout, _, err := svc.Summary(c, s, request.Checkout{CouponCode: coupon})
				if err != nil {
					commonErrors.HandleError(err, span)
					return cli.Fail(err)
				}
				return cli.Print(cmd, checkout)
			}

			param := request.CreateOrder{
				ShippingAddressID: address,
				PaymentMethod:     method,
				CouponCode:        coupon,
				Notes:             notes,
			}
			if err := validate.New().StructCtx(c, param); err != nil {
				return fmt.Errorf("--address and --payment are required to place the order: %w", err)
			}
			checkout, err := svc.Place(c, s, param)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Order %s placed.\n", checkout.Order.OrderNumber)
			return cli.Print(cmd, checkout.Order)
		},
	}
	checkoutCmd.Flags().StringVar(&coupon, "coupon", "", "coupon code")
	checkoutCmd.Flags().BoolVar(&place, "place", false, "place the order")
	checkoutCmd.Flags().Int64Var(&address, "address", 0, "shipping address id")
	checkoutCmd.Flags().StringVar(&method, "payment", "cod", "payment method")
	checkoutCmd.Flags().StringVar(&notes, "notes", "", "order notes")
	return checkoutCmd
}

func NewOrderCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewOrderService()

	orderCmd := &cobra.Command{
		Use:   "orders",
		Short: "Look up orders",
	}

	showCmd := &cobra.Command{
		Use:   "show <order-id>",
		Short: "Show one order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "orders show")
			defer span.End()

			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || orderID <= 0 {
				return fmt.Errorf("order id %q must be a positive number", args[0])
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			order, err := svc.FindOrder(c, s, request.FindOrderById{OrderId: orderID})
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, order)
		},
	}

	paymentCmd := &cobra.Command{
		Use:   "payment-methods",
		Short: "List the enabled payment methods",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "orders payment-methods")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			methods, err := svc.PaymentMethods(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, methods)
		},
	}

	orderCmd.AddCommand(showCmd, paymentCmd)
	return orderCmd
}
