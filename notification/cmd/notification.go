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
	"github.com/Alturino/storefront/notification/internal/common/otel"
	"github.com/Alturino/storefront/notification/internal/controller"
	"github.com/Alturino/storefront/notification/internal/service"
	"github.com/Alturino/storefront/notification/pkg/request"
)

func AttachNotificationRoutes(router *mux.Router) {
	controller.AttachNotificationController(router, service.NewNotificationService())
}

func NewDeviceCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewNotificationService()

	deviceCmd := &cobra.Command{
		Use:   "devices",
		Short: "List the devices registered for push notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "devices list")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			devices, err := svc.Devices(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, devices)
		},
	}

	param := request.RegisterDevice{}
	registerCmd := &cobra.Command{
		Use:   "register <device-token>",
		Short: "Register a device token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "devices register")
			defer span.End()

			param.DeviceToken = args[0]
			if err := validate.New().StructCtx(c, param); err != nil {
				return fmt.Errorf("invalid device: %w", err)
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			device, err := svc.RegisterDevice(c, s, param)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, device)
		},
	}
	registerCmd.Flags().StringVar(&param.Platform, "platform", "web", "android, ios or web")
	registerCmd.Flags().StringVar(&param.Name, "name", "", "device name")

	removeCmd := &cobra.Command{
		Use:   "remove <device-id>",
		Short: "Remove a registered device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "devices remove")
			defer span.End()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("device id %q must be a number", args[0])
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			if err := svc.DeleteDevice(c, s, id); err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Device removed.")
			return nil
		},
	}

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the push notification settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := otel.Tracer.Start(cmd.Context(), "devices settings")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			settings, err := svc.Settings(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, settings)
		},
	}

	deviceCmd.AddCommand(registerCmd, removeCmd, settingsCmd)
	return deviceCmd
}
