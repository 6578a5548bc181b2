package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"

	"github.com/Alturino/storefront/internal/cli"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/shopper"
	inOtel "github.com/Alturino/storefront/user/internal/common/otel"
	"github.com/Alturino/storefront/user/internal/controller"
	"github.com/Alturino/storefront/user/internal/service"
	"github.com/Alturino/storefront/user/pkg/request"
)

func AttachUserRoutes(router *mux.Router) {
	controller.AttachUserController(router, service.NewUserService())
	controller.AttachAddressController(router, service.NewAddressService())
}

// NewAuthCommands returns login, logout and whoami.
func NewAuthCommands(provide shopper.Provide) []*cobra.Command {
	svc := service.NewUserService()

	var email string
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in, the password is read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "login")
			defer span.End()

			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			password, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && password == "" {
				return fmt.Errorf("failed reading password with error=%w", err)
			}
			param := request.Login{Email: email, Password: strings.TrimRight(password, "\r\n")}
			if err := validate.New().StructCtx(c, param); err != nil {
				return fmt.Errorf("a valid --email and a password are required: %w", err)
			}

			s, err := provide(c)
			if err != nil {
				return err
			}
			user, err := svc.Login(c, s, param)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s.\n", user.Name)
			return nil
		},
	}
	loginCmd.Flags().StringVarP(&email, "email", "e", "", "account email")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "logout")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			if err := svc.Logout(c, s); err != nil {
				commonErrors.HandleError(err, span)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "You have been logged out.")
			return nil
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "whoami")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			user, err := svc.Me(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, user)
		},
	}

	avatarCmd := &cobra.Command{
		Use:   "avatar <image-file>",
		Short: "Upload a new avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "avatar")
			defer span.End()

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed opening avatar with error=%w", err)
			}
			defer file.Close()

			s, err := provide(c)
			if err != nil {
				return err
			}
			user, err := svc.UploadAvatar(c, s, filepath.Base(args[0]), file)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, user)
		},
	}

	return []*cobra.Command{loginCmd, logoutCmd, whoamiCmd, avatarCmd}
}

func NewAddressCommand(provide shopper.Provide) *cobra.Command {
	svc := service.NewAddressService()

	addressCmd := &cobra.Command{
		Use:   "addresses",
		Short: "List the shipping addresses",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "addresses list")
			defer span.End()

			s, err := provide(c)
			if err != nil {
				return err
			}
			addresses, err := svc.List(c, s)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, addresses)
		},
	}

	param := request.ShippingAddress{}
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Save a shipping address",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, span := inOtel.Tracer.Start(cmd.Context(), "addresses add")
			defer span.End()

			if err := validate.New().StructCtx(c, param); err != nil {
				return fmt.Errorf("invalid address: %w", err)
			}
			s, err := provide(c)
			if err != nil {
				return err
			}
			address, err := svc.Create(c, s, param)
			if err != nil {
				commonErrors.HandleError(err, span)
				return cli.Fail(err)
			}
			return cli.Print(cmd, address)
		},
	}
	addCmd.Flags().StringVar(&param.FullName, "name", "", "recipient name")
	addCmd.Flags().StringVar(&param.Phone, "phone", "", "recipient phone")
	addCmd.Flags().StringVar(&param.Line1, "line1", "", "street address")
	addCmd.Flags().StringVar(&param.Line2, "line2", "", "apartment, suite")
	addCmd.Flags().StringVar(&param.City, "city", "", "city")
	addCmd.Flags().StringVar(&param.State, "state", "", "state or region")
	addCmd.Flags().StringVar(&param.PostalCode, "postal-code", "", "postal code")
	addCmd.Flags().StringVar(&param.Country, "country", "", "ISO 3166 alpha-2 country code")
	addCmd.Flags().BoolVar(&param.IsDefault, "default", false, "use as the default address")

	addressCmd.AddCommand(addCmd)
	return addressCmd
}
