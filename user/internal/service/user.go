package service

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	"github.com/Alturino/storefront/internal/shopper"
	inOtel "github.com/Alturino/storefront/user/internal/common/otel"
	"github.com/Alturino/storefront/user/pkg/request"
	"github.com/Alturino/storefront/user/pkg/response"
)

type UserService struct{}

func NewUserService() UserService {
	return UserService{}
}

// Login signs the session in and reloads the stores, which the API may have
// merged with the anonymous cart.
func (u UserService) Login(c context.Context, s *shopper.Shopper, param request.Login) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	logger.Info().Msg("logging in")
	auth, err := s.Client.Login(c, param)
	if err != nil {
		err = fmt.Errorf("failed logging in email=%s with error=%w", param.Email, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Int64(log.KeyUserID, auth.User.ID).Msg("logged in")

	if err := u.signIn(logger.WithContext(c), s, auth); err != nil {
		commonErrors.HandleError(err, span)
		return response.User{}, err
	}
	return auth.User, nil
}

func (u UserService) Register(c context.Context, s *shopper.Shopper, param request.Register) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Register").
		Object(log.KeyRequestBody, param).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	logger.Info().Msg("registering user")
	auth, err := s.Client.Register(c, param)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Int64(log.KeyUserID, auth.User.ID).Msg("registered user")

	if err := u.signIn(logger.WithContext(c), s, auth); err != nil {
		commonErrors.HandleError(err, span)
		return response.User{}, err
	}
	return auth.User, nil
}

func (u UserService) Logout(c context.Context, s *shopper.Shopper) error {
	c, span := inOtel.Tracer.Start(c, "UserService Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Logout").
		Str(log.KeyProcess, "signing out").
		Logger()

	logger.Info().Msg("signing out")
	if err := s.Session.SignOut(c); err != nil {
		err = fmt.Errorf("failed signing out with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("signed out")

	u.reload(logger.WithContext(c), s)
	return nil
}

// Me fetches the signed-in user and refreshes the cached identity.
func (u UserService) Me(c context.Context, s *shopper.Shopper) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService Me")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService Me").
		Str(log.KeyProcess, "getting user").
		Logger()

	if err := requireAuth(s); err != nil {
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger.Trace().Msg("getting user")
	user, err := s.Client.Me(c)
	if err != nil {
		err = fmt.Errorf("failed getting user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Trace().Int64(log.KeyUserID, user.ID).Msg("got user")

	return user, u.updateIdentity(logger.WithContext(c), s, user)
}

func (u UserService) UpdateProfile(c context.Context, s *shopper.Shopper, param request.UpdateProfile) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService UpdateProfile")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService UpdateProfile").
		Str(log.KeyProcess, "updating profile").
		Logger()

	if err := requireAuth(s); err != nil {
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger.Info().Msg("updating profile")
	user, err := s.Client.UpdateProfile(c, param)
	if err != nil {
		err = fmt.Errorf("failed updating profile with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("updated profile")

	return user, u.updateIdentity(logger.WithContext(c), s, user)
}

func (u UserService) UploadAvatar(c context.Context, s *shopper.Shopper, filename string, content io.Reader) (response.User, error) {
	c, span := inOtel.Tracer.Start(c, "UserService UploadAvatar")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "UserService UploadAvatar").
		Str(log.KeyProcess, "uploading avatar").
		Str("filename", filename).
		Logger()

	if err := requireAuth(s); err != nil {
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return response.User{}, err
	}

	logger.Info().Msg("uploading avatar")
	user, err := s.Client.UploadAvatar(c, filename, content)
	if err != nil {
		err = fmt.Errorf("failed uploading avatar with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Str("avatar", user.Avatar).Msg("uploaded avatar")

	return user, u.updateIdentity(logger.WithContext(c), s, user)
}

func (u UserService) signIn(c context.Context, s *shopper.Shopper, auth response.Auth) error {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "signing in session").Logger()

	logger.Trace().Msg("signing in session")
	if err := s.Session.SignIn(c, auth.Token, identity(auth.User)); err != nil {
		err = fmt.Errorf("failed signing in session with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("signed in session")

	u.reload(logger.WithContext(c), s)
	return nil
}

// reload refreshes the stores after the credentials changed. A failed reload
// leaves the stores stale, not the session.
func (u UserService) reload(c context.Context, s *shopper.Shopper) {
	logger := zerolog.Ctx(c).With().Str(log.KeyProcess, "reloading stores").Logger()
	if err := s.Cart.Load(c); err != nil {
		logger.Warn().Err(err).Msg("failed reloading cart")
	}
	if err := s.Wishlist.Load(c); err != nil {
		logger.Warn().Err(err).Msg("failed reloading wishlist")
	}
}

func (u UserService) updateIdentity(c context.Context, s *shopper.Shopper, user response.User) error {
	if err := s.Session.UpdateUser(c, identity(user)); err != nil {
		err = fmt.Errorf("failed caching user with error=%w", err)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func requireAuth(s *shopper.Shopper) error {
	if !s.Session.State().Authenticated() {
		return fmt.Errorf("failed reading session with error=%w", commonErrors.ErrUnauthorized)
	}
	return nil
}

func identity(user response.User) *session.Identity {
	return &session.Identity{ID: user.ID, Name: user.Name, Email: user.Email, Avatar: user.Avatar}
}
