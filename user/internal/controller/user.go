package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/response"
	"github.com/Alturino/storefront/internal/common/validate"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/shopper"
	inOtel "github.com/Alturino/storefront/user/internal/common/otel"
	"github.com/Alturino/storefront/user/internal/service"
	"github.com/Alturino/storefront/user/pkg/request"
)

const maxAvatarSize = 5 << 20

type UserController struct {
	service service.UserService
}

func AttachUserController(mux *mux.Router, svc service.UserService) {
	router := mux.PathPrefix("/auth").Subrouter()

	controller := UserController{service: svc}
	router.HandleFunc("/login", controller.Login).Methods(http.MethodPost)
	router.HandleFunc("/register", controller.Register).Methods(http.MethodPost)
	router.HandleFunc("/logout", controller.Logout).Methods(http.MethodPost)
	router.HandleFunc("/me", controller.Me).Methods(http.MethodGet)
	router.HandleFunc("/profile", controller.UpdateProfile).Methods(http.MethodPut)
	router.HandleFunc("/avatar", controller.UploadAvatar).Methods(http.MethodPost)
}

func (u UserController) Login(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Login")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Login").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.Login{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "logging in").Logger()
	user, err := u.service.Login(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed logging in with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Int64(log.KeyUserID, user.ID).Msg("logged in")

	response.WriteSuccess(c, w, "Welcome back, "+user.Name+".", map[string]interface{}{
		"user":  user,
		"token": s.Session.Token(),
	})
}

func (u UserController) Register(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Register")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Register").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.Register{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	logger = logger.With().Object(log.KeyRequestBody, reqBody).Logger()

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	logger = logger.With().Str(log.KeyProcess, "registering user").Logger()
	user, err := u.service.Register(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed registering user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}
	logger.Info().Int64(log.KeyUserID, user.ID).Msg("registered user")

	response.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "Your account has been created.",
		"data":       map[string]interface{}{"user": user, "token": s.Session.Token()},
	})
}

func (u UserController) Logout(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Logout")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Logout").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	if err := u.service.Logout(logger.WithContext(c), s); err != nil {
		err = fmt.Errorf("failed logging out with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusInternalServerError, "Could not log you out.")
		return
	}

	response.WriteSuccess(c, w, "You have been logged out.", map[string]interface{}{})
}

func (u UserController) Me(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController Me")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController Me").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	user, err := u.service.Me(logger.WithContext(c), s)
	if err != nil {
		err = fmt.Errorf("failed getting user with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "user found", map[string]interface{}{"user": user})
}

func (u UserController) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController UpdateProfile")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController UpdateProfile").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	reqBody := request.UpdateProfile{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.New().StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := u.service.UpdateProfile(logger.WithContext(c), s, reqBody)
	if err != nil {
		err = fmt.Errorf("failed updating profile with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "Profile updated.", map[string]interface{}{"user": user})
}

func (u UserController) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	c, span := inOtel.Tracer.Start(r.Context(), "UserController UploadAvatar")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserController UploadAvatar").Logger()

	s, ok := shopper.FromContext(c)
	if !ok {
		response.WriteFailed(c, w, http.StatusInternalServerError, "missing session")
		return
	}

	logger = logger.With().Str(log.KeyProcess, "reading avatar").Logger()
	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarSize)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		err = fmt.Errorf("failed reading avatar with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteFailed(c, w, http.StatusBadRequest, "Please choose an image to upload.")
		return
	}
	defer file.Close()
	logger = logger.With().Str("filename", header.Filename).Logger()

	user, err := u.service.UploadAvatar(logger.WithContext(c), s, header.Filename, file)
	if err != nil {
		err = fmt.Errorf("failed uploading avatar with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteError(c, w, err, api.UserMessage(err))
		return
	}

	response.WriteSuccess(c, w, "Avatar updated.", map[string]interface{}{"user": user})
}
