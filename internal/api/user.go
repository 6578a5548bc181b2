package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Alturino/storefront/user/pkg/request"
	"github.com/Alturino/storefront/user/pkg/response"
)

// Login sends the credentials as entered; request.Login masks the password
// in its own JSON form.
func (cl *Client) Login(c context.Context, param request.Login) (response.Auth, error) {
	auth := response.Auth{}
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: param.Email, Password: param.Password}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/auth/login", body: body}, &auth)
	return auth, err
}

func (cl *Client) Register(c context.Context, param request.Register) (response.Auth, error) {
	auth := response.Auth{}
	body := struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}{param.Name, param.Email, param.Password, param.PasswordConfirmation}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/auth/register", body: body}, &auth)
	return auth, err
}

func (cl *Client) Me(c context.Context) (response.User, error) {
	user := response.User{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/auth/me"}, &user)
	return user, err
}

func (cl *Client) UpdateProfile(c context.Context, param request.UpdateProfile) (response.User, error) {
	user := response.User{}
	_, err := cl.do(c, call{method: http.MethodPut, path: "/api/auth/profile", body: param}, &user)
	return user, err
}

func (cl *Client) UploadAvatar(c context.Context, filename string, content io.Reader) (response.User, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	part, err := writer.CreateFormFile("avatar", filename)
	if err != nil {
		return response.User{}, fmt.Errorf("failed creating avatar form file with error=%w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return response.User{}, fmt.Errorf("failed copying avatar with error=%w", err)
	}
	if err := writer.Close(); err != nil {
		return response.User{}, fmt.Errorf("failed closing avatar form with error=%w", err)
	}

	user := response.User{}
	_, err = cl.do(c, call{
		method:      http.MethodPost,
		path:        "/api/auth/avatar",
		reader:      buf,
		contentType: writer.FormDataContentType(),
	}, &user)
	return user, err
}
