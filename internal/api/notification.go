package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Alturino/storefront/notification/pkg/request"
	"github.com/Alturino/storefront/notification/pkg/response"
)

func (cl *Client) ListDevices(c context.Context) ([]response.Device, error) {
	devices := []response.Device{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/user-devices"}, &devices)
	return devices, err
}

func (cl *Client) RegisterDevice(c context.Context, param request.RegisterDevice) (response.Device, error) {
	device := response.Device{}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/user-devices", body: param}, &device)
	return device, err
}

func (cl *Client) DeleteDevice(c context.Context, id int64) error {
	_, err := cl.do(c, call{method: http.MethodDelete, path: "/api/user-devices/" + strconv.FormatInt(id, 10)}, nil)
	return err
}

func (cl *Client) SaveFcmToken(c context.Context, param request.FcmToken) error {
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/fcm-token", body: param}, nil)
	return err
}

// NotificationSettings is the one call aborted on its own deadline.
func (cl *Client) NotificationSettings(c context.Context) (response.NotificationSettings, error) {
	c, cancel := context.WithTimeout(c, cl.notificationTimeout)
	defer cancel()

	settings := response.NotificationSettings{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/notification-settings"}, &settings)
	return settings, err
}
