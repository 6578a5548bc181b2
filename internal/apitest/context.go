package apitest

import "context"

type routeKey struct{}

func withRoute(c context.Context, route string) context.Context {
	return context.WithValue(c, routeKey{}, route)
}

func routeFromContext(c context.Context) string {
	route, _ := c.Value(routeKey{}).(string)
	return route
}
