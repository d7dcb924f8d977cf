// Package routes registers grouped HTTP routes on a ServeMux.
package routes

import (
	"net/http"

	"github.com/JaimeStill/cookbook/pkg/middleware"
)

// Route binds an HTTP method and pattern to a handler.
// Protected routes require a signed-in caller.
type Route struct {
	Method    string
	Pattern   string
	Handler   http.HandlerFunc
	Protected bool
}

// Group organizes routes under a common prefix.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register adds all routes from the given groups to the mux.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, group := range groups {
		registerGroup(mux, "", group)
	}
}

// Patterns returns the fully qualified mux pattern of every route in groups.
func Patterns(groups ...Group) []string {
	var out []string
	for _, group := range groups {
		out = collect(out, "", group)
	}
	return out
}

func registerGroup(mux *http.ServeMux, parentPrefix string, group Group) {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		handler := route.Handler
		if route.Protected {
			handler = middleware.RequireAuth(handler)
		}
		mux.HandleFunc(route.pattern(fullPrefix), handler)
	}
	for _, child := range group.Children {
		registerGroup(mux, fullPrefix, child)
	}
}

func collect(out []string, parentPrefix string, group Group) []string {
	fullPrefix := parentPrefix + group.Prefix
	for _, route := range group.Routes {
		out = append(out, route.pattern(fullPrefix))
	}
	for _, child := range group.Children {
		out = collect(out, fullPrefix, child)
	}
	return out
}

func (r Route) pattern(prefix string) string {
	return r.Method + " " + prefix + r.Pattern
}
