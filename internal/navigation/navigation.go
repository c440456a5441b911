// Package navigation decides which portal views a caller may open.
package navigation

import "strings"

// Route names a portal view.
type Route string

const (
	RouteHome     Route = "home"
	RouteServices Route = "services"
	RouteLoyalty  Route = "loyalty"
	RouteBooking  Route = "booking"
	RouteProfile  Route = "profile"
	RouteLogin    Route = "login"
	RouteSignup   Route = "signup"
	RouteFAQ      Route = "faq"
	RouteContact  Route = "contact"
	RouteAdmin    Route = "admin"
)

type access int

const (
	public access = iota
	memberOnly
	adminOnly
)

var routes = []struct {
	route  Route
	access access
}{
	{RouteHome, public},
	{RouteServices, public},
	{RouteLoyalty, memberOnly},
	{RouteBooking, memberOnly},
	{RouteProfile, memberOnly},
	{RouteLogin, public},
	{RouteSignup, public},
	{RouteFAQ, public},
	{RouteContact, public},
	{RouteAdmin, adminOnly},
}

// Routes lists every named view.
func Routes() []Route {
	out := make([]Route, len(routes))
	for i, r := range routes {
		out[i] = r.route
	}
	return out
}

// Parse resolves a route name. Unknown names fall back to home.
func Parse(s string) (Route, bool) {
	name := Route(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range routes {
		if r.route == name {
			return name, true
		}
	}
	return RouteHome, false
}

// Principal is what the server knows about the caller.
type Principal struct {
	SignedIn bool
	Admin    bool
}

// Decision is the outcome of Resolve. When Allowed is false the caller is
// sent to RedirectTo.
type Decision struct {
	Route      Route `json:"route"`
	Allowed    bool  `json:"allowed"`
	RedirectTo Route `json:"redirect_to,omitempty"`
}

// Resolve gates a route for p. Member views require a signed-in profile;
// the admin view requires the admin role and sends everyone else home.
func Resolve(route Route, p Principal) Decision {
	level := public
	for _, r := range routes {
		if r.route == route {
			level = r.access
			break
		}
	}
	switch {
	case level == memberOnly && !p.SignedIn:
		return Decision{Route: route, RedirectTo: RouteLogin}
	case level == adminOnly && !p.Admin:
		return Decision{Route: route, RedirectTo: RouteHome}
	}
	return Decision{Route: route, Allowed: true}
}
