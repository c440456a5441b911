package navigation

import "testing"

func TestResolve(t *testing.T) {
	anonymous := Principal{}
	memberOnly := Principal{SignedIn: true}
	admin := Principal{SignedIn: true, Admin: true}

	cases := []struct {
		name     string
		route    Route
		who      Principal
		allowed  bool
		redirect Route
	}{
		{"home is public", RouteHome, anonymous, true, ""},
		{"faq is public", RouteFAQ, anonymous, true, ""},
		{"loyalty needs sign in", RouteLoyalty, anonymous, false, RouteLogin},
		{"booking needs sign in", RouteBooking, anonymous, false, RouteLogin},
		{"profile for member", RouteProfile, memberOnly, true, ""},
		{"admin for member goes home", RouteAdmin, memberOnly, false, RouteHome},
		{"admin for anonymous goes home", RouteAdmin, anonymous, false, RouteHome},
		{"admin for administrator", RouteAdmin, admin, true, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Resolve(tc.route, tc.who)
			if d.Allowed != tc.allowed || d.RedirectTo != tc.redirect {
				t.Fatalf("unexpected decision %+v", d)
			}
		})
	}
}

func TestParse(t *testing.T) {
	if r, ok := Parse(" Loyalty "); !ok || r != RouteLoyalty {
		t.Fatalf("expected loyalty, got %q %v", r, ok)
	}
	if r, ok := Parse("settings"); ok || r != RouteHome {
		t.Fatalf("expected unknown to fall back home, got %q %v", r, ok)
	}
	if len(Routes()) != 10 {
		t.Fatalf("expected 10 routes, got %d", len(Routes()))
	}
}
