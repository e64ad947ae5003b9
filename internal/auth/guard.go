package auth

// Decision is the outcome of a route-guard check.
type Decision struct {
	// Allow grants access to the requested view.
	Allow bool
	// ShowPlaceholder means initialization is still resolving; render a
	// neutral placeholder and re-evaluate once resolved.
	ShowPlaceholder bool
	// RedirectTo is set when access is denied.
	RedirectTo Route
}

// Guard gates protected views. When it bounces an anonymous visitor to
// sign-in it records the requested location so the next Login can return
// there instead of the default landing view.
type Guard struct {
	m *Manager
}

func NewGuard(m *Manager) *Guard {
	return &Guard{m: m}
}

func (g *Guard) Evaluate(requested Route) Decision {
	if g.m.Loading() {
		return Decision{ShowPlaceholder: true}
	}
	// Access requires a verified user, not just a token.
	if g.m.User() != nil {
		return Decision{Allow: true}
	}
	g.m.setReturnTarget(requested)
	return Decision{RedirectTo: RouteSignIn}
}
