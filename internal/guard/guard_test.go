package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"propertydesk/internal/model"
	"propertydesk/internal/session"
)

type stubProfiles struct {
	profile *model.Profile
	err     error
	calls   int
}

func (s *stubProfiles) FindByID(_ context.Context, _ string) (*model.Profile, error) {
	s.calls++
	return s.profile, s.err
}

func withSession(userID string) *session.Session {
	return &session.Session{Token: "t", UserID: userID}
}

func TestNoSessionProtectedPathsGoToLogin(t *testing.T) {
	g := New(&stubProfiles{})
	for _, path := range []string{"/dashboard", "/dashboard/properties/42", "/admin", "/admin/agents", "/dashboards"} {
		d := g.Evaluate(context.Background(), Input{Path: path})
		assert.Equal(t, OutcomeRedirect, d.Outcome, path)
		assert.Equal(t, LoginPath, d.RedirectTo, path)
	}
}

func TestNoSessionPublicPathsAllowed(t *testing.T) {
	g := New(&stubProfiles{})
	for _, path := range []string{"/", "/auth/login", "/auth/register", "/pricing"} {
		assert.True(t, g.Evaluate(context.Background(), Input{Path: path}).Allowed(), path)
	}
}

func TestSessionOnAuthPage(t *testing.T) {
	tests := []struct {
		name     string
		userID   string
		profiles *stubProfiles
		path     string
		want     string
	}{
		{name: "super admin lands on admin", userID: "u", profiles: &stubProfiles{profile: &model.Profile{ID: "u", SuperAdmin: true}}, path: "/auth/login", want: AdminPath},
		{name: "plain user lands on dashboard", userID: "u", profiles: &stubProfiles{profile: &model.Profile{ID: "u"}}, path: "/auth/register", want: DashboardPath},
		{name: "is_admin alone is not super admin", userID: "u", profiles: &stubProfiles{profile: &model.Profile{ID: "u", IsAdmin: true}}, path: "/auth/login", want: DashboardPath},
		{name: "empty user id fails closed", userID: "  ", profiles: &stubProfiles{profile: &model.Profile{ID: "u", SuperAdmin: true}}, path: "/auth/login", want: LoginPath},
		{name: "profile error fails closed", userID: "u", profiles: &stubProfiles{err: errors.New("db down")}, path: "/auth/login", want: LoginPath},
		{name: "missing profile fails closed", userID: "u", profiles: &stubProfiles{}, path: "/auth/login", want: LoginPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.profiles).Evaluate(context.Background(), Input{Path: tt.path, Session: withSession(tt.userID)})
			assert.Equal(t, OutcomeRedirect, d.Outcome)
			assert.Equal(t, tt.want, d.RedirectTo)
			assert.Equal(t, "session-on-auth-page", d.Rule)
		})
	}
}

func TestEmptyUserIDSkipsProfileLookup(t *testing.T) {
	profiles := &stubProfiles{profile: &model.Profile{SuperAdmin: true}}
	New(profiles).Evaluate(context.Background(), Input{Path: "/auth/login", Session: withSession("")})
	assert.Zero(t, profiles.calls)
}

func TestSessionOutsideAuthAndAdminAllowed(t *testing.T) {
	profiles := &stubProfiles{profile: &model.Profile{ID: "u"}}
	g := New(profiles)
	for _, path := range []string{"/dashboard", "/dashboard/properties", "/", "/auth"} {
		assert.True(t, g.Evaluate(context.Background(), Input{Path: path, Session: withSession("u")}).Allowed(), path)
	}
	assert.Zero(t, profiles.calls)
}

func TestSessionOnAdmin(t *testing.T) {
	plain := &model.Profile{ID: "u"}
	super := &model.Profile{ID: "u", SuperAdmin: true}
	tests := []struct {
		name     string
		userID   string
		profiles *stubProfiles
		path     string
		allowed  bool
		want     string
	}{
		{name: "plain user on admin", userID: "u", profiles: &stubProfiles{profile: plain}, path: "/admin", want: DashboardPath},
		{name: "plain user on admin agents", userID: "u", profiles: &stubProfiles{profile: plain}, path: "/admin/agents", want: DashboardPath},
		{name: "plain user on admin users", userID: "u", profiles: &stubProfiles{profile: plain}, path: "/admin/users/42", want: DashboardPath},
		{name: "empty user id", userID: "", profiles: &stubProfiles{profile: super}, path: "/admin", want: LoginPath},
		{name: "lookup error", userID: "u", profiles: &stubProfiles{err: errors.New("db down")}, path: "/admin/agents", want: LoginPath},
		{name: "no profile", userID: "u", profiles: &stubProfiles{}, path: "/admin", want: LoginPath},
		{name: "super admin", userID: "u", profiles: &stubProfiles{profile: super}, path: "/admin/agents", allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(tt.profiles).Evaluate(context.Background(), Input{Path: tt.path, Session: withSession(tt.userID)})
			assert.Equal(t, "session-on-admin", d.Rule)
			if tt.allowed {
				assert.True(t, d.Allowed())
				return
			}
			assert.Equal(t, OutcomeRedirect, d.Outcome)
			assert.Equal(t, tt.want, d.RedirectTo)
		})
	}
}

func TestNonSuperAdminNeverAllowedOnAdminFromLanding(t *testing.T) {
	profiles := &stubProfiles{profile: &model.Profile{ID: "u"}}
	d := decideLanding(context.Background(), Input{Path: "/admin/agents", Session: withSession("u")}, profiles)
	assert.Equal(t, OutcomeRedirect, d.Outcome)
	assert.Equal(t, DashboardPath, d.RedirectTo)

	admin := &stubProfiles{profile: &model.Profile{ID: "u", SuperAdmin: true}}
	d = decideLanding(context.Background(), Input{Path: AdminPath, Session: withSession("u")}, admin)
	assert.True(t, d.Allowed())
}

func TestRulesMatchInIsolation(t *testing.T) {
	assert.True(t, NoSessionOnProtected.Match(Input{Path: "/admin"}))
	assert.False(t, NoSessionOnProtected.Match(Input{Path: "/admin", Session: withSession("u")}))
	assert.True(t, SessionOnAuthPage.Match(Input{Path: "/auth/login", Session: withSession("u")}))
	assert.False(t, SessionOnAuthPage.Match(Input{Path: "/auth/login"}))
	assert.True(t, SessionOnAdmin.Match(Input{Path: "/admin/agents", Session: withSession("u")}))
	assert.False(t, SessionOnAdmin.Match(Input{Path: "/admin"}))
	assert.False(t, SessionOnAdmin.Match(Input{Path: "/dashboard", Session: withSession("u")}))
	assert.True(t, Fallthrough.Match(Input{}))
}

func TestCustomRuleOrderFirstMatchWins(t *testing.T) {
	deny := Rule{
		Name:  "maintenance",
		Match: func(Input) bool { return true },
		Decide: func(context.Context, Input, ProfileLookup) Decision {
			return redirect("maintenance", "/maintenance")
		},
	}
	g := New(nil, deny, NoSessionOnProtected)
	d := g.Evaluate(context.Background(), Input{Path: "/dashboard"})
	assert.Equal(t, "/maintenance", d.RedirectTo)
}

func TestNilProfileLookupFailsClosed(t *testing.T) {
	d := New(nil).Evaluate(context.Background(), Input{Path: "/auth/login", Session: withSession("u")})
	assert.Equal(t, LoginPath, d.RedirectTo)
}
