// Package guard decides where an in-app navigation may go given the caller's
// session and role flags.
//
// Rules are evaluated top to bottom and the first rule whose Match reports
// true produces the decision. Any failure while resolving the caller sends
// them to the login page; a privilege shortfall sends them to the dashboard,
// never to the admin area.
package guard

import (
	"context"
	"strings"

	"propertydesk/internal/model"
	"propertydesk/internal/session"
)

const (
	LoginPath     = "/auth/login"
	DashboardPath = "/dashboard"
	AdminPath     = "/admin"

	authPrefix = "/auth/"
)

type Outcome string

const (
	OutcomeAllow    Outcome = "allow"
	OutcomeRedirect Outcome = "redirect"
)

type Decision struct {
	Outcome    Outcome `json:"decision"`
	RedirectTo string  `json:"redirect_to,omitempty"`
	Rule       string  `json:"rule"`
}

func (d Decision) Allowed() bool { return d.Outcome == OutcomeAllow }

// Input is everything a rule may look at. Session is nil when the caller is
// not authenticated.
type Input struct {
	Path    string
	Session *session.Session
}

// ProfileLookup returns nil, nil when the user has no profile.
type ProfileLookup interface {
	FindByID(ctx context.Context, userID string) (*model.Profile, error)
}

type Rule struct {
	Name   string
	Match  func(in Input) bool
	Decide func(ctx context.Context, in Input, profiles ProfileLookup) Decision
}

var NoSessionOnProtected = Rule{
	Name: "no-session-protected",
	Match: func(in Input) bool {
		return in.Session == nil && isProtected(in.Path)
	},
	Decide: func(context.Context, Input, ProfileLookup) Decision {
		return redirect("no-session-protected", LoginPath)
	},
}

var SessionOnAuthPage = Rule{
	Name: "session-on-auth-page",
	Match: func(in Input) bool {
		return in.Session != nil && strings.HasPrefix(in.Path, authPrefix)
	},
	Decide: decideLanding,
}

// SessionOnAdmin keeps authenticated users without super_admin out of the
// admin area.
var SessionOnAdmin = Rule{
	Name: "session-on-admin",
	Match: func(in Input) bool {
		return in.Session != nil && strings.HasPrefix(in.Path, AdminPath)
	},
	Decide: decideAdmin,
}

var Fallthrough = Rule{
	Name:  "allow",
	Match: func(Input) bool { return true },
	Decide: func(context.Context, Input, ProfileLookup) Decision {
		return Decision{Outcome: OutcomeAllow, Rule: "allow"}
	},
}

// DefaultRules is the navigation policy of the application.
var DefaultRules = []Rule{NoSessionOnProtected, SessionOnAuthPage, SessionOnAdmin, Fallthrough}

type Guard struct {
	rules    []Rule
	profiles ProfileLookup
}

func New(profiles ProfileLookup, rules ...Rule) *Guard {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Guard{rules: rules, profiles: profiles}
}

func (g *Guard) Evaluate(ctx context.Context, in Input) Decision {
	for _, rule := range g.rules {
		if rule.Match(in) {
			return rule.Decide(ctx, in, g.profiles)
		}
	}
	return Decision{Outcome: OutcomeAllow, Rule: "allow"}
}

func decideLanding(ctx context.Context, in Input, profiles ProfileLookup) Decision {
	const name = "session-on-auth-page"

	profile := resolveProfile(ctx, in, profiles)
	if profile == nil {
		return redirect(name, LoginPath)
	}

	target := DashboardPath
	if profile.SuperAdmin {
		target = AdminPath
	}
	if strings.HasPrefix(in.Path, AdminPath) && !profile.SuperAdmin {
		return redirect(name, DashboardPath)
	}
	if in.Path != target {
		return redirect(name, target)
	}
	return Decision{Outcome: OutcomeAllow, Rule: name}
}

func decideAdmin(ctx context.Context, in Input, profiles ProfileLookup) Decision {
	const name = "session-on-admin"

	profile := resolveProfile(ctx, in, profiles)
	if profile == nil {
		return redirect(name, LoginPath)
	}
	if !profile.SuperAdmin {
		return redirect(name, DashboardPath)
	}
	return Decision{Outcome: OutcomeAllow, Rule: name}
}

// resolveProfile fails closed: an empty user id, a lookup error and a missing
// profile all yield nil.
func resolveProfile(ctx context.Context, in Input, profiles ProfileLookup) *model.Profile {
	userID := strings.TrimSpace(in.Session.UserID)
	if userID == "" || profiles == nil {
		return nil
	}
	profile, err := profiles.FindByID(ctx, userID)
	if err != nil {
		return nil
	}
	return profile
}

func isProtected(path string) bool {
	return strings.HasPrefix(path, DashboardPath) || strings.HasPrefix(path, AdminPath)
}

func redirect(rule, to string) Decision {
	return Decision{Outcome: OutcomeRedirect, RedirectTo: to, Rule: rule}
}
