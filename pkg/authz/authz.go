package authz

import (
	"fmt"

	"autotasking/pkg/config"
	"autotasking/pkg/session"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("authz", fx.Provide(NewEnforcer))

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && keyMatch2(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

// defaultPolicies is the route table per role. Objects are gin route paths.
var defaultPolicies = [][]string{
	{session.RoleIntern, "/api/daily-tasks", "POST"},
	{session.RoleIntern, "/api/tasks", "POST"},
	{session.RoleIntern, "/api/destinations", "GET"},
	{session.RoleIntern, "/api/reddit-prompt", "POST"},
	{session.RoleIntern, "/api/reddit-status", "*"},
	{session.RoleIntern, "/api/facebook-status", "*"},
	{session.RoleIntern, "/api/youtube-status", "*"},
	{session.RoleIntern, "/api/youtube-videos", "*"},

	{session.RoleAdmin, "/api/destinations", "*"},
	{session.RoleAdmin, "/api/reddit-prompt", "POST"},
	{session.RoleAdmin, "/api/youtube-videos", "*"},
	{session.RoleAdmin, "/api/interns", "*"},
	{session.RoleAdmin, "/api/admin-summary", "GET"},
}

// NewEnforcer loads ACCESS_CONTROL.MODEL and POLICY when both are set and
// falls back to the built-in route table otherwise.
func NewEnforcer(cfg *config.Config) (*casbin.Enforcer, error) {
	ac := cfg.AccessControl
	if ac.Model != "" && ac.Policy != "" {
		e, err := casbin.NewEnforcer(ac.Model, ac.Policy)
		if err != nil {
			return nil, fmt.Errorf("load access control: %w", err)
		}
		zap.L().Info("access control loaded from files", zap.String("model", ac.Model), zap.String("policy", ac.Policy))
		return e, nil
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("parse access model: %w", err)
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create enforcer: %w", err)
	}

	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("add policies: %w", err)
	}
	return e, nil
}
