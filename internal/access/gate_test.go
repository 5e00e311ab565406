package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/plateadmin/plateadmin/internal/auth"
)

func session(role, token string) *auth.Session {
	return &auth.Session{Role: role, Token: token, DisplayName: "User"}
}

func TestDecide_NoTokenAlwaysRedirectsToEntry(t *testing.T) {
	allowLists := [][]string{nil, {}, {"ADMIN"}, {"ADMIN", "USER"}}
	sessions := []*auth.Session{nil, session("ADMIN", ""), session("", "")}

	for _, sess := range sessions {
		for _, roles := range allowLists {
			d := Decide(sess, roles)
			assert.Equal(t, DenyUnauthenticated, d)
			assert.Equal(t, "/", d.Redirect())
		}
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		session  *auth.Session
		required []string
		want     Decision
	}{
		{"nil allow-list admits any session", session("user", "tok"), nil, Allow},
		{"empty allow-list admits any session", session("USER", "tok"), []string{}, Allow},
		{"empty allow-list admits roleless session", session("", "tok"), nil, Allow},
		{"matching role", session("ADMIN", "tok"), []string{"ADMIN"}, Allow},
		{"lowercase session role", session("admin", "tok"), []string{"ADMIN"}, Allow},
		{"lowercase allow-list", session("ADMIN", "tok"), []string{"admin"}, Allow},
		{"one of several", session("User", "tok"), []string{"ADMIN", "USER"}, Allow},
		{"user on admin route", session("user", "tok"), []string{"ADMIN"}, DenyUnauthorized},
		{"missing role fails closed", session("", "tok"), []string{"ADMIN", "USER"}, DenyUnauthorized},
		{"unknown role", session("EDITOR", "tok"), []string{"ADMIN", "USER"}, DenyUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.session, tt.required))
		})
	}
}

func TestDecision_Redirect(t *testing.T) {
	assert.Equal(t, "", Allow.Redirect())
	assert.Equal(t, "/", DenyUnauthenticated.Redirect())
	assert.Equal(t, "/unauthorized", DenyUnauthorized.Redirect())
	assert.Equal(t, "deny_unauthorized", DenyUnauthorized.String())
}

func TestDecide_ReevaluatesChangedSession(t *testing.T) {
	sess := session("ADMIN", "tok")
	assert.Equal(t, Allow, Decide(sess, []string{"ADMIN"}))

	// logout between navigations
	sess.Token = ""
	assert.Equal(t, DenyUnauthenticated, Decide(sess, []string{"ADMIN"}))
}

func TestNavLinks(t *testing.T) {
	paths := func(routes []Route) []string {
		var out []string
		for _, r := range routes {
			out = append(out, r.Path)
		}
		return out
	}

	staff := []string{"/dashboard", "/orders", "/category", "/products", "/customers"}
	assert.Equal(t, staff, paths(NavLinks(session("ADMIN", "tok"))))
	assert.Equal(t, staff, paths(NavLinks(session("user", "tok"))))
	assert.Empty(t, NavLinks(session("", "tok")))
	assert.Empty(t, NavLinks(nil))
}

func TestLookup(t *testing.T) {
	route, ok := Lookup("/products/new")
	assert.True(t, ok)
	assert.Equal(t, []string{"ADMIN"}, route.RequiredRoles)

	route, ok = Lookup("/profile")
	assert.True(t, ok)
	assert.Nil(t, route.RequiredRoles)

	_, ok = Lookup("/nope")
	assert.False(t, ok)
}

func TestRoleListsAreCopies(t *testing.T) {
	roles := AdminRoles()
	roles[0] = "USER"
	assert.Equal(t, []string{"ADMIN"}, AdminRoles())
}

func TestRouteTableCannotBeMutatedByCallers(t *testing.T) {
	route, ok := Lookup("/products/:id/edit")
	assert.True(t, ok)
	route.RequiredRoles[0] = "USER"

	again, _ := Lookup("/products/:id/edit")
	assert.Equal(t, []string{"ADMIN"}, again.RequiredRoles)
	assert.Equal(t, DenyUnauthorized, Decide(session("USER", "tok"), again.RequiredRoles))

	table := Routes()
	table[0].RequiredRoles[0] = "GUEST"
	table[1].Path = "/elsewhere"

	fresh := Routes()
	assert.Equal(t, []string{"ADMIN", "USER"}, fresh[0].RequiredRoles)
	assert.Equal(t, "/orders", fresh[1].Path)
	assert.Equal(t, Allow, Decide(session("USER", "tok"), fresh[0].RequiredRoles))

	links := NavLinks(session("ADMIN", "tok"))
	links[0].RequiredRoles[0] = "GUEST"
	assert.Equal(t, []string{"ADMIN", "USER"}, NavLinks(session("ADMIN", "tok"))[0].RequiredRoles)
}
