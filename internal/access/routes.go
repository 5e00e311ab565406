package access

import (
	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/models"
)

var (
	staffRoles = []string{models.RoleAdmin, models.RoleUser}
	adminRoles = []string{models.RoleAdmin}
)

// Route is a guarded dashboard destination
type Route struct {
	Path          string   `json:"path"`
	Title         string   `json:"title"`
	RequiredRoles []string `json:"required_roles"` // nil = any authenticated session
	InNav         bool     `json:"-"`
}

// routes is the guarded page table. Paths use gin's parameter syntax.
var routes = []Route{
	{Path: "/dashboard", Title: "Dashboard", RequiredRoles: staffRoles, InNav: true},
	{Path: "/orders", Title: "Orders", RequiredRoles: staffRoles, InNav: true},
	{Path: "/category", Title: "Category", RequiredRoles: staffRoles, InNav: true},
	{Path: "/category/new", Title: "Add Category", RequiredRoles: staffRoles},
	{Path: "/category/:id/edit", Title: "Edit Category", RequiredRoles: staffRoles},
	{Path: "/products", Title: "Products", RequiredRoles: staffRoles, InNav: true},
	{Path: "/products/new", Title: "Add Product", RequiredRoles: adminRoles},
	{Path: "/products/:id/edit", Title: "Edit Product", RequiredRoles: adminRoles},
	{Path: "/customers", Title: "Customers", RequiredRoles: staffRoles, InNav: true},
	{Path: "/profile", Title: "Profile"},
}

// clone returns r with its own copy of RequiredRoles, keeping nil as nil
func (r Route) clone() Route {
	if r.RequiredRoles != nil {
		r.RequiredRoles = append([]string{}, r.RequiredRoles...)
	}
	return r
}

// Routes returns a copy of the guarded page table
func Routes() []Route {
	out := make([]Route, len(routes))
	for i, route := range routes {
		out[i] = route.clone()
	}
	return out
}

// Lookup returns a copy of the route registered for path
func Lookup(path string) (Route, bool) {
	for _, route := range routes {
		if route.Path == path {
			return route.clone(), true
		}
	}
	return Route{}, false
}

// NavLinks lists the navigation entries the session is allowed to open
func NavLinks(session *auth.Session) []Route {
	links := make([]Route, 0, len(routes))
	for _, route := range routes {
		if !route.InNav {
			continue
		}
		if Decide(session, route.RequiredRoles) == Allow {
			links = append(links, route.clone())
		}
	}
	return links
}

// StaffRoles returns the allow-list shared by every signed-in dashboard role
func StaffRoles() []string {
	return append([]string(nil), staffRoles...)
}

// AdminRoles returns the admin-only allow-list
func AdminRoles() []string {
	return append([]string(nil), adminRoles...)
}
