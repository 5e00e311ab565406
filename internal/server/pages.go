package server

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/plateadmin/plateadmin/internal/access"
	"github.com/plateadmin/plateadmin/internal/auth"
	"github.com/plateadmin/plateadmin/internal/inventory"
	"github.com/plateadmin/plateadmin/internal/models"
	"github.com/plateadmin/plateadmin/internal/orders"
	"github.com/plateadmin/plateadmin/internal/table"
	"github.com/plateadmin/plateadmin/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

// homePath is where a successful login lands
const homePath = "/dashboard"

type statCard struct {
	Label string
	Value string
}

type pageAction struct {
	Label       string
	URL         string
	Post        bool
	NeedsReason bool
}

// pageData is handed to every page template
type pageData struct {
	Title      string
	Session    *auth.Session
	Nav        []NavLink
	Active     string
	Query      string
	Error      string
	Notice     string
	Stats      []statCard
	Actions    []pageAction
	Tables     []table.View
	RowActions [][]pageAction // parallel to the first table's rows
	Product    ProductRequest
	Category   CategoryRequest
	Categories []models.Category
	Profile    *UserDetail
	Token      string
	FormAction string
}

// setupPages registers the HTML pages. Gated pages come from the access route
// table so the sidebar and the router cannot disagree.
func (s *Server) setupPages() error {
	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse page templates: %w", err)
	}
	s.router.SetHTMLTemplate(tmpl)

	s.router.GET("/", s.loginPage)
	s.router.POST("/", s.loginSubmit)
	s.router.GET("/forgot-password", s.forgotPasswordPage)
	s.router.POST("/forgot-password", s.forgotPasswordSubmit)
	s.router.GET("/reset-password", s.resetPasswordPage)
	s.router.POST("/reset-password", s.resetPasswordSubmit)
	s.router.GET("/unauthorized", s.unauthorizedPage)
	s.router.GET("/logout", s.logoutPage)

	handlers := map[string]gin.HandlerFunc{
		"/dashboard":         s.dashboardPage,
		"/orders":            s.ordersPage,
		"/category":          s.categoriesPage,
		"/category/new":      s.categoryFormPage,
		"/category/:id/edit": s.categoryFormPage,
		"/products":          s.productsPage,
		"/products/new":      s.productFormPage,
		"/products/:id/edit": s.productFormPage,
		"/customers":         s.customersPage,
		"/profile":           s.profilePage,
	}

	for _, route := range access.Routes() {
		handler, ok := handlers[route.Path]
		if !ok {
			return fmt.Errorf("no page handler for route %s", route.Path)
		}
		s.router.GET(route.Path, RequireRoles(s.logger, route.RequiredRoles...), handler)
	}

	// Form posts share the allow-list of the page they are submitted from
	posts := []struct {
		page, path string
		handler    gin.HandlerFunc
	}{
		{"/products/new", "/products/new", s.productFormSubmit},
		{"/products/:id/edit", "/products/:id/edit", s.productFormSubmit},
		{"/products/:id/edit", "/products/:id/delete", s.productDeleteSubmit},
		{"/category/new", "/category/new", s.categoryFormSubmit},
		{"/category/:id/edit", "/category/:id/edit", s.categoryFormSubmit},
		{"/category/:id/edit", "/category/:id/delete", s.categoryDeleteSubmit},
		{"/orders", "/orders/:id/:action", s.orderActionSubmit},
		{"/profile", "/profile", s.profileSubmit},
	}
	for _, post := range posts {
		route, ok := access.Lookup(post.page)
		if !ok {
			return fmt.Errorf("no route for page %s", post.page)
		}
		s.router.POST(post.path, RequireRoles(s.logger, route.RequiredRoles...), post.handler)
	}

	return nil
}

// render fills the session-derived fields and writes the template
func (s *Server) render(c *gin.Context, status int, name string, data pageData) {
	data.Session = GetSession(c)
	if data.Session.Authenticated() {
		data.Nav = navLinks(c)
	}
	data.Active = c.FullPath()
	c.HTML(status, name, data)
}

// renderFailure logs err and shows a generic error on the page
func (s *Server) renderFailure(c *gin.Context, err error, message string) {
	s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	s.render(c, http.StatusInternalServerError, "error.html", pageData{
		Title: "Something went wrong",
		Error: message,
	})
}

func (s *Server) notFound(c *gin.Context) {
	if isAPIRequest(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	s.render(c, http.StatusNotFound, "not_found.html", pageData{Title: "Page not found"})
}

func (s *Server) loginPage(c *gin.Context) {
	if GetSession(c).Authenticated() {
		c.Redirect(http.StatusFound, homePath)
		return
	}
	s.render(c, http.StatusOK, "login.html", pageData{Title: "Sign in"})
}

func (s *Server) loginSubmit(c *gin.Context) {
	var req LoginRequest
	_ = c.ShouldBind(&req)

	if err := validateLogin(req); err != nil {
		s.render(c, http.StatusBadRequest, "login.html", pageData{Title: "Sign in", Error: err.Error()})
		return
	}

	user, token, err := s.authenticate(req)
	if err != nil {
		if errors.Is(err, errBadCredentials) {
			s.render(c, http.StatusUnauthorized, "login.html", pageData{Title: "Sign in", Error: err.Error()})
			return
		}
		s.renderFailure(c, err, "Login failed")
		return
	}

	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User logged in")

	s.setSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, homePath)
}

func (s *Server) logoutPage(c *gin.Context) {
	if session := GetSession(c); session != nil {
		s.logger.Info().Str("user_id", session.UserID).Msg("User logged out")
	}
	s.clearSessionCookie(c)
	c.Redirect(http.StatusFound, access.EntryPath)
}

func (s *Server) unauthorizedPage(c *gin.Context) {
	s.render(c, http.StatusForbidden, "unauthorized.html", pageData{Title: "Unauthorized"})
}

func (s *Server) forgotPasswordPage(c *gin.Context) {
	s.render(c, http.StatusOK, "forgot_password.html", pageData{Title: "Forgot password"})
}

func (s *Server) forgotPasswordSubmit(c *gin.Context) {
	var req ForgotPasswordRequest
	_ = c.ShouldBind(&req)

	if strings.TrimSpace(req.Email) == "" {
		s.render(c, http.StatusBadRequest, "forgot_password.html", pageData{
			Title: "Forgot password",
			Error: "Please enter your email address",
		})
		return
	}
	if !strings.Contains(req.Email, "@") {
		s.render(c, http.StatusBadRequest, "forgot_password.html", pageData{
			Title: "Forgot password",
			Error: errInvalidEmail.Error(),
		})
		return
	}

	if err := s.requestPasswordReset(req.Email); err != nil {
		s.renderFailure(c, err, "Failed to send reset link")
		return
	}

	s.render(c, http.StatusOK, "forgot_password.html", pageData{
		Title:  "Forgot password",
		Notice: "Reset link sent to your email!",
	})
}

func (s *Server) resetPasswordPage(c *gin.Context) {
	s.render(c, http.StatusOK, "reset_password.html", pageData{
		Title: "Reset password",
		Token: c.Query("token"),
	})
}

func (s *Server) resetPasswordSubmit(c *gin.Context) {
	var req ResetPasswordRequest
	_ = c.ShouldBind(&req)

	if err := s.applyPasswordReset(req); err != nil {
		if isResetInputError(err) {
			s.render(c, http.StatusBadRequest, "reset_password.html", pageData{
				Title: "Reset password",
				Token: req.Token,
				Error: err.Error(),
			})
			return
		}
		s.renderFailure(c, err, "Failed to reset password")
		return
	}

	s.render(c, http.StatusOK, "login.html", pageData{
		Title:  "Sign in",
		Notice: "Password reset successfully!",
	})
}

func (s *Server) dashboardPage(c *gin.Context) {
	dashboard, err := s.buildDashboard()
	if err != nil {
		s.renderFailure(c, err, "Failed to build dashboard")
		return
	}

	s.render(c, http.StatusOK, "dashboard.html", pageData{
		Title: "Dashboard",
		Stats: []statCard{
			{"Total Orders", strconv.Itoa(dashboard.Orders.Total)},
			{"Revenue", views.FormatAmount(dashboard.Orders.Revenue)},
			{"Customers", strconv.FormatInt(dashboard.TotalCustomers, 10)},
			{"Products", strconv.Itoa(dashboard.Products.Total)},
			{"Pending Orders", strconv.Itoa(dashboard.Orders.Pending)},
			{"Delivered Orders", strconv.Itoa(dashboard.Orders.Delivered)},
			{"Customer Satisfaction", fmt.Sprintf("%.1f", dashboard.CustomerSatisfaction)},
		},
		Tables: []table.View{
			table.Build("Recent Orders", views.Orders, dashboard.RecentOrders),
			table.Build("Popular Products", views.Products, dashboard.PopularProducts),
		},
	})
}

func (s *Server) ordersPage(c *gin.Context) {
	query := c.Query("q")
	all, list, err := s.loadOrders(query, c.Query("status"))
	if err != nil {
		s.renderFailure(c, err, "Failed to list orders")
		return
	}

	stats := orders.Summarize(all)

	rowActions := make([][]pageAction, len(list))
	for i, order := range list {
		for _, action := range orders.Available(order.Status) {
			rowActions[i] = append(rowActions[i], pageAction{
				Label:       strings.ToUpper(action[:1]) + action[1:],
				URL:         fmt.Sprintf("/orders/%s/%s", order.ID, action),
				Post:        true,
				NeedsReason: action == orders.ActionReject,
			})
		}
	}

	s.render(c, http.StatusOK, "table.html", pageData{
		Title: "Orders",
		Query: query,
		Stats: []statCard{
			{"Total Orders", strconv.Itoa(stats.Total)},
			{"Pending", strconv.Itoa(stats.Pending)},
			{"Shipped", strconv.Itoa(stats.Shipped)},
			{"Delivered", strconv.Itoa(stats.Delivered)},
			{"Revenue", views.FormatAmount(stats.Revenue)},
		},
		Tables:     []table.View{table.Build("Orders", views.Orders, list)},
		RowActions: rowActions,
	})
}

func (s *Server) orderActionSubmit(c *gin.Context) {
	var req OrderActionRequest
	_ = c.ShouldBind(&req)

	order, err := s.applyOrderAction(c.Param("id"), c.Param("action"), req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, orders.ErrUnknownAction):
			s.notFound(c)
		case errors.Is(err, orders.ErrReasonRequired), errors.Is(err, orders.ErrInvalidTransition):
			s.render(c, http.StatusBadRequest, "error.html", pageData{Title: "Orders", Error: err.Error()})
		default:
			s.renderFailure(c, err, "Failed to update order")
		}
		return
	}

	s.logger.Info().
		Str("order_id", order.ID).
		Str("status", order.Status).
		Str("by", GetSession(c).UserID).
		Msg("Order updated")

	c.Redirect(http.StatusSeeOther, "/orders")
}

func (s *Server) categoriesPage(c *gin.Context) {
	query := c.Query("q")
	categories, err := s.loadCategories(query)
	if err != nil {
		s.renderFailure(c, err, "Failed to list categories")
		return
	}

	active := 0
	for _, category := range categories {
		if category.Status == models.StatusActive {
			active++
		}
	}

	data := pageData{
		Title: "Category",
		Query: query,
		Stats: []statCard{
			{"Categories", strconv.Itoa(len(categories))},
			{"Active", strconv.Itoa(active)},
		},
		Tables: []table.View{table.Build("Categories", views.Categories, categories)},
	}

	editRoute, _ := access.Lookup("/category/:id/edit")
	if access.Decide(GetSession(c), editRoute.RequiredRoles) == access.Allow {
		data.Actions = []pageAction{{Label: "Add Category", URL: "/category/new"}}
		data.RowActions = make([][]pageAction, len(categories))
		for i, category := range categories {
			data.RowActions[i] = []pageAction{
				{Label: "Edit", URL: "/category/" + category.ID + "/edit"},
				{Label: "Delete", URL: "/category/" + category.ID + "/delete", Post: true},
			}
		}
	}

	s.render(c, http.StatusOK, "table.html", data)
}

// categoryForm renders the add or edit form
func (s *Server) categoryForm(c *gin.Context, status int, form CategoryRequest, message string) {
	title := "Add Category"
	if c.Param("id") != "" {
		title = "Edit Category"
	}

	s.render(c, status, "category_form.html", pageData{
		Title:      title,
		Error:      message,
		Category:   form,
		FormAction: c.Request.URL.Path,
	})
}

// loadCategoryForPage finds the category named by the id parameter, rendering
// the not-found or failure page itself
func (s *Server) loadCategoryForPage(c *gin.Context) (*models.Category, bool) {
	var category models.Category
	if err := models.FindByID(s.db, c.Param("id"), &category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.notFound(c)
			return nil, false
		}
		s.renderFailure(c, err, "Failed to load category")
		return nil, false
	}
	return &category, true
}

func (s *Server) categoryFormPage(c *gin.Context) {
	if c.Param("id") == "" {
		s.categoryForm(c, http.StatusOK, CategoryRequest{Status: models.StatusActive}, "")
		return
	}

	category, ok := s.loadCategoryForPage(c)
	if !ok {
		return
	}

	s.categoryForm(c, http.StatusOK, CategoryRequest{
		Name:        category.Name,
		Description: category.Description,
		Status:      category.Status,
	}, "")
}

func (s *Server) categoryFormSubmit(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.categoryForm(c, http.StatusBadRequest, req, "Category name is required")
		return
	}

	category := &models.Category{}
	if c.Param("id") != "" {
		var ok bool
		if category, ok = s.loadCategoryForPage(c); !ok {
			return
		}
	}

	if err := s.saveCategory(category, req); err != nil {
		if errors.Is(err, errDuplicateCategory) {
			s.categoryForm(c, http.StatusConflict, req, "A category with this name already exists")
			return
		}
		s.renderFailure(c, err, "Failed to save category")
		return
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Str("by", GetSession(c).UserID).
		Msg("Category saved")

	c.Redirect(http.StatusSeeOther, "/category")
}

func (s *Server) categoryDeleteSubmit(c *gin.Context) {
	category, ok := s.loadCategoryForPage(c)
	if !ok {
		return
	}

	if err := s.removeCategory(category); err != nil {
		s.renderFailure(c, err, "Failed to delete category")
		return
	}

	s.logger.Info().
		Str("category_id", category.ID).
		Str("by", GetSession(c).UserID).
		Msg("Category deleted")

	c.Redirect(http.StatusSeeOther, "/category")
}

func (s *Server) productsPage(c *gin.Context) {
	query := c.Query("q")
	all, products, err := s.loadProducts(query, c.Query("status"))
	if err != nil {
		s.renderFailure(c, err, "Failed to list products")
		return
	}

	stats := inventory.Stats(all, inventory.Threshold(s.db))
	data := pageData{
		Title: "Products",
		Query: query,
		Stats: []statCard{
			{"Total Products", strconv.Itoa(stats.Total)},
			{"Low Stock", strconv.Itoa(stats.LowStock)},
			{"Out of Stock", strconv.Itoa(stats.OutOfStock)},
			{"Avg Rating", fmt.Sprintf("%.1f", stats.AvgRating)},
		},
		Tables: []table.View{table.Build("Products", views.Products, products)},
	}

	// Editing links only for sessions the edit pages admit
	editRoute, _ := access.Lookup("/products/:id/edit")
	if access.Decide(GetSession(c), editRoute.RequiredRoles) == access.Allow {
		data.Actions = []pageAction{{Label: "Add Product", URL: "/products/new"}}
		data.RowActions = make([][]pageAction, len(products))
		for i, product := range products {
			data.RowActions[i] = []pageAction{
				{Label: "Edit", URL: "/products/" + product.ID + "/edit"},
				{Label: "Delete", URL: "/products/" + product.ID + "/delete", Post: true},
			}
		}
	}

	s.render(c, http.StatusOK, "table.html", data)
}

func (s *Server) customersPage(c *gin.Context) {
	query := c.Query("q")
	customers, err := s.loadCustomers(query, c.Query("status"))
	if err != nil {
		s.renderFailure(c, err, "Failed to list customers")
		return
	}

	var spent int64
	for _, customer := range customers {
		spent += customer.TotalSpent
	}

	s.render(c, http.StatusOK, "table.html", pageData{
		Title: "Customers",
		Query: query,
		Stats: []statCard{
			{"Customers", strconv.Itoa(len(customers))},
			{"Total Spent", views.FormatAmount(spent)},
		},
		Tables: []table.View{table.Build("Customers", views.Customers, customers)},
	})
}

// productForm renders the add or edit form
func (s *Server) productForm(c *gin.Context, status int, form ProductRequest, message string) {
	var categories []models.Category
	if err := s.db.Order("name ASC").Find(&categories).Error; err != nil {
		s.renderFailure(c, err, "Failed to list categories")
		return
	}

	title := "Add Product"
	if c.Param("id") != "" {
		title = "Edit Product"
	}

	s.render(c, status, "product_form.html", pageData{
		Title:      title,
		Error:      message,
		Product:    form,
		Categories: categories,
		FormAction: c.Request.URL.Path,
	})
}

func (s *Server) productFormPage(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		s.productForm(c, http.StatusOK, ProductRequest{Status: models.ProductActive}, "")
		return
	}

	var product models.Product
	if err := models.FindByID(s.db, id, &product); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.notFound(c)
			return
		}
		s.renderFailure(c, err, "Failed to load product")
		return
	}

	form := ProductRequest{
		Name:        product.Name,
		SKU:         product.SKU,
		Price:       product.Price,
		Stock:       product.Stock,
		Status:      product.Status,
		Rating:      product.Rating,
		Orders:      product.Orders,
		Material:    product.Material,
		Size:        product.Size,
		Description: product.Description,
	}
	if product.CategoryID != nil {
		form.CategoryID = *product.CategoryID
	}

	s.productForm(c, http.StatusOK, form, "")
}

func (s *Server) productFormSubmit(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBind(&req); err != nil {
		s.productForm(c, http.StatusBadRequest, req, "Please fill in all required fields: "+err.Error())
		return
	}

	var product models.Product
	if id := c.Param("id"); id != "" {
		if err := models.FindByID(s.db, id, &product); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.notFound(c)
				return
			}
			s.renderFailure(c, err, "Failed to load product")
			return
		}
	}

	if err := s.saveProduct(&product, req); err != nil {
		switch {
		case errors.Is(err, errCategoryNotFound):
			s.productForm(c, http.StatusBadRequest, req, "Category not found")
		case errors.Is(err, errDuplicateSKU):
			s.productForm(c, http.StatusConflict, req, "A product with this SKU already exists")
		default:
			s.renderFailure(c, err, "Failed to save product")
		}
		return
	}

	s.logger.Info().
		Str("product_id", product.ID).
		Str("by", GetSession(c).UserID).
		Msg("Product saved")

	c.Redirect(http.StatusSeeOther, "/products")
}

func (s *Server) productDeleteSubmit(c *gin.Context) {
	if err := s.removeProduct(c.Param("id")); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.notFound(c)
			return
		}
		s.renderFailure(c, err, "Failed to delete product")
		return
	}

	s.logger.Info().
		Str("product_id", c.Param("id")).
		Str("by", GetSession(c).UserID).
		Msg("Product deleted")

	c.Redirect(http.StatusSeeOther, "/products")
}

func (s *Server) profilePage(c *gin.Context) {
	var user models.User
	if err := models.FindByID(s.db, GetSession(c).UserID, &user); err != nil {
		s.renderFailure(c, err, "Failed to load profile")
		return
	}

	s.render(c, http.StatusOK, "profile.html", pageData{
		Title:   "Profile",
		Profile: newUserDetail(&user),
		Notice:  c.Query("notice"),
	})
}

// profileError re-renders the profile page with message
func (s *Server) profileError(c *gin.Context, status int, message string) {
	var user models.User
	if err := models.FindByID(s.db, GetSession(c).UserID, &user); err != nil {
		s.renderFailure(c, err, "Failed to load profile")
		return
	}
	s.render(c, status, "profile.html", pageData{
		Title:   "Profile",
		Profile: newUserDetail(&user),
		Error:   message,
	})
}

func (s *Server) profileSubmit(c *gin.Context) {
	var req ProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		message := "Name is required"
		if req.Name != "" {
			message = "Please enter a valid email address"
		}
		s.profileError(c, http.StatusBadRequest, message)
		return
	}

	_, token, err := s.saveProfile(GetSession(c).UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, errNameRequired):
			s.profileError(c, http.StatusBadRequest, "Name is required")
		case errors.Is(err, errEmailTaken):
			s.profileError(c, http.StatusConflict, "A user with this email already exists")
		default:
			s.renderFailure(c, err, "Failed to update profile")
		}
		return
	}

	s.setSessionCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/profile?notice=Profile+updated%21")
}
