package domain

import "time"

// Role partitions accounts by capability.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSupplier Role = "supplier"
	RoleAdmin    Role = "admin"
)

// SupplierProfile carries the extra fields collected at supplier signup.
type SupplierProfile struct {
	BusinessName string `json:"business_name"`
	Tribe        string `json:"tribe,omitempty"`
	Location     string `json:"location,omitempty"`
}

// User is a registered account. PasswordHash is a bcrypt digest and never
// leaves the repository layer in API responses.
type User struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	PasswordHash string           `json:"-"`
	Role         Role             `json:"role"`
	Phone        string           `json:"phone,omitempty"`
	Supplier     *SupplierProfile `json:"supplier,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
}

// ContactMessage is a sanitised storefront contact-form submission.
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Subject    string    `json:"subject"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"received_at"`
}

// DashboardStats aggregates the figures shown on the admin dashboard.
type DashboardStats struct {
	TotalCustomers  int     `json:"total_customers"`
	TotalSuppliers  int     `json:"total_suppliers"`
	TotalProducts   int     `json:"total_products"`
	TotalOrders     int     `json:"total_orders"`
	TotalRevenueUSD float64 `json:"total_revenue"`
	PendingOrders   int     `json:"pending_orders"`
	PendingProducts int     `json:"pending_products"`
}
