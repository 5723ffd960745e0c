package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "product:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Product"
}

// Privilege codes checked by the route layer
const (
	PrivUserView            = "user:view"
	PrivUserCreate          = "user:create"
	PrivUserUpdate          = "user:update"
	PrivUserDelete          = "user:delete"
	PrivUserUpdatePrivilege = "user:update_privilege"
	PrivProductCreate       = "product:create"
	PrivProductUpdate       = "product:update"
	PrivProductDelete       = "product:delete"
	PrivCategoryCreate      = "category:create"
	PrivCategoryUpdate      = "category:update"
	PrivCategoryDelete      = "category:delete"
	PrivCustomerView        = "customer:view"
	PrivCustomerCreate      = "customer:create"
	PrivCustomerUpdate      = "customer:update"
	PrivCustomerDelete      = "customer:delete"
	PrivSaleView            = "sale:view"
	PrivSaleCreate          = "sale:create"
	PrivSaleUpdateStatus    = "sale:update_status"
	PrivSaleDelete          = "sale:delete"
	PrivNotificationView    = "notification:view"
	PrivReportView          = "report:view"
	PrivSettingUpdate       = "setting:update"
)

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: PrivUserView, Name: "View User"},
	{Code: PrivUserCreate, Name: "Create User"},
	{Code: PrivUserUpdate, Name: "Update User"},
	{Code: PrivUserDelete, Name: "Delete User"},
	{Code: PrivUserUpdatePrivilege, Name: "Update User Privileges"},
	// Catalog
	{Code: PrivProductCreate, Name: "Create Product"},
	{Code: PrivProductUpdate, Name: "Update Product"},
	{Code: PrivProductDelete, Name: "Delete Product"},
	{Code: PrivCategoryCreate, Name: "Create Category"},
	{Code: PrivCategoryUpdate, Name: "Update Category"},
	{Code: PrivCategoryDelete, Name: "Delete Category"},
	// Customers
	{Code: PrivCustomerView, Name: "View Customer"},
	{Code: PrivCustomerCreate, Name: "Create Customer"},
	{Code: PrivCustomerUpdate, Name: "Update Customer"},
	{Code: PrivCustomerDelete, Name: "Delete Customer"},
	// Sales and orders
	{Code: PrivSaleView, Name: "View Sales"},
	{Code: PrivSaleCreate, Name: "Create POS Sale"},
	{Code: PrivSaleUpdateStatus, Name: "Update Sale Status"},
	{Code: PrivSaleDelete, Name: "Delete Sale"},
	// Misc
	{Code: PrivNotificationView, Name: "View Notifications"},
	{Code: PrivReportView, Name: "View Reports"},
	{Code: PrivSettingUpdate, Name: "Update Settings"},
}

// CashierPrivileges is the subset granted to the CASHIER role
var CashierPrivileges = []string{
	PrivCustomerView,
	PrivCustomerCreate,
	PrivSaleView,
	PrivSaleCreate,
	PrivSaleUpdateStatus,
	PrivNotificationView,
}
