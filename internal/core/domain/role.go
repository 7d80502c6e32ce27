package domain

// Role is a closed, hierarchical position within a jewelry business. The set
// is fixed at compile time; unknown strings fail Valid and resolve to safe
// defaults everywhere else.
type Role string

const (
	RoleStoreOwner           Role = "store_owner"
	RoleSystemAdmin          Role = "system_admin"
	RoleStoreManager         Role = "store_manager"
	RoleAssistantManager     Role = "assistant_manager"
	RoleInventoryManager     Role = "inventory_manager"
	RoleAccountant           Role = "accountant"
	RoleBookkeeper           Role = "bookkeeper"
	RoleSeniorSalesAssociate Role = "senior_sales_associate"
	RoleAppraiser            Role = "appraiser"
	RoleJewelryDesigner      Role = "jewelry_designer"
	RoleGoldsmith            Role = "goldsmith"
	RoleJeweler              Role = "jeweler"
	RoleSalesAssociate       Role = "sales_associate"
	RoleCustomerServiceRep   Role = "customer_service_rep"
	RoleViewer               Role = "viewer"
	RoleGuest                Role = "guest"
)

// roleHierarchy assigns each role its authority level. Higher outranks lower;
// equal levels outrank each other, so peers can manage peers.
var roleHierarchy = map[Role]int{
	RoleStoreOwner:           100,
	RoleSystemAdmin:          95,
	RoleStoreManager:         90,
	RoleAssistantManager:     80,
	RoleInventoryManager:     70,
	RoleAccountant:           65,
	RoleBookkeeper:           60,
	RoleSeniorSalesAssociate: 55,
	RoleAppraiser:            50,
	RoleJewelryDesigner:      45,
	RoleGoldsmith:            40,
	RoleJeweler:              40,
	RoleSalesAssociate:       35,
	RoleCustomerServiceRep:   30,
	RoleViewer:               20,
	RoleGuest:                10,
}

var roleDisplayNames = map[Role]string{
	RoleStoreOwner:           "Store Owner",
	RoleSystemAdmin:          "System Administrator",
	RoleStoreManager:         "Store Manager",
	RoleAssistantManager:     "Assistant Manager",
	RoleInventoryManager:     "Inventory Manager",
	RoleAccountant:           "Accountant",
	RoleBookkeeper:           "Bookkeeper",
	RoleSeniorSalesAssociate: "Senior Sales Associate",
	RoleAppraiser:            "Appraiser",
	RoleJewelryDesigner:      "Jewelry Designer",
	RoleGoldsmith:            "Goldsmith",
	RoleJeweler:              "Jeweler",
	RoleSalesAssociate:       "Sales Associate",
	RoleCustomerServiceRep:   "Customer Service Representative",
	RoleViewer:               "Viewer",
	RoleGuest:                "Guest",
}

var roleDescriptions = map[Role]string{
	RoleStoreOwner:           "Full control over the business, staff and system settings",
	RoleSystemAdmin:          "Technical administration of the platform",
	RoleStoreManager:         "Day-to-day management of store operations and staff",
	RoleAssistantManager:     "Supports the store manager in daily operations",
	RoleInventoryManager:     "Oversees stock levels, intake and transfers",
	RoleAccountant:           "Manages financial records and reporting",
	RoleBookkeeper:           "Maintains transaction records and ledgers",
	RoleSeniorSalesAssociate: "Experienced sales staff with extended privileges",
	RoleAppraiser:            "Evaluates and certifies jewelry pieces",
	RoleJewelryDesigner:      "Designs custom pieces and manages design workflows",
	RoleGoldsmith:            "Fabricates and repairs jewelry in the workshop",
	RoleJeweler:              "Performs bench work, repairs and stone setting",
	RoleSalesAssociate:       "Handles customer sales on the floor",
	RoleCustomerServiceRep:   "Handles customer inquiries and after-sales support",
	RoleViewer:               "Read-only access to business data",
	RoleGuest:                "Minimal access for unverified users",
}

var roleColors = map[Role]string{
	RoleStoreOwner:           "#7C3AED",
	RoleSystemAdmin:          "#DC2626",
	RoleStoreManager:         "#2563EB",
	RoleAssistantManager:     "#3B82F6",
	RoleInventoryManager:     "#0891B2",
	RoleAccountant:           "#059669",
	RoleBookkeeper:           "#10B981",
	RoleSeniorSalesAssociate: "#D97706",
	RoleAppraiser:            "#B45309",
	RoleJewelryDesigner:      "#DB2777",
	RoleGoldsmith:            "#C2410C",
	RoleJeweler:              "#EA580C",
	RoleSalesAssociate:       "#F59E0B",
	RoleCustomerServiceRep:   "#8B5CF6",
	RoleViewer:               "#64748B",
	RoleGuest:                "#94A3B8",
}

var roleIcons = map[Role]string{
	RoleStoreOwner:           "crown",
	RoleSystemAdmin:          "shield",
	RoleStoreManager:         "briefcase",
	RoleAssistantManager:     "clipboard",
	RoleInventoryManager:     "package",
	RoleAccountant:           "calculator",
	RoleBookkeeper:           "book",
	RoleSeniorSalesAssociate: "star",
	RoleAppraiser:            "search",
	RoleJewelryDesigner:      "pen-tool",
	RoleGoldsmith:            "hammer",
	RoleJeweler:              "gem",
	RoleSalesAssociate:       "shopping-bag",
	RoleCustomerServiceRep:   "headphones",
	RoleViewer:               "eye",
	RoleGuest:                "user",
}

const (
	defaultRoleDisplayName = "Team Member"
	defaultRoleColor       = "#6B7280"
	defaultRoleIcon        = "user"
)

// Valid reports whether the role is one of the known positions.
func (r Role) Valid() bool {
	_, ok := roleHierarchy[r]
	return ok
}

// Level returns the role's authority level, zero for unknown roles.
func (r Role) Level() int {
	return roleHierarchy[r]
}

// CanManage reports whether this role outranks or matches the target role.
// Unknown roles have level zero and can manage nothing but other unknowns.
func (r Role) CanManage(target Role) bool {
	return r.Level() >= target.Level()
}

// DisplayName returns the human-readable name for the role.
func (r Role) DisplayName() string {
	if name, ok := roleDisplayNames[r]; ok {
		return name
	}
	return defaultRoleDisplayName
}

// Description returns a short description of the role's responsibilities.
func (r Role) Description() string {
	return roleDescriptions[r]
}

// Color returns the UI accent color for the role.
func (r Role) Color() string {
	if color, ok := roleColors[r]; ok {
		return color
	}
	return defaultRoleColor
}

// Icon returns the UI icon name for the role.
func (r Role) Icon() string {
	if icon, ok := roleIcons[r]; ok {
		return icon
	}
	return defaultRoleIcon
}

// Roles returns every known role ordered by descending authority level.
func Roles() []Role {
	return []Role{
		RoleStoreOwner,
		RoleSystemAdmin,
		RoleStoreManager,
		RoleAssistantManager,
		RoleInventoryManager,
		RoleAccountant,
		RoleBookkeeper,
		RoleSeniorSalesAssociate,
		RoleAppraiser,
		RoleJewelryDesigner,
		RoleGoldsmith,
		RoleJeweler,
		RoleSalesAssociate,
		RoleCustomerServiceRep,
		RoleViewer,
		RoleGuest,
	}
}
