// ABOUTME: Data models for Sales Cookbook CRM records as served by the REST API
// ABOUTME: Defines Account, Contact, Lead, Opportunity, Product, Quote, Task, Interaction and User structs
package models

// Account is a customer organization. The customers screen shows the same records.
type Account struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Industry  string `json:"industry,omitempty"`
	Size      string `json:"size,omitempty"`
	Location  string `json:"location,omitempty"`
	Website   string `json:"website,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Contact struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Account     *int64 `json:"account,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	Title       string `json:"title,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type Lead struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Company        string `json:"company,omitempty"`
	Source         string `json:"source,omitempty"`
	Status         string `json:"status,omitempty"`
	AssignedTo     *int64 `json:"assigned_to,omitempty"`
	AssignedToName string `json:"assigned_to_name,omitempty"`
	CreatedAt      string `json:"created_at,omitempty"`
	UpdatedAt      string `json:"updated_at,omitempty"`
}

type Opportunity struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Account     *int64 `json:"account,omitempty"`
	AccountName string `json:"account_name,omitempty"`
	Contact     *int64 `json:"contact,omitempty"`
	ContactName string `json:"contact_name,omitempty"`
	Amount      string `json:"amount"` // decimal string
	Stage       string `json:"stage,omitempty"`
	CloseDate   string `json:"close_date,omitempty"`
	Owner       *int64 `json:"owner,omitempty"`
	OwnerName   string `json:"owner_name,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type Product struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price"` // decimal string
	Currency    string `json:"currency,omitempty"`
	IsActive    bool   `json:"is_active"`
}

type QuoteLineItem struct {
	ID          int64  `json:"id"`
	Quote       int64  `json:"quote"`
	Product     int64  `json:"product"`
	ProductName string `json:"product_name,omitempty"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalPrice  string `json:"total_price,omitempty"`
}

type Quote struct {
	ID              int64           `json:"id"`
	Opportunity     *int64          `json:"opportunity,omitempty"`
	OpportunityName string          `json:"opportunity_name,omitempty"`
	Title           string          `json:"title"`
	TotalPrice      string          `json:"total_price,omitempty"`
	Status          string          `json:"status,omitempty"`
	CreatedBy       *int64          `json:"created_by,omitempty"`
	CreatedByName   string          `json:"created_by_name,omitempty"`
	CreatedAt       string          `json:"created_at,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	LineItems       []QuoteLineItem `json:"line_items,omitempty"`
}

type Task struct {
	ID                     int64  `json:"id"`
	Title                  string `json:"title"`
	Type                   string `json:"type"`
	DueDate                string `json:"due_date"`
	Status                 string `json:"status,omitempty"`
	RelatedLead            *int64 `json:"related_lead,omitempty"`
	RelatedLeadName        string `json:"related_lead_name,omitempty"`
	RelatedOpportunity     *int64 `json:"related_opportunity,omitempty"`
	RelatedOpportunityName string `json:"related_opportunity_name,omitempty"`
	Owner                  int64  `json:"owner"`
	OwnerName              string `json:"owner_name,omitempty"`
	Notes                  string `json:"notes,omitempty"`
}

type Interaction struct {
	ID              int64  `json:"id"`
	User            *int64 `json:"user,omitempty"`
	UserName        string `json:"user_name,omitempty"`
	Lead            *int64 `json:"lead,omitempty"`
	LeadName        string `json:"lead_name,omitempty"`
	Contact         *int64 `json:"contact,omitempty"`
	ContactName     string `json:"contact_name,omitempty"`
	Opportunity     *int64 `json:"opportunity,omitempty"`
	OpportunityName string `json:"opportunity_name,omitempty"`
	Type            string `json:"type"`
	Summary         string `json:"summary"`
	Timestamp       string `json:"timestamp,omitempty"`
}

type User struct {
	ID               int64  `json:"id"`
	Username         string `json:"username"`
	Email            string `json:"email"`
	FirstName        string `json:"first_name,omitempty"`
	LastName         string `json:"last_name,omitempty"`
	Role             string `json:"role,omitempty"`
	Organization     *int64 `json:"organization,omitempty"`
	OrganizationName string `json:"organization_name,omitempty"`
}

// FullName returns "First Last", falling back to the username.
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

// HasOrganization reports whether the user belongs to an organization.
// Every sales resource is scoped to one, so users without it only see the onboarding flow.
func (u User) HasOrganization() bool {
	return u.Organization != nil
}

type Organization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	UsersCount  int    `json:"users_count,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Page is the paginated list envelope every list endpoint returns.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Lead statuses.
const (
	LeadStatusNew          = "new"
	LeadStatusContacted    = "contacted"
	LeadStatusQualified    = "qualified"
	LeadStatusConverted    = "converted"
	LeadStatusDisqualified = "disqualified"
)

// Opportunity stages.
const (
	StageQualification = "qualification"
	StageProposal      = "proposal"
	StageNegotiation   = "negotiation"
	StageWon           = "won"
	StageLost          = "lost"
)

// Task types.
const (
	TaskTypeCall    = "call"
	TaskTypeEmail   = "email"
	TaskTypeMeeting = "meeting"
	TaskTypeDemo    = "demo"
)

// Task statuses.
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
	TaskStatusOverdue   = "overdue"
)

// Interaction types.
const (
	InteractionCall    = "call"
	InteractionEmail   = "email"
	InteractionNote    = "note"
	InteractionMeeting = "meeting"
)

// Quote statuses.
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusRejected = "rejected"
)

// User roles.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleSalesRep = "sales_rep"
)

var (
	LeadStatuses     = []string{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusConverted, LeadStatusDisqualified}
	Stages           = []string{StageQualification, StageProposal, StageNegotiation, StageWon, StageLost}
	TaskTypes        = []string{TaskTypeCall, TaskTypeEmail, TaskTypeMeeting, TaskTypeDemo}
	TaskStatuses     = []string{TaskStatusPending, TaskStatusCompleted, TaskStatusOverdue}
	InteractionTypes = []string{InteractionCall, InteractionEmail, InteractionNote, InteractionMeeting}
	QuoteStatuses    = []string{QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusRejected}
)
