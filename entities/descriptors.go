// ABOUTME: Descriptors for every sales entity screen
// ABOUTME: Columns, form fields, required-field messages and delete policy per entity
package entities

import (
	"strconv"

	"github.com/harperreed/salescrm/listing"
	"github.com/harperreed/salescrm/models"
)

func ref(id *int64) string {
	if id == nil {
		return ""
	}
	return strconv.FormatInt(*id, 10)
}

func id64(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func yesNo(b bool) string {
	if b {
		return "Active"
	}
	return "Inactive"
}

func Leads() listing.Descriptor[models.Lead] {
	return listing.Descriptor[models.Lead]{
		Name:     "Lead",
		Plural:   "leads",
		Ordering: "id",
		ID:       func(l models.Lead) int64 { return l.ID },
		Label:    func(l models.Lead) string { return l.Name },
		Columns: []listing.Column[models.Lead]{
			{Title: "ID", Width: 5, Value: func(l models.Lead) string { return id64(l.ID) }},
			{Title: "Name", Width: 22, Value: func(l models.Lead) string { return l.Name }},
			{Title: "Company", Width: 18, Value: func(l models.Lead) string { return l.Company }},
			{Title: "Email", Width: 26, Value: func(l models.Lead) string { return l.Email }},
			{Title: "Phone", Width: 14, Value: func(l models.Lead) string { return l.Phone }},
			{Title: "Status", Width: 12, Value: func(l models.Lead) string { return l.Status }},
		},
		Details: []listing.Column[models.Lead]{
			{Title: "Name", Value: func(l models.Lead) string { return l.Name }},
			{Title: "Company", Value: func(l models.Lead) string { return l.Company }},
			{Title: "Email", Value: func(l models.Lead) string { return l.Email }},
			{Title: "Phone", Value: func(l models.Lead) string { return l.Phone }},
			{Title: "Source", Value: func(l models.Lead) string { return l.Source }},
			{Title: "Status", Value: func(l models.Lead) string { return l.Status }},
			{Title: "Assigned To", Value: func(l models.Lead) string { return l.AssignedToName }},
			{Title: "Created", Value: func(l models.Lead) string { return l.CreatedAt }},
		},
		Fields: []listing.Field[models.Lead]{
			{Key: "name", Label: "Name", Required: true, Value: func(l models.Lead) string { return l.Name }},
			{Key: "email", Label: "Email", Kind: listing.KindEmail, Required: true, Value: func(l models.Lead) string { return l.Email }},
			{Key: "phone", Label: "Phone", Value: func(l models.Lead) string { return l.Phone }},
			{Key: "company", Label: "Company", Value: func(l models.Lead) string { return l.Company }},
			{Key: "source", Label: "Source", Value: func(l models.Lead) string { return l.Source }},
			{Key: "status", Label: "Status", Kind: listing.KindChoice, Choices: models.LeadStatuses,
				Value: func(l models.Lead) string { return l.Status }},
			{Key: "assigned_to", Label: "Assigned To", Kind: listing.KindReference,
				Value: func(l models.Lead) string { return ref(l.AssignedTo) }},
		},
	}
}

func Opportunities() listing.Descriptor[models.Opportunity] {
	return listing.Descriptor[models.Opportunity]{
		Name:     "Opportunity",
		Plural:   "opportunities",
		Ordering: "id",
		ID:       func(o models.Opportunity) int64 { return o.ID },
		Label:    func(o models.Opportunity) string { return o.Name },
		Columns: []listing.Column[models.Opportunity]{
			{Title: "ID", Width: 5, Value: func(o models.Opportunity) string { return id64(o.ID) }},
			{Title: "Name", Width: 24, Value: func(o models.Opportunity) string { return o.Name }},
			{Title: "Account", Width: 20, Value: func(o models.Opportunity) string { return o.AccountName }},
			{Title: "Stage", Width: 14, Value: func(o models.Opportunity) string { return o.Stage }},
			{Title: "Amount", Width: 14, Value: func(o models.Opportunity) string { return models.FormatAmount(o.Amount) }},
			{Title: "Close Date", Width: 12, Value: func(o models.Opportunity) string { return o.CloseDate }},
		},
		Details: []listing.Column[models.Opportunity]{
			{Title: "Name", Value: func(o models.Opportunity) string { return o.Name }},
			{Title: "Account", Value: func(o models.Opportunity) string { return o.AccountName }},
			{Title: "Contact", Value: func(o models.Opportunity) string { return o.ContactName }},
			{Title: "Stage", Value: func(o models.Opportunity) string { return o.Stage }},
			{Title: "Amount", Value: func(o models.Opportunity) string { return models.FormatAmount(o.Amount) }},
			{Title: "Close Date", Value: func(o models.Opportunity) string { return o.CloseDate }},
			{Title: "Owner", Value: func(o models.Opportunity) string { return o.OwnerName }},
		},
		Fields: []listing.Field[models.Opportunity]{
			{Key: "name", Label: "Name", Required: true, Value: func(o models.Opportunity) string { return o.Name }},
			{Key: "account", Label: "Account", Kind: listing.KindReference, Required: true,
				Value: func(o models.Opportunity) string { return ref(o.Account) }},
			{Key: "contact", Label: "Contact", Kind: listing.KindReference,
				Value: func(o models.Opportunity) string { return ref(o.Contact) }},
			{Key: "amount", Label: "Amount", Kind: listing.KindDecimal, Required: true,
				Value: func(o models.Opportunity) string { return o.Amount }},
			{Key: "stage", Label: "Stage", Kind: listing.KindChoice, Choices: models.Stages,
				Value: func(o models.Opportunity) string { return o.Stage }},
			{Key: "close_date", Label: "Close Date", Kind: listing.KindDate,
				Value: func(o models.Opportunity) string { return o.CloseDate }},
			{Key: "owner", Label: "Owner", Kind: listing.KindReference,
				Value: func(o models.Opportunity) string { return ref(o.Owner) }},
		},
	}
}

func accountColumns() []listing.Column[models.Account] {
	return []listing.Column[models.Account]{
		{Title: "ID", Width: 5, Value: func(a models.Account) string { return id64(a.ID) }},
		{Title: "Name", Width: 24, Value: func(a models.Account) string { return a.Name }},
		{Title: "Industry", Width: 16, Value: func(a models.Account) string { return a.Industry }},
		{Title: "Size", Width: 10, Value: func(a models.Account) string { return a.Size }},
		{Title: "Location", Width: 18, Value: func(a models.Account) string { return a.Location }},
		{Title: "Website", Width: 24, Value: func(a models.Account) string { return a.Website }},
	}
}

func accountFields(message string) []listing.Field[models.Account] {
	return []listing.Field[models.Account]{
		{Key: "name", Label: "Name", Required: true, Message: message, Value: func(a models.Account) string { return a.Name }},
		{Key: "industry", Label: "Industry", Value: func(a models.Account) string { return a.Industry }},
		{Key: "size", Label: "Size", Value: func(a models.Account) string { return a.Size }},
		{Key: "location", Label: "Location", Value: func(a models.Account) string { return a.Location }},
		{Key: "website", Label: "Website", Value: func(a models.Account) string { return a.Website }},
	}
}

func Accounts() listing.Descriptor[models.Account] {
	return listing.Descriptor[models.Account]{
		Name:           "Account",
		Plural:         "accounts",
		Ordering:       "id",
		ID:             func(a models.Account) int64 { return a.ID },
		Label:          func(a models.Account) string { return a.Name },
		Columns:        accountColumns(),
		Fields:         accountFields("Account name is required"),
		CreatedMessage: "Account created",
		UpdatedMessage: "Account updated",
	}
}

// Customers is a second screen over the accounts collection.
func Customers() listing.Descriptor[models.Account] {
	return listing.Descriptor[models.Account]{
		Name:     "Customer",
		Plural:   "customers",
		Ordering: "id",
		ID:       func(a models.Account) int64 { return a.ID },
		Label:    func(a models.Account) string { return a.Name },
		Columns:  accountColumns(),
		Fields:   accountFields("Customer name is required"),
	}
}

func Contacts() listing.Descriptor[models.Contact] {
	return listing.Descriptor[models.Contact]{
		Name:     "Contact",
		Plural:   "contacts",
		Ordering: "id",
		ID:       func(c models.Contact) int64 { return c.ID },
		Label:    func(c models.Contact) string { return c.Name },
		Columns: []listing.Column[models.Contact]{
			{Title: "ID", Width: 5, Value: func(c models.Contact) string { return id64(c.ID) }},
			{Title: "Name", Width: 22, Value: func(c models.Contact) string { return c.Name }},
			{Title: "Email", Width: 26, Value: func(c models.Contact) string { return c.Email }},
			{Title: "Phone", Width: 14, Value: func(c models.Contact) string { return c.Phone }},
			{Title: "Account", Width: 20, Value: func(c models.Contact) string { return c.AccountName }},
			{Title: "Title", Width: 16, Value: func(c models.Contact) string { return c.Title }},
			{Title: "Created", Width: 12, Value: func(c models.Contact) string { return dateOnly(c.CreatedAt) }},
		},
		Fields: []listing.Field[models.Contact]{
			{Key: "name", Label: "Name", Required: true, Value: func(c models.Contact) string { return c.Name }},
			{Key: "email", Label: "Email", Kind: listing.KindEmail, Required: true, Value: func(c models.Contact) string { return c.Email }},
			{Key: "phone", Label: "Phone", Value: func(c models.Contact) string { return c.Phone }},
			{Key: "account", Label: "Account", Kind: listing.KindReference, Value: func(c models.Contact) string { return ref(c.Account) }},
			{Key: "title", Label: "Title", Value: func(c models.Contact) string { return c.Title }},
		},
	}
}

func Products() listing.Descriptor[models.Product] {
	return listing.Descriptor[models.Product]{
		Name:          "Product",
		Plural:        "products",
		Ordering:      "id",
		ConfirmDelete: true,
		ID:            func(p models.Product) int64 { return p.ID },
		Label:         func(p models.Product) string { return p.Name },
		Columns: []listing.Column[models.Product]{
			{Title: "Name", Width: 24, Value: func(p models.Product) string { return p.Name }},
			{Title: "Description", Width: 32, Value: func(p models.Product) string { return p.Description }},
			{Title: "Price", Width: 12, Value: func(p models.Product) string { return models.FormatAmount(p.Price) }},
			{Title: "Status", Width: 10, Value: func(p models.Product) string { return yesNo(p.IsActive) }},
		},
		Fields: []listing.Field[models.Product]{
			{Key: "name", Label: "Name", Required: true, Message: "Product name is required",
				Value: func(p models.Product) string { return p.Name }},
			{Key: "description", Label: "Description", Value: func(p models.Product) string { return p.Description }},
			{Key: "price", Label: "Price", Kind: listing.KindDecimal, Required: true, Message: "Product price is required",
				Value: func(p models.Product) string { return p.Price }},
			{Key: "is_active", Label: "Active", Kind: listing.KindBool, Default: "true",
				Value: func(p models.Product) string { return strconv.FormatBool(p.IsActive) }},
		},
		CreatedMessage: "Product created",
		UpdatedMessage: "Product updated",
	}
}

func Quotes() listing.Descriptor[models.Quote] {
	return listing.Descriptor[models.Quote]{
		Name:          "Quote",
		Plural:        "quotes",
		Ordering:      "id",
		ConfirmDelete: true,
		ID:            func(q models.Quote) int64 { return q.ID },
		Label:         func(q models.Quote) string { return q.Title },
		Columns: []listing.Column[models.Quote]{
			{Title: "ID", Width: 5, Value: func(q models.Quote) string { return id64(q.ID) }},
			{Title: "Title", Width: 26, Value: func(q models.Quote) string { return q.Title }},
			{Title: "Opportunity", Width: 22, Value: func(q models.Quote) string { return q.OpportunityName }},
			{Title: "Total Price", Width: 14, Value: func(q models.Quote) string { return models.FormatAmount(q.TotalPrice) }},
			{Title: "Created By", Width: 16, Value: func(q models.Quote) string { return q.CreatedByName }},
			{Title: "Created", Width: 12, Value: func(q models.Quote) string { return dateOnly(q.CreatedAt) }},
		},
		Details: []listing.Column[models.Quote]{
			{Title: "Title", Value: func(q models.Quote) string { return q.Title }},
			{Title: "Opportunity", Value: func(q models.Quote) string { return q.OpportunityName }},
			{Title: "Status", Value: func(q models.Quote) string { return q.Status }},
			{Title: "Total Price", Value: func(q models.Quote) string { return models.FormatAmount(q.TotalPrice) }},
			{Title: "Created By", Value: func(q models.Quote) string { return q.CreatedByName }},
			{Title: "Created", Value: func(q models.Quote) string { return dateOnly(q.CreatedAt) }},
			{Title: "Notes", Value: func(q models.Quote) string { return q.Notes }},
		},
		Fields: []listing.Field[models.Quote]{
			{Key: "title", Label: "Title", Required: true, Message: "Quote title is required",
				Value: func(q models.Quote) string { return q.Title }},
			{Key: "opportunity", Label: "Opportunity", Kind: listing.KindReference, Required: true, Message: "Opportunity is required",
				Value: func(q models.Quote) string { return ref(q.Opportunity) }},
			{Key: "status", Label: "Status", Kind: listing.KindChoice, Choices: models.QuoteStatuses,
				Value: func(q models.Quote) string { return q.Status }},
			{Key: "notes", Label: "Notes", Value: func(q models.Quote) string { return q.Notes }},
		},
		CreatedMessage: "Quote created",
		UpdatedMessage: "Quote updated",
	}
}

func Tasks() listing.Descriptor[models.Task] {
	return listing.Descriptor[models.Task]{
		Name:          "Task",
		Plural:        "tasks",
		Ordering:      "id",
		ConfirmDelete: true,
		ID:            func(t models.Task) int64 { return t.ID },
		Label:         func(t models.Task) string { return t.Title },
		Columns: []listing.Column[models.Task]{
			{Title: "Title", Width: 24, Value: func(t models.Task) string { return t.Title }},
			{Title: "Type", Width: 9, Value: func(t models.Task) string { return t.Type }},
			{Title: "Status", Width: 10, Value: func(t models.Task) string { return t.Status }},
			{Title: "Due Date", Width: 12, Value: func(t models.Task) string { return t.DueDate }},
			{Title: "Lead", Width: 16, Value: func(t models.Task) string { return t.RelatedLeadName }},
			{Title: "Opportunity", Width: 18, Value: func(t models.Task) string { return t.RelatedOpportunityName }},
			{Title: "Owner", Width: 16, Value: func(t models.Task) string { return t.OwnerName }},
		},
		Fields: []listing.Field[models.Task]{
			{Key: "title", Label: "Title", Required: true, Message: "Task title is required",
				Value: func(t models.Task) string { return t.Title }},
			{Key: "type", Label: "Type", Kind: listing.KindChoice, Choices: models.TaskTypes, Required: true,
				Message: "Task type is required", Value: func(t models.Task) string { return t.Type }},
			{Key: "due_date", Label: "Due Date", Kind: listing.KindDate, Required: true, Message: "Due date is required",
				Value: func(t models.Task) string { return t.DueDate }},
			{Key: "status", Label: "Status", Kind: listing.KindChoice, Choices: models.TaskStatuses,
				Value: func(t models.Task) string { return t.Status }},
			{Key: "related_lead", Label: "Lead", Kind: listing.KindReference,
				Value: func(t models.Task) string { return ref(t.RelatedLead) }},
			{Key: "related_opportunity", Label: "Opportunity", Kind: listing.KindReference,
				Value: func(t models.Task) string { return ref(t.RelatedOpportunity) }},
			{Key: "owner", Label: "Owner", Kind: listing.KindReference, Required: true, Message: "Owner is required",
				Value: func(t models.Task) string { return id64(t.Owner) }},
			{Key: "notes", Label: "Notes", Value: func(t models.Task) string { return t.Notes }},
		},
		CreatedMessage: "Task created",
		UpdatedMessage: "Task updated",
	}
}

func Interactions() listing.Descriptor[models.Interaction] {
	return listing.Descriptor[models.Interaction]{
		Name:     "Interaction",
		Plural:   "interactions",
		Ordering: "id",
		ID:       func(i models.Interaction) int64 { return i.ID },
		Label:    func(i models.Interaction) string { return i.Summary },
		Columns: []listing.Column[models.Interaction]{
			{Title: "When", Width: 12, Value: func(i models.Interaction) string { return dateOnly(i.Timestamp) }},
			{Title: "Type", Width: 9, Value: func(i models.Interaction) string { return i.Type }},
			{Title: "Summary", Width: 36, Value: func(i models.Interaction) string { return i.Summary }},
			{Title: "Lead", Width: 16, Value: func(i models.Interaction) string { return i.LeadName }},
			{Title: "Contact", Width: 16, Value: func(i models.Interaction) string { return i.ContactName }},
			{Title: "Opportunity", Width: 18, Value: func(i models.Interaction) string { return i.OpportunityName }},
			{Title: "By", Width: 14, Value: func(i models.Interaction) string { return i.UserName }},
		},
		Fields: []listing.Field[models.Interaction]{
			{Key: "type", Label: "Type", Kind: listing.KindChoice, Choices: models.InteractionTypes, Required: true,
				Value: func(i models.Interaction) string { return i.Type }},
			{Key: "summary", Label: "Summary", Required: true, Value: func(i models.Interaction) string { return i.Summary }},
			{Key: "lead", Label: "Lead", Kind: listing.KindReference, Value: func(i models.Interaction) string { return ref(i.Lead) }},
			{Key: "contact", Label: "Contact", Kind: listing.KindReference, Value: func(i models.Interaction) string { return ref(i.Contact) }},
			{Key: "opportunity", Label: "Opportunity", Kind: listing.KindReference,
				Value: func(i models.Interaction) string { return ref(i.Opportunity) }},
		},
	}
}

// dateOnly trims an RFC3339 timestamp to its date.
func dateOnly(ts string) string {
	if len(ts) >= 10 {
		return ts[:10]
	}
	return ts
}
