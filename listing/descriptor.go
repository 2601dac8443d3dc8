// ABOUTME: Table-driven description of one entity screen
// ABOUTME: Columns, form fields, paging mode, messages and delete policy for a generic list controller
package listing

import (
	"fmt"
	"strings"
)

// PagingMode selects how the controller decides whether a next page exists.
type PagingMode int

const (
	// PagingCount derives the next page from the total count and page size.
	PagingCount PagingMode = iota
	// PagingCursor trusts the envelope's next link.
	PagingCursor
)

// DefaultPageSize matches the backend's page size.
const DefaultPageSize = 10

// Column renders one table cell.
type Column[T any] struct {
	Title string
	Width int
	Value func(T) string
}

// Field is one form input. Value reads the current value from a record so
// edit drafts can be pre-populated and changed fields detected.
type Field[T any] struct {
	Key   string
	Label string
	Kind  FieldKind
	// Required fields must be non-blank.
	Required bool
	// Message replaces the default "<Label> is required".
	Message string
	// Choices constrains KindChoice values.
	Choices []string
	// CreateOnly fields are not offered when editing.
	CreateOnly bool
	// Default is sent on create when the draft leaves the field blank.
	Default string
	// Options lists the values a reference may take. Values outside it are
	// rejected before any request is made.
	Options OptionsFunc
	Value   func(T) string
}

// RequiredMessage returns the validation message for a blank required field.
func (f Field[T]) RequiredMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return f.Label + " is required"
}

// Descriptor configures a controller for one entity type.
type Descriptor[T any] struct {
	// Name is the singular display name, e.g. "Lead".
	Name string
	// Plural is the lower-case collection label, e.g. "leads".
	Plural   string
	Ordering string
	PageSize int
	Paging   PagingMode

	ID    func(T) int64
	Label func(T) string

	Columns []Column[T]
	// Details are shown on a detail view. Columns are used when empty.
	Details []Column[T]
	Fields  []Field[T]

	// ConfirmDelete gates deletes behind RequestDelete/ConfirmDelete.
	ConfirmDelete bool

	// Optional overrides for success notifications.
	CreatedMessage string
	UpdatedMessage string
	DeletedMessage string
}

// Validate reports descriptor mistakes that would otherwise surface at runtime.
func (d Descriptor[T]) Validate() error {
	if d.Name == "" || d.Plural == "" {
		return fmt.Errorf("descriptor needs a name and plural")
	}
	if d.ID == nil {
		return fmt.Errorf("descriptor %s has no ID func", d.Name)
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if f.Key == "" || f.Value == nil {
			return fmt.Errorf("descriptor %s has an incomplete field %q", d.Name, f.Key)
		}
		if seen[f.Key] {
			return fmt.Errorf("descriptor %s has duplicate field %q", d.Name, f.Key)
		}
		seen[f.Key] = true
		if f.Kind == KindChoice && len(f.Choices) == 0 {
			return fmt.Errorf("descriptor %s field %q has no choices", d.Name, f.Key)
		}
		if f.Default != "" {
			if err := validateField(f, f.Default); err != nil {
				return fmt.Errorf("descriptor %s field %q has a bad default: %w", d.Name, f.Key, err)
			}
		}
	}
	for _, c := range d.Columns {
		if c.Value == nil {
			return fmt.Errorf("descriptor %s column %q has no value func", d.Name, c.Title)
		}
	}
	return nil
}

func (d Descriptor[T]) field(key string) (Field[T], bool) {
	for _, f := range d.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field[T]{}, false
}

func (d Descriptor[T]) lowerName() string {
	return strings.ToLower(d.Name)
}

func (d Descriptor[T]) createdMessage() string {
	if d.CreatedMessage != "" {
		return d.CreatedMessage
	}
	return d.Name + " created successfully"
}

func (d Descriptor[T]) updatedMessage() string {
	if d.UpdatedMessage != "" {
		return d.UpdatedMessage
	}
	return d.Name + " updated successfully"
}

func (d Descriptor[T]) deletedMessage() string {
	if d.DeletedMessage != "" {
		return d.DeletedMessage
	}
	return d.Name + " deleted successfully"
}

func (d Descriptor[T]) emptyMessage() string {
	return "No " + d.Plural + " found."
}

func (d Descriptor[T]) label(item T) string {
	if d.Label != nil {
		return d.Label(item)
	}
	return fmt.Sprintf("%s %d", d.lowerName(), d.ID(item))
}

func (d Descriptor[T]) details() []Column[T] {
	if len(d.Details) > 0 {
		return d.Details
	}
	return d.Columns
}
