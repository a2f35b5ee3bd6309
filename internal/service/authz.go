package service

import (
	"fmt"

	"rentmarket-backend/internal/domain"
	"rentmarket-backend/internal/security"
)

// Action names an operation a caller wants to perform on a resource.
type Action string

const (
	ActionView       Action = "view"
	ActionCreate     Action = "create"
	ActionTransition Action = "transition" // vendor-side lifecycle transitions
	ActionCancel     Action = "cancel"
	ActionInvoice    Action = "invoice" // invoice creation/posting/manual payments
)

// Resource is the ownership surface the policy decides over.
type Resource struct {
	VendorID   int32
	CustomerID int32
}

func orderResource(o *domain.RentalOrder) Resource {
	return Resource{VendorID: o.VendorID, CustomerID: o.CustomerID}
}

func invoiceResource(i *domain.Invoice) Resource {
	return Resource{VendorID: i.VendorID, CustomerID: i.CustomerID}
}

// authorize is the single authorization policy for the engine. Platform
// admins may do anything; vendors drive vendor-side operations on their own
// resources; customers may view, create and cancel their own orders.
func authorize(caller security.Caller, action Action, res Resource) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.OwnsVendor(res.VendorID) {
		return nil
	}
	if caller.Role == security.RoleCustomer && caller.UserID == res.CustomerID {
		switch action {
		case ActionView, ActionCreate, ActionCancel:
			return nil
		}
	}
	return fmt.Errorf("user %d (%s) may not %s this resource: %w",
		caller.UserID, caller.Role, action, domain.ErrForbidden)
}
