// Package gate decides which item-level controls are visible to the current
// viewer. This is an affordance layer only: it hides or shows actions based
// on locally cached identity, which can be stale or forged. It grants no
// authorization — the backend re-checks ownership on every mutating call.
package gate

// Viewer is the locally cached identity used for visibility decisions.
// A zero UserID means no one is logged in.
type Viewer struct {
	UserID  int64
	IsAdmin bool
}

// CanManage reports whether the viewer sees owner controls (edit, delete,
// status toggle) for an item owned by ownerID.
func (v Viewer) CanManage(ownerID int64) bool {
	if v.IsAdmin {
		return true
	}
	return v.UserID != 0 && v.UserID == ownerID
}

// ShowContact reports whether the contact-seller affordance is visible.
// It is the exact inverse of CanManage: sellers do not contact themselves,
// and admins see the owner controls instead. A sold item shows no contact
// affordance to anyone.
func (v Viewer) ShowContact(ownerID int64, sold bool) bool {
	if sold {
		return false
	}
	return !v.CanManage(ownerID)
}
