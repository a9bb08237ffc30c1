package wikitree

import "context"

// Role is a coarse permission grant checked by core operations. The
// caller authenticates and resolves roles before calling into this
// package; wikitree never consults an identity provider itself.
type Role string

const (
	// RoleWikiManager can merge change requests and rewrite space routes.
	RoleWikiManager Role = "Wiki Manager"
	// RoleWikiApprover can merge change requests and approve reviews.
	RoleWikiApprover Role = "Wiki Approver"
	// RoleSystemManager has every capability RoleWikiManager has.
	RoleSystemManager Role = "System Manager"
	// RoleDirectWriter may mutate the live tree outside a change request.
	RoleDirectWriter Role = "Direct Writer"
)

// OpContext is passed explicitly instead of being read from an ambient
// framework singleton: it carries the caller's identity, granted roles,
// and the request's context.Context. It is taken by the operations that
// act on the caller's identity or roles: ChangeRequestService.Create,
// GetOrCreateDraft, ReviewAction and ListPendingReviews,
// LiveTreeStore.Reorder and UpdateRoutes, and MergeApplier.Merge. The
// other operations (BlobStore, RevisionStore, CREditor, DiffEngine,
// ThreeWayMerger and the remaining ChangeRequestService methods) take no
// OpContext.
type OpContext struct {
	Ctx       context.Context
	Principal string
	Roles     map[Role]bool
}

// NewOpContext builds an OpContext for principal with the given roles.
func NewOpContext(ctx context.Context, principal string, roles ...Role) OpContext {
	roleSet := make(map[Role]bool, len(roles))
	for _, r := range roles {
		roleSet[r] = true
	}
	return OpContext{Ctx: ctx, Principal: principal, Roles: roleSet}
}

// Has reports whether the caller holds role r.
func (c OpContext) Has(r Role) bool {
	return c.Roles[r]
}

// CanMergeOrApprove reports whether the caller may merge a change
// request or act as an approving reviewer.
func (c OpContext) CanMergeOrApprove() bool {
	return c.Has(RoleWikiManager) || c.Has(RoleWikiApprover) || c.Has(RoleSystemManager)
}

// CanWriteLiveTree reports whether the caller may mutate the live tree
// directly, bypassing the change-request workflow.
func (c OpContext) CanWriteLiveTree() bool {
	return c.Has(RoleDirectWriter) || c.Has(RoleWikiManager) || c.Has(RoleSystemManager)
}
