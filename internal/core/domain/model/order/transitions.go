package order

import "slices"

// Edge is one allowed (from, to) move together with the roles that may perform it.
type Edge struct {
	From  Status
	To    Status
	Roles []Role
}

// Allows reports whether role may traverse the edge.
func (e Edge) Allows(role Role) bool {
	return slices.Contains(e.Roles, role)
}

var edges = []Edge{
	{From: Pending, To: Accepted, Roles: []Role{RoleVendor}},
	{From: Pending, To: Rejected, Roles: []Role{RoleVendor}},
	{From: Accepted, To: Preparing, Roles: []Role{RoleVendor}},
	{From: Preparing, To: HandedOver, Roles: []Role{RoleVendor}},
	{From: HandedOver, To: PickedUp, Roles: []Role{RoleRider}},
	{From: PickedUp, To: OnTheWay, Roles: []Role{RoleRider}},
	{From: OnTheWay, To: Delivered, Roles: []Role{RoleRider}},
	// Cancellation stops at handover: once the rider holds the parcel it must be delivered.
	{From: Pending, To: Cancelled, Roles: []Role{RoleAdmin, RoleCustomer}},
	{From: Accepted, To: Cancelled, Roles: []Role{RoleAdmin, RoleCustomer}},
	{From: Preparing, To: Cancelled, Roles: []Role{RoleAdmin, RoleCustomer}},
}

// Edges returns a copy of the transition table.
func Edges() []Edge {
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{From: e.From, To: e.To, Roles: slices.Clone(e.Roles)}
	}
	return out
}

// FindEdge looks up the edge from -> to.
func FindEdge(from, to Status) (Edge, bool) {
	for _, e := range edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}
