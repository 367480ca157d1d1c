// Package accesscontrol implements tenant memberships and the static role and
// permission model shared by the public comment back office.
//
// Layering:
// - domain: roles, permissions, the policy matrix and the owner invariant
// - application: membership lifecycle use cases over explicit ports
// - ports: persistence, clock, id and notification boundaries
// - adapters: HTTP handler, memory store and gorm repository
// - transport: module-private DTOs for HTTP contracts
//
// Other contexts never import this package. The composition root bridges
// their policy ports to domain/services.
package accesscontrol
