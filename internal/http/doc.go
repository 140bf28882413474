// Package http exposes the reservation engine over a small JSON API.
//
// Every endpoint except GET /healthz requires an HS256 bearer token whose
// subject is the actor ID:
//   - POST /reservations: body {"resource","start","end"} with timestamps in
//     "YYYY-MM-DD HH:MM". Responds 201 {"id"}.
//   - DELETE /reservations/{id}: owner or admin only. Responds 204.
//   - GET /reservations?sort=resource|actor|slot: all reservations, in
//     insertion order unless sort is given.
//   - GET /reservations/mine: reservations held by the caller.
//   - GET /availability?date=YYYY-MM-DD[&resource=name]: free slots inside the
//     business window for one resource, or for every resource.
//   - GET /resources, POST /resources, PUT /resources/{name},
//     DELETE /resources/{name}: resource catalog. Deleting a resource cancels
//     its reservations.
//
// Request and response DTOs live alongside their handlers.
package http
