// Package integration contains the upstream commerce platform bounded context.
//
// Key concepts:
//   - CatalogSource: port for reading the merchant's catalog and locations upstream
//     and for exchanging and refreshing OAuth tokens
//   - CatalogBatch: the complete upstream catalog snapshot, fetched before anything
//     is reconciled so parent references resolve against the whole catalog
//   - WebhookEvent: a verified notification pushed by the upstream
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
