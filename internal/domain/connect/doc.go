// Package connect contains the Connect bounded context.
// This context manages third-party wellness provider connections: OAuth
// authorization flows, stored credentials, and their lifecycle.
//
// Key concepts:
//   - ProviderConfig: static per-provider OAuth configuration, loaded once at startup
//   - TokenRecord: the access/refresh credential pair and expiry for one provider
//   - PendingAuthorization: ephemeral state nonce for an in-flight authorize redirect
//   - CredentialStore / AuthStateStore: ports for credential persistence
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package connect
