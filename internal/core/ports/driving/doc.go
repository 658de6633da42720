// Package driving defines the interfaces that adapters call IN to core.
//
// These are the "driving" or "primary" ports in hexagonal architecture.
// The CLI and MCP server depend on these interfaces; core services
// implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or driven implementation
package driving
