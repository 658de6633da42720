// Package services implements the driving port interfaces.
// Services contain the core pipeline logic (scrape, embed, search) and
// orchestrate calls to driven ports (adapters).
//
// Services depend only on domain and ports, never on a concrete adapter.
package services
