// Package mcp exposes a kiosk runtime to Model Context Protocol clients, so an
// agent can read the snapshot and drive the operator controls.
package mcp
