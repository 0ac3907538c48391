// Package integration provides integration tests for the usersync service.
// These tests run the complete service against a PostgreSQL container and
// stub upstream APIs, covering both the scheduled server and single passes.
package integration
