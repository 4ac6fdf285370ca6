// Package migrations registers the schema changes with pkg/migration.
// Import it for side effects wherever migrations are run.
package migrations
