// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It handles the
// details of query construction, execution, and data mapping between domain
// entities and database records.
//
// The task store compiles store.TaskPredicate values to SQL; the compiled
// WHERE condition and ORDER BY expression are required to evaluate exactly
// like TaskPredicate.Matches and domain.CompareViewOrder so that database
// and in-memory evaluation never disagree.
package postgres
