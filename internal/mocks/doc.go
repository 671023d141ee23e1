// Package mocks provides centralized mock implementations for testing.
//
// This package contains mock implementations of interfaces used throughout the application,
// facilitating consistent and DRY testing across the codebase. Instead of defining
// inline mocks in individual test files, these standardized mock implementations
// can be reused.
//
// Key Features:
//
//   - Consistent mock behavior across different test packages
//   - Simplified test setup with reusable mock implementations
//   - Reduced duplication of mock logic across test files
//   - Easy maintenance of mock behaviors in a central location
//
// Usage:
//
// Import the mocks package in your test file and create the required mock:
//
//	import "github.com/daylist/daylist-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    mockStore := mocks.NewMockTaskStore(task1, task2)
//	    mockStore.CountFn = func(ctx context.Context, tenantID, userID uuid.UUID, pred store.TaskPredicate) (int, error) {
//	        return 0, errors.New("boom")
//	    }
//
//	    // Use the mock in your test...
//	}
//
// The default implementations are deliberately faithful: MockTaskStore
// evaluates predicates and sorts with the same canonical ordering the
// SQL store promises, so view engine tests exercise real filtering
// semantics against in-memory data.
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
//  4. Update existing tests to use the centralized mock implementation
package mocks
