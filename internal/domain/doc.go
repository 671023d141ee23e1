// Package domain contains the core business entities, value objects, and
// domain logic of the application: tasks as read by the view engine, the
// per-user time preferences that drive boundary computation, and the filter
// vocabulary shared by list and count queries. It is independent of any
// specific infrastructure or delivery mechanism.
package domain
