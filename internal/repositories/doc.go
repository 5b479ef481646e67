// package repositories provides the persistence layer for credentials and artists.
//
// Each repository owns a *sql.DB and wraps every logical operation in a single
// transaction: the credential replace, the per-batch artist reconciliation
// (including lazy genre creation), and the application-level cascade delete.
// Network I/O never happens inside a repository; callers complete all remote
// calls before invoking one.
package repositories
