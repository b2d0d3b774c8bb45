// Package main provides the entry point for the group company mapping
// administration application. It initializes and runs a web server using
// the Fiber framework that allows operations users to search, create,
// update and delete mappings between GFAS accounts and group companies
// through a role-gated web console. The application uses gorm for data
// persistence and includes reference group maintenance, fee letter
// uploads and a per-account change history.
package main
