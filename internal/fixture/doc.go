// Package fixture provides the database that compiled SQL is executed
// against in scenarios and in `dict2sql run`.
//
// The default fixture is an in-memory SQLite database seeded with a small
// subset of the Chinook sample schema (Artist, Album, Customer). Open also
// accepts any registered database/sql driver, so the same Run path works
// against PostgreSQL or MySQL when a DSN is supplied.
//
// Every value read back is rendered as text. NULL becomes the string
// "NULL", which keeps expected rows in YAML scenarios simple.
package fixture
