// Package harness runs end-to-end query scenarios.
//
// A scenario pairs a query AST with the SQL it must compile to and with
// assertions about what that SQL does when executed against a freshly
// seeded fixture database.
//
// # Scenario Format
//
//	name: join_where_quoted
//	description: "Albums by AC/DC through an inner join"
//	dialect: ansi            # optional, ansi or mysql
//	setup:                   # optional, compiled and executed first
//	  - Insert: {Table: Artist, Data: {ArtistId: 300, Name: Temp}}
//	query:
//	  Select: [Title, Artist.Name]
//	  From: {Join: INNER JOIN, Sx: Album, Dx: Artist,
//	         On: {Op: "=", Sx: Artist.ArtistId, Dx: Album.ArtistId}}
//	expect_sql: SELECT Title,Artist.Name FROM ...
//	assertions:
//	  - type: rows
//	    rows: [["For Those About To Rock We Salute You", "AC/DC"]]
//	  - type: final_state
//	    table: Artist
//	    where: {ArtistId: 300}
//	    expect: {Name: Temp}
//
// Query keys keep their file order, which is the order Insert and Update
// columns are emitted in.
//
// # Assertion Types
//
//   - rows: the result rows, compared as a multiset unless ordered is set
//   - row_count: the number of result rows
//   - affected: rows affected by a non-SELECT statement
//   - final_state: one row of a table after the statement ran
//
// A scenario may instead set expect_error to a substring of the compile
// error; nothing is executed in that case.
//
// # Usage
//
//	scenarios, err := harness.LoadScenarios(afero.NewOsFs(), "testdata/scenarios")
//	h := harness.New()
//	for _, s := range scenarios {
//	    result, err := h.Run(ctx, s)
//	    ...
//	}
package harness
