// Package shared holds code used across layers that belongs to no single
// domain package.
//
// The testutil subpackage provides a buffered slog handler for asserting on
// log output and fixtures for journal tables (CSV text and XLSX workbooks).
//
//	func TestImport(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    data := testutil.WorkbookBytes(t, testutil.SampleTable())
//	    ...
//	    testutil.AssertLogContains(t, logs, slog.LevelInfo, "journal imported")
//	}
package shared
