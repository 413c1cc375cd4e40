// Package pagination implements the skip/limit windowing policy used by
// listing endpoints. Windows stay stable across deletions through a
// caller-supplied count of items the caller saw disappear from previously
// fetched pages.
package pagination

// Skip computes the effective offset of a page. deletedDocCount shrinks the
// offset so the window does not re-skip items that shifted forward after
// earlier deletions; the result never goes below zero.
func Skip(page int, pageSize, deletedDocCount int64) int64 {
	if page < 1 {
		page = 1
	}
	skip := int64(page-1)*pageSize - deletedDocCount
	if skip < 0 {
		skip = 0
	}
	return skip
}
