package services

import "math"

// normalizePage clamps page to [1, math.MaxInt/pageSize] and pageSize to
// [1, maxSize], using defaultSize when pageSize is not positive. The upper
// bound on page keeps pageOffset from overflowing.
func normalizePage(page, pageSize, defaultSize, maxSize int) (int, int) {
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	if page < 1 {
		page = 1
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize
}

func pageOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
