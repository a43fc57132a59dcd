package usecase

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// 0や負数はデフォルトに寄せる。上限超えは400
func normalizePage(page, limit int) (int, int, error) {
	if page == 0 {
		page = defaultPage
	}
	if limit == 0 {
		limit = defaultLimit
	}
	if page < 1 {
		return 0, 0, badRequest("invalid page")
	}
	if limit < 1 || limit > maxLimit {
		return 0, 0, badRequest("invalid limit")
	}
	return page, limit, nil
}

func newPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
