package api

const maxBodySize = 64 * 1024 // 64 KiB

type okResponse struct {
	OK bool `json:"ok"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// POST /api/todos/reorder request body. IDs stays nil when the key is
// absent or null, which handlers reject before touching the store.
type reorderRequest struct {
	IDs *[]int64 `json:"ids"`
}
