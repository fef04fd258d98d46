package handlers

// IncrementRequest records one view for a post.
type IncrementRequest struct {
	PostID string `doc:"The post to count a view for" example:"summer-exhibition" maxLength:"128" path:"postId"`
}

// IncrementResponse acknowledges an accepted increment. Acceptance is
// fire-and-forget: persistence happens on the next flush cycle.
type IncrementResponse struct {
	Body struct {
		PostID  string `doc:"The post the view was counted for" example:"summer-exhibition" json:"postId"`
		Pending int64  `doc:"Views buffered for this post since the last flush" example:"3" json:"pending"`
	}
}

// GetCountRequest asks for the current total of one post.
type GetCountRequest struct {
	PostID string `doc:"The post to read" example:"summer-exhibition" maxLength:"128" path:"postId"`
}

// GetCountResponse carries one post's total, buffered views included.
type GetCountResponse struct {
	Body struct {
		PostID string `doc:"The post"           example:"summer-exhibition" json:"postId"`
		Count  int64  `doc:"Current view total" example:"42"                json:"count"`
	}
}

// ListCountsResponse carries totals for all posts.
type ListCountsResponse struct {
	Body struct {
		Counts map[string]int64 `doc:"View totals keyed by post id" json:"counts"`
	}
}

// FlushRequest triggers a flush cycle. The token is an optional shared secret
// for external schedulers.
type FlushRequest struct {
	Token string `doc:"Shared flush secret" header:"X-Flush-Token" required:"false"`
}

// FlushResponse reports one flush cycle's outcome.
type FlushResponse struct {
	Body struct {
		CycleID   string `doc:"Correlation id of the cycle"         example:"Vq7zH2kR3mFa" json:"cycleId"`
		Processed int    `doc:"Records updated successfully"        example:"12"           json:"processed"`
		Skipped   int    `doc:"Buffered keys with no record"        example:"1"            json:"skipped"`
		Errors    int    `doc:"Sub-operations rejected by the store" example:"0"           json:"errors"`
	}
}

// CreateRecordRequest provisions a counter record for a post.
type CreateRecordRequest struct {
	PostID string `doc:"The post to provision" example:"summer-exhibition" maxLength:"128" path:"postId"`
}

// CreateRecordResponse carries the newly created record.
type CreateRecordResponse struct {
	Body struct {
		ID     string `doc:"Store-assigned record id" json:"id"`
		PostID string `doc:"The post"                 json:"postId"`
	}
}
