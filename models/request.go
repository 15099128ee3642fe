package models

// SearchRequest is bound from the GET /query query string.
type SearchRequest struct {
	Query string `form:"query" binding:"required"`
	Limit int    `form:"limit,default=5"`
}
