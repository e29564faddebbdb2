package domain

import "time"

// Sentinel links used when a search result carries no usable target.
const (
	UnknownLink = "Unknown Link"
	UnknownURL  = "Unknown URL"
)

// NoSummary is the snippet placeholder for result blocks without a snippet.
const NoSummary = "No summary available."

// RatingError is the rating sentinel for articles that could not be rated.
const RatingError = "Error"

// SearchResultStub is a parsed search result before its content is fetched.
type SearchResultStub struct {
	Rank    int
	Title   string
	Link    string
	Snippet string
}

// HasLink reports whether the stub points to a real target.
func (s SearchResultStub) HasLink() bool {
	return s.Link != "" && s.Link != UnknownLink && s.Link != UnknownURL
}

// FetchStatus enumerates the outcomes of a content fetch.
type FetchStatus string

const (
	FetchOK        FetchStatus = "ok"
	FetchForbidden FetchStatus = "forbidden"
	FetchHTTPError FetchStatus = "http_error"
	FetchTimeout   FetchStatus = "timeout"
	FetchFailed    FetchStatus = "error"
)

// ArticleContent is the extracted text of one linked page.
type ArticleContent struct {
	URL    string
	Body   string
	Status FetchStatus
}

// Text returns the body only when the fetch succeeded.
func (c ArticleContent) Text() string {
	if c.Status != FetchOK {
		return ""
	}
	return c.Body
}

// RankedArticle is one row of an aggregated result set.
type RankedArticle struct {
	Num     int    `json:"num"`
	Link    string `json:"link"`
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
	Rating  string `json:"rating"`
}

// AggregateStatus is the batch-level outcome of a query.
type AggregateStatus string

const (
	StatusSuccess AggregateStatus = "success"
	StatusError   AggregateStatus = "error"
)

// AggregateResult carries the ranked articles for one query cycle.
type AggregateResult struct {
	Status  AggregateStatus
	Message string
	Results []RankedArticle
}

// OK reports whether the aggregation produced results.
func (r AggregateResult) OK() bool {
	return r.Status == StatusSuccess && len(r.Results) > 0
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is a single entry of the session log.
type ConversationTurn struct {
	SessionID string
	Role      Role
	Content   string
	CreatedAt time.Time
}
