package feed

// Flag values are part of the published output contract.
const (
	FlagPending     = "Pending"
	FlagLikelyHuman = "Likely Human"
	FlagUncertain   = "Uncertain"
	FlagLikelyAI    = "Likely AI/Scam"
	FlagError       = "Error"
)

// Post is one scored content item. Created partial by the searcher,
// scored exactly once during aggregation, then immutable.
type Post struct {
	ID                 string  `json:"id"`
	Username           string  `json:"username"`
	ImageURL           string  `json:"image_url"`
	Caption            string  `json:"caption"`
	Likes              int     `json:"likes"`
	RiskScore          int     `json:"risk_score"`
	AIImageProbability float64 `json:"ai_image_probability"`
	Flag               string  `json:"flag"`
}

// FeedResult is the assembled output of one aggregation run. Count
// always equals len(Posts). Owned exclusively by the caller.
type FeedResult struct {
	Geo     string `json:"geo"`
	Updated string `json:"updated,omitempty"`
	Count   int    `json:"count"`
	Posts   []Post `json:"posts"`
}
