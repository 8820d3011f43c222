package digest

import "encoding/json"

// listing mirrors the thread platform's envelope: a kind tag plus a data
// object holding child nodes.
type listing struct {
	Data struct {
		Children []struct {
			Data json.RawMessage `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// post is the submission node of a thread payload.
type post struct {
	Subreddit           string  `json:"subreddit"`
	Title               string  `json:"title"`
	Author              string  `json:"author"`
	SelfText            string  `json:"selftext"`
	CreatedUTC          float64 `json:"created_utc"`
	Permalink           string  `json:"permalink"`
	URL                 string  `json:"url"`
	URLOverridden       string  `json:"url_overridden_by_dest"`
	Domain              string  `json:"domain"`
	Score               int     `json:"score"`
	UpvoteRatio         float64 `json:"upvote_ratio"`
	NumComments         int     `json:"num_comments"`
	TotalAwardsReceived int     `json:"total_awards_received"`
	LinkFlairText       string  `json:"link_flair_text"`
	IsVideo             bool    `json:"is_video"`
	IsGallery           bool    `json:"is_gallery"`
	GalleryData         *struct {
		Items []json.RawMessage `json:"items"`
	} `json:"gallery_data"`
	CrosspostParents []json.RawMessage `json:"crosspost_parent_list"`
}

// comment is one reply node. Non-comment children (e.g. "more" stubs)
// decode with an empty Body and are skipped.
type comment struct {
	Author      string `json:"author"`
	Body        string `json:"body"`
	Score       int    `json:"score"`
	Permalink   string `json:"permalink"`
	Depth       int    `json:"depth"`
	IsSubmitter bool   `json:"is_submitter"`
}

// KeywordCount is one term with its occurrence count.
type KeywordCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Link is an extracted URL with its normalized domain.
type Link struct {
	URL    string `json:"url"`
	Domain string `json:"domain"`
}

// PostSummary describes the submission itself.
type PostSummary struct {
	Subreddit    string  `json:"subreddit"`
	Title        string  `json:"title"`
	Author       string  `json:"author"`
	CreatedUTC   int64   `json:"createdUtc"`
	Permalink    string  `json:"permalink"`
	URL          string  `json:"url,omitempty"`
	Domain       string  `json:"domain,omitempty"`
	Score        int     `json:"score"`
	UpvoteRatio  float64 `json:"upvoteRatio"`
	NumComments  int     `json:"numComments"`
	Awards       int     `json:"awards"`
	Flair        string  `json:"flair,omitempty"`
	IsVideo      bool    `json:"isVideo"`
	IsGallery    bool    `json:"isGallery"`
	GalleryCount int     `json:"galleryCount"`
	Crossposts   int     `json:"crossposts"`
}

// Metrics are the engagement rates derived from the post's age.
type Metrics struct {
	HoursLive        float64 `json:"hoursLive"`
	VelocityPerHour  float64 `json:"velocityScorePerHour"`
	CommentsPerHour  float64 `json:"commentsPerHour"`
	ControversyRatio float64 `json:"controversyRatio"`
}

// Keywords are the top recurring terms and phrases.
type Keywords struct {
	TopUnigrams []KeywordCount `json:"topUnigrams"`
	TopBigrams  []KeywordCount `json:"topBigrams"`
}

// Links aggregates everything linked from the thread.
type Links struct {
	TopDomains []KeywordCount `json:"topDomains"`
	Samples    []Link         `json:"samples"`
}

// Sentiment counts comments per naive polarity bucket.
type Sentiment struct {
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
}

// TopComment is one of the highest-scored replies.
type TopComment struct {
	Author      string `json:"author"`
	Score       int    `json:"score"`
	Body        string `json:"body"`
	Permalink   string `json:"permalink,omitempty"`
	Depth       int    `json:"depth"`
	IsSubmitter bool   `json:"isSubmitter"`
}

// Analysis is the full digest of one thread.
type Analysis struct {
	ID           string       `json:"id"`
	Post         PostSummary  `json:"post"`
	Metrics      Metrics      `json:"metrics"`
	Keywords     Keywords     `json:"keywords"`
	Links        Links        `json:"links"`
	Sentiment    Sentiment    `json:"sentiment"`
	QuestionRate float64      `json:"questionRate"`
	TopComments  []TopComment `json:"topComments"`
}
