package digest

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

func newTestService(t *testing.T, now time.Time) Service {
	t.Helper()
	svc, err := NewService(
		logger.New(logger.Options{ServiceName: "test"}),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)
	return svc
}

func threadPayload(post string, comments ...string) json.RawMessage {
	children := ""
	for i, c := range comments {
		if i > 0 {
			children += ","
		}
		children += fmt.Sprintf(`{"data":%s}`, c)
	}
	return json.RawMessage(fmt.Sprintf(
		`[{"data":{"children":[{"data":%s}]}},{"data":{"children":[%s]}}]`,
		post, children,
	))
}

func TestAnalyze_MetricsFromPostAge(t *testing.T) {
	now := time.Unix(1_700_007_200, 0) // post created 2h earlier
	svc := newTestService(t, now)

	payload := threadPayload(`{
		"subreddit":"golang","title":"Launch thread","author":"op",
		"created_utc":1700000000,"permalink":"/r/golang/comments/abc/launch/",
		"score":120,"num_comments":60,"upvote_ratio":0.93
	}`)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)

	assert.Equal(t, 2.0, analysis.Metrics.HoursLive)
	assert.Equal(t, 60.0, analysis.Metrics.VelocityPerHour)
	assert.Equal(t, 30.0, analysis.Metrics.CommentsPerHour)
	assert.Equal(t, 0.5, analysis.Metrics.ControversyRatio)
	assert.Equal(t, "https://www.reddit.com/r/golang/comments/abc/launch/", analysis.Post.Permalink)
	assert.NotEmpty(t, analysis.ID)
}

func TestAnalyze_ControversyGuardsZeroScore(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_000_100, 0))

	payload := threadPayload(`{"title":"meh","created_utc":1700000000,"score":0,"num_comments":10}`)
	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)
	assert.Equal(t, 10.0, analysis.Metrics.ControversyRatio)
}

func TestAnalyze_KeywordsAndBigrams(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	payload := threadPayload(
		`{"title":"generics generics proposal","created_utc":1700000000,"score":1,"num_comments":2}`,
		`{"body":"generics proposal looks solid","score":3}`,
		`{"body":"the and for with","score":1}`,
	)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)

	require.NotEmpty(t, analysis.Keywords.TopUnigrams)
	assert.Equal(t, KeywordCount{Term: "generics", Count: 3}, analysis.Keywords.TopUnigrams[0])
	assert.Contains(t, analysis.Keywords.TopBigrams, KeywordCount{Term: "generics proposal", Count: 2})

	for _, unigram := range analysis.Keywords.TopUnigrams {
		assert.NotEqual(t, "the", unigram.Term, "stopwords are excluded")
	}
}

func TestAnalyze_LinksNormalizeDomains(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	payload := threadPayload(
		`{"title":"links","selftext":"see https://www.example.com/a) and https://example.com/b.","created_utc":1700000000,"score":1,"num_comments":1}`,
		`{"body":"also https://blog.example.org/post,","score":1}`,
	)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)

	require.Len(t, analysis.Links.Samples, 3)
	assert.Equal(t, "https://www.example.com/a", analysis.Links.Samples[0].URL, "trailing punctuation trimmed")
	assert.Equal(t, "example.com", analysis.Links.Samples[0].Domain, "www. stripped")
	assert.Contains(t, analysis.Links.TopDomains, KeywordCount{Term: "example.com", Count: 2})
	assert.Contains(t, analysis.Links.TopDomains, KeywordCount{Term: "blog.example.org", Count: 1})
}

func TestAnalyze_SentimentAndQuestionRate(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	payload := threadPayload(
		`{"title":"release","created_utc":1700000000,"score":10,"num_comments":4}`,
		`{"body":"love this, great work","score":5}`,
		`{"body":"terrible bug, hate it","score":2}`,
		`{"body":"how does caching work?","score":1}`,
		`{"body":"shipping next week","score":0}`,
	)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)

	assert.Equal(t, 1, analysis.Sentiment.Positive)
	assert.Equal(t, 1, analysis.Sentiment.Negative)
	assert.Equal(t, 2, analysis.Sentiment.Neutral)
	assert.Equal(t, 0.25, analysis.QuestionRate)
}

func TestAnalyze_TopCommentsRankedByScore(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	comments := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		comments = append(comments, fmt.Sprintf(`{"author":"u%d","body":"comment %d","score":%d}`, i, i, i))
	}
	payload := threadPayload(`{"title":"ranked","created_utc":1700000000,"score":1,"num_comments":7}`, comments...)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)

	require.Len(t, analysis.TopComments, 5)
	assert.Equal(t, 6, analysis.TopComments[0].Score)
	assert.Equal(t, 2, analysis.TopComments[4].Score)
}

func TestAnalyze_SkipsNonCommentChildren(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	payload := threadPayload(
		`{"title":"stubs","created_utc":1700000000,"score":1,"num_comments":2}`,
		`{"count":12,"children":["abc"]}`,
		`{"body":"real comment","score":1}`,
	)

	analysis, err := svc.Analyze(payload)
	require.NoError(t, err)
	require.Len(t, analysis.TopComments, 1)
	assert.Equal(t, "real comment", analysis.TopComments[0].Body)
}

func TestAnalyze_RejectsMalformedPayloads(t *testing.T) {
	svc := newTestService(t, time.Unix(1_700_007_200, 0))

	cases := []json.RawMessage{
		json.RawMessage(`{"not":"an array"}`),
		json.RawMessage(`[{"data":{"children":[]}}]`),
		json.RawMessage(`[{"data":{"children":[]}},{"data":{"children":[]}}]`),
	}
	for _, payload := range cases {
		_, err := svc.Analyze(payload)
		typed := errors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, errors.CodeValidation, typed.Code())
	}
}
