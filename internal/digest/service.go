package digest

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dataranlabs/storefront-backend/pkg/errors"
	"github.com/dataranlabs/storefront-backend/pkg/logger"
)

const (
	permalinkBase        = "https://www.reddit.com"
	maxSentimentComments = 50
	topUnigramCount      = 12
	topBigramCount       = 8
	topDomainCount       = 8
	sampleLinkCount      = 10
	topCommentCount      = 5
	minHoursLive         = 0.001
)

// Service turns a raw thread payload into an Analysis.
type Service interface {
	Analyze(payload json.RawMessage) (*Analysis, error)
}

type service struct {
	logg *logger.Logger
	now  func() time.Time
}

// Option tweaks service construction.
type Option func(*service)

// WithClock overrides the time source used for age-based metrics.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(logg *logger.Logger, opts ...Option) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	s := &service{logg: logg, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Analyze expects the two-listing payload shape the thread platform
// serves: the submission listing followed by the comment listing. Only
// top-level comments are considered.
func (s *service) Analyze(payload json.RawMessage) (*Analysis, error) {
	var listings []listing
	if err := json.Unmarshal(payload, &listings); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "payload is not a thread listing array")
	}
	if len(listings) < 2 {
		return nil, errors.New(errors.CodeValidation, "payload must contain a post listing and a comment listing")
	}
	if len(listings[0].Data.Children) == 0 {
		return nil, errors.New(errors.CodeValidation, "post listing is empty")
	}

	var subject post
	if err := json.Unmarshal(listings[0].Data.Children[0].Data, &subject); err != nil {
		return nil, errors.Wrap(errors.CodeValidation, err, "decode post node")
	}

	comments := make([]comment, 0, len(listings[1].Data.Children))
	for _, child := range listings[1].Data.Children {
		var c comment
		if err := json.Unmarshal(child.Data, &c); err != nil || c.Body == "" {
			continue
		}
		comments = append(comments, c)
	}

	hours := s.hoursSince(subject.CreatedUTC)
	analysis := &Analysis{
		ID:   uuid.NewString(),
		Post: summarize(subject),
		Metrics: Metrics{
			HoursLive:        round2(hours),
			VelocityPerHour:  round2(float64(subject.Score) / hours),
			CommentsPerHour:  round2(float64(subject.NumComments) / hours),
			ControversyRatio: round2(float64(subject.NumComments) / math.Max(float64(subject.Score), 1)),
		},
	}

	bodies := make([]string, 0, len(comments))
	for _, c := range comments {
		bodies = append(bodies, c.Body)
	}
	tokens := append(tokenize(subject.Title), tokenize(strings.Join(bodies, " "))...)

	unigrams := make(map[string]int, len(tokens))
	for _, token := range tokens {
		unigrams[token]++
	}
	analysis.Keywords = Keywords{
		TopUnigrams: topN(unigrams, topUnigramCount),
		TopBigrams:  topN(bigrams(tokens), topBigramCount),
	}

	links := extractLinks(subject.SelfText)
	if subject.URL != "" {
		links = append(links, extractLinks(subject.URL)...)
	}
	for _, body := range bodies {
		links = append(links, extractLinks(body)...)
	}
	domains := make(map[string]int, len(links))
	for _, link := range links {
		domains[link.Domain]++
	}
	samples := links
	if len(samples) > sampleLinkCount {
		samples = samples[:sampleLinkCount]
	}
	analysis.Links = Links{TopDomains: topN(domains, topDomainCount), Samples: samples}

	sentimentPool := comments
	if len(sentimentPool) > maxSentimentComments {
		sentimentPool = sentimentPool[:maxSentimentComments]
	}
	for _, c := range sentimentPool {
		switch naiveSentiment(c.Body) {
		case positive:
			analysis.Sentiment.Positive++
		case negative:
			analysis.Sentiment.Negative++
		default:
			analysis.Sentiment.Neutral++
		}
	}

	if len(comments) > 0 {
		var questions int
		for _, c := range comments {
			if strings.Contains(c.Body, "?") {
				questions++
			}
		}
		analysis.QuestionRate = round2(float64(questions) / float64(len(comments)))
	}

	analysis.TopComments = topComments(comments)
	return analysis, nil
}

func (s *service) hoursSince(epochSec float64) float64 {
	hours := (float64(s.now().Unix()) - epochSec) / 3600
	return math.Max(hours, minHoursLive)
}

func summarize(subject post) PostSummary {
	summary := PostSummary{
		Subreddit:   subject.Subreddit,
		Title:       subject.Title,
		Author:      subject.Author,
		CreatedUTC:  int64(subject.CreatedUTC),
		Permalink:   permalinkBase + subject.Permalink,
		URL:         subject.URLOverridden,
		Domain:      subject.Domain,
		Score:       subject.Score,
		UpvoteRatio: subject.UpvoteRatio,
		NumComments: subject.NumComments,
		Awards:      subject.TotalAwardsReceived,
		Flair:       subject.LinkFlairText,
		IsVideo:     subject.IsVideo,
		IsGallery:   subject.IsGallery,
		Crossposts:  len(subject.CrosspostParents),
	}
	if summary.URL == "" {
		summary.URL = subject.URL
	}
	if subject.GalleryData != nil {
		summary.GalleryCount = len(subject.GalleryData.Items)
	}
	return summary
}

// topComments picks the highest-scored replies, stable on input order
// for equal scores.
func topComments(comments []comment) []TopComment {
	ranked := make([]comment, len(comments))
	copy(ranked, comments)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if len(ranked) > topCommentCount {
		ranked = ranked[:topCommentCount]
	}

	views := make([]TopComment, 0, len(ranked))
	for _, c := range ranked {
		view := TopComment{
			Author:      c.Author,
			Score:       c.Score,
			Body:        c.Body,
			Depth:       c.Depth,
			IsSubmitter: c.IsSubmitter,
		}
		if c.Permalink != "" {
			view.Permalink = permalinkBase + c.Permalink
		}
		views = append(views, view)
	}
	return views
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
