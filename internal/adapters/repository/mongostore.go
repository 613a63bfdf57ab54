package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/trend"
	"github.com/amore/clue/internal/domain/types"
	"github.com/amore/clue/pkg/metrics"
)

const (
	defaultConnectTimeout = 10 * time.Second
	batchJobType          = "llm_workflow"
)

// MongoStore is the MongoDB-backed Store. It is safe for concurrent use.
type MongoStore struct {
	uri            string
	database       string
	connectTimeout time.Duration

	mu     sync.RWMutex
	client *mongo.Client
	db     *mongo.Database
}

var _ Store = (*MongoStore)(nil)

// NewMongoStore returns an unconnected store for uri and database.
func NewMongoStore(uri, database string, opts ...Option) *MongoStore {
	s := &MongoStore{
		uri:            uri,
		database:       database,
		connectTimeout: defaultConnectTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.SetStoreConnected(s.db != nil)
	return s
}

// Connect dials MongoDB and pings the primary within the connect timeout.
func (s *MongoStore) Connect(ctx context.Context) error {
	if s.uri == "" {
		return fmt.Errorf("connect: %w: empty uri", ErrNotConnected)
	}
	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(s.uri).
		SetConnectTimeout(s.connectTimeout).
		SetServerSelectionTimeout(s.connectTimeout))
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return fmt.Errorf("ping: %w", err)
	}

	s.mu.Lock()
	s.client = client
	s.db = client.Database(s.database)
	s.mu.Unlock()
	metrics.SetStoreConnected(true)
	return nil
}

// Close disconnects the client if Connect succeeded.
func (s *MongoStore) Close(ctx context.Context) error {
	s.mu.Lock()
	client := s.client
	s.client, s.db = nil, nil
	s.mu.Unlock()
	metrics.SetStoreConnected(false)
	if client == nil {
		return nil
	}
	return client.Disconnect(ctx)
}

// Connected reports whether a database handle is available.
func (s *MongoStore) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db != nil
}

func (s *MongoStore) collection(name string) (*mongo.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, ErrNotConnected
	}
	return s.db.Collection(name), nil
}

// observe records latency and outcome of one query.
func observe(collection, operation string, start time.Time, err *error) {
	metrics.RecordStoreQuery(collection, operation, float64(time.Since(start).Milliseconds()), *err)
}

// KeywordLeaderboard groups processed_keywords by keyword, ordered by average score.
func (s *MongoStore) KeywordLeaderboard(ctx context.Context, q LeaderboardQuery) (out []model.KeywordAggregate, err error) {
	coll, err := s.collection(CollProcessedKeywords)
	if err != nil {
		return nil, err
	}
	defer observe(CollProcessedKeywords, "aggregate", time.Now(), &err)

	match := bson.M{
		"keywordType": trend.KeywordTypeFor(q.ItemType),
		"country":     q.Country,
	}
	if q.Category != "" && q.Category != types.CategoryAll {
		match["category"] = q.Category
	}
	if level := trend.NormalizeTrendLevel(q.TrendLevel); level != "" && level != types.LevelAll {
		match["trendLevel"] = level
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$keyword",
			"avgScore":    bson.M{"$avg": "$score"},
			"count":       bson.M{"$sum": 1},
			"trendLevel":  bson.M{"$first": "$trendLevel"},
			"category":    bson.M{"$first": "$category"},
			"effects":     bson.M{"$first": "$effects"},
			"koreanName":  bson.M{"$first": "$koreanName"},
			"description": bson.M{"$first": "$description"},
			"sources":     bson.M{"$addToSet": "$sourceId"},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "avgScore", Value: -1}}}},
		{{Key: "$limit", Value: limitOr(q.Limit, trend.MaxLeaderboard)}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	err = cur.All(ctx, &out)
	return out, err
}

// TrendDocuments returns trends documents ordered by score desc.
func (s *MongoStore) TrendDocuments(ctx context.Context, country string, limit int) (out []model.Trend, err error) {
	coll, err := s.collection(CollTrends)
	if err != nil {
		return nil, err
	}
	defer observe(CollTrends, "find", time.Now(), &err)

	filter := bson.M{}
	if country != "" {
		filter["country"] = country
	}
	err = s.findAll(ctx, coll, filter, options.Find().SetSort(desc("score")).SetLimit(int64(limitOr(limit, 100))), &out)
	return out, err
}

// PrecomputedLeaderboard returns leaderboard rows ordered by score desc.
func (s *MongoStore) PrecomputedLeaderboard(ctx context.Context, q LeaderboardQuery) (out []model.LeaderboardEntry, err error) {
	coll, err := s.collection(CollLeaderboard)
	if err != nil {
		return nil, err
	}
	defer observe(CollLeaderboard, "find", time.Now(), &err)

	filter := bson.M{"country": q.Country, "itemType": q.ItemType}
	if q.Category != "" && q.Category != types.CategoryAll {
		filter["$or"] = bson.A{
			bson.M{"category": q.Category},
			bson.M{"mainCategory": q.Category},
		}
	}
	if level := trend.NormalizeTrendLevel(q.TrendLevel); level != "" && level != types.LevelAll {
		filter["trendLevel"] = level
	}
	opts := options.Find().SetSort(desc("score")).SetLimit(int64(limitOr(q.Limit, trend.MaxLeaderboard)))
	err = s.findAll(ctx, coll, filter, opts, &out)
	return out, err
}

type weekRow struct {
	ID struct {
		Year int `bson:"year"`
		Week int `bson:"week"`
	} `bson:"_id"`
	Count int `bson:"count"`
}

// WeeklyReviewCounts groups raw_reviews posted in [since, until] by ISO week, oldest first.
func (s *MongoStore) WeeklyReviewCounts(ctx context.Context, country string, since, until time.Time) (out []model.WeekCount, err error) {
	coll, err := s.collection(CollRawReviews)
	if err != nil {
		return nil, err
	}
	defer observe(CollRawReviews, "aggregate", time.Now(), &err)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"country":  country,
			"postedAt": bson.M{"$gte": since, "$lte": until},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"week": bson.M{"$isoWeek": "$postedAt"},
				"year": bson.M{"$isoWeekYear": "$postedAt"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: 1}, {Key: "_id.week", Value: 1}}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []weekRow
	if err = cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out = make([]model.WeekCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.WeekCount{Year: r.ID.Year, Week: r.ID.Week, Count: r.Count})
	}
	return out, nil
}

// PlatformStats returns platform stats, newest first. A limit of 0 means no limit.
func (s *MongoStore) PlatformStats(ctx context.Context, country, category string, limit int) (out []model.PlatformStat, err error) {
	coll, err := s.collection(CollPlatformStats)
	if err != nil {
		return nil, err
	}
	defer observe(CollPlatformStats, "find", time.Now(), &err)

	filter := bson.M{"country": country}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().SetSort(desc("date"))
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	err = s.findAll(ctx, coll, filter, opts, &out)
	return out, err
}

// LatestPlatformStat returns the newest stats for one platform.
func (s *MongoStore) LatestPlatformStat(ctx context.Context, platform, country string) (out model.PlatformStat, err error) {
	coll, err := s.collection(CollPlatformStats)
	if err != nil {
		return out, err
	}
	defer observe(CollPlatformStats, "find_one", time.Now(), &err)

	err = findOne(ctx, coll, bson.M{"platform": platform, "country": country},
		options.FindOne().SetSort(desc("date")), &out)
	return out, err
}

// RecentPlatformStats returns stats dated at or after since, newest first.
func (s *MongoStore) RecentPlatformStats(ctx context.Context, country, platform string, since time.Time) (out []model.PlatformStat, err error) {
	coll, err := s.collection(CollPlatformStats)
	if err != nil {
		return nil, err
	}
	defer observe(CollPlatformStats, "find", time.Now(), &err)

	filter := bson.M{"country": country, "date": bson.M{"$gte": since}}
	if platform != "" {
		filter["platform"] = platform
	}
	err = s.findAll(ctx, coll, filter, options.Find().SetSort(desc("date")), &out)
	return out, err
}

// CategoryProducts returns products of a category ordered by sales rank.
func (s *MongoStore) CategoryProducts(ctx context.Context, country, category string, limit int) (out []model.Product, err error) {
	coll, err := s.collection(CollProducts)
	if err != nil {
		return nil, err
	}
	defer observe(CollProducts, "find", time.Now(), &err)

	filter := bson.M{"country": country}
	if category != "" && category != types.CategoryAll {
		filter["$or"] = bson.A{
			bson.M{"category": category},
			bson.M{"mainCategory": category},
			bson.M{"category": bson.M{"$regex": regexp.QuoteMeta(category), "$options": "i"}},
		}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "salesRank", Value: 1}}).
		SetLimit(int64(limitOr(limit, 200)))
	err = s.findAll(ctx, coll, filter, opts, &out)
	return out, err
}

// ProcessedKeywords returns every processed keyword of a country and category.
func (s *MongoStore) ProcessedKeywords(ctx context.Context, country, category string) (out []model.ProcessedKeyword, err error) {
	coll, err := s.collection(CollProcessedKeywords)
	if err != nil {
		return nil, err
	}
	defer observe(CollProcessedKeywords, "find", time.Now(), &err)

	filter := bson.M{"country": country}
	if category != "" && category != types.CategoryAll {
		filter["category"] = category
	}
	err = s.findAll(ctx, coll, filter, options.Find(), &out)
	return out, err
}

type typeSentimentRow struct {
	ID struct {
		ReviewType string `bson:"reviewType"`
		Sentiment  string `bson:"sentiment"`
	} `bson:"_id"`
	Count int `bson:"count"`
}

// ReviewTypeSentiment counts review sentences per review type and sentiment.
func (s *MongoStore) ReviewTypeSentiment(ctx context.Context, country string, keywords []string) (out []model.TypeSentimentCount, err error) {
	coll, err := s.collection(CollReviewSentences)
	if err != nil {
		return nil, err
	}
	defer observe(CollReviewSentences, "aggregate", time.Now(), &err)

	match := bson.M{"country": country}
	if or := keywordMatch(keywords); or != nil {
		match["$or"] = or
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{
			"_id":   bson.M{"reviewType": "$reviewType", "sentiment": "$sentiment"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []typeSentimentRow
	if err = cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out = make([]model.TypeSentimentCount, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.TypeSentimentCount{
			ReviewType: r.ID.ReviewType,
			Sentiment:  r.ID.Sentiment,
			Count:      r.Count,
		})
	}
	return out, nil
}

// SentencesByType returns the newest sentences of a review type.
func (s *MongoStore) SentencesByType(ctx context.Context, q SentenceQuery) (out []model.ReviewSentence, err error) {
	coll, err := s.collection(CollReviewSentences)
	if err != nil {
		return nil, err
	}
	defer observe(CollReviewSentences, "find", time.Now(), &err)

	base := bson.M{"country": q.Country, "reviewType": q.ReviewType, "sentiment": q.Sentiment}
	opts := options.Find().SetSort(desc("createdAt")).SetLimit(int64(limitOr(q.Limit, 10)))

	or := keywordMatch(q.Keywords)
	if or == nil {
		err = s.findAll(ctx, coll, base, opts, &out)
		return out, err
	}
	filter := bson.M{"$or": or}
	for k, v := range base {
		filter[k] = v
	}
	if err = s.findAll(ctx, coll, filter, opts, &out); err != nil || len(out) > 0 {
		return out, err
	}
	err = s.findAll(ctx, coll, base, opts, &out)
	return out, err
}

type sentimentRow struct {
	Sentiment string `bson:"_id"`
	Count     int    `bson:"count"`
}

// SentimentCounts counts raw reviews per sentiment.
func (s *MongoStore) SentimentCounts(ctx context.Context, country, keyword string) (out map[string]int, err error) {
	coll, err := s.collection(CollRawReviews)
	if err != nil {
		return nil, err
	}
	defer observe(CollRawReviews, "aggregate", time.Now(), &err)

	match := bson.M{"country": country}
	if keyword != "" {
		match["keyword"] = keyword
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$sentiment", "count": bson.M{"$sum": 1}}}},
	}
	cur, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	var rows []sentimentRow
	if err = cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out = make(map[string]int, len(rows))
	for _, r := range rows {
		out[r.Sentiment] = r.Count
	}
	return out, nil
}

// ReviewDetails returns the newest raw reviews as stored.
func (s *MongoStore) ReviewDetails(ctx context.Context, country, keyword, sentiment string, limit int) (out []bson.M, err error) {
	coll, err := s.collection(CollRawReviews)
	if err != nil {
		return nil, err
	}
	defer observe(CollRawReviews, "find", time.Now(), &err)

	filter := bson.M{"country": country}
	if keyword != "" {
		filter["keyword"] = keyword
	}
	if sentiment != "" {
		filter["sentiment"] = sentiment
	}
	opts := options.Find().SetSort(desc("postedAt")).SetLimit(int64(limitOr(limit, 10)))
	err = s.findAll(ctx, coll, filter, opts, &out)
	return out, err
}

// CountReviews counts raw reviews matching f.
func (s *MongoStore) CountReviews(ctx context.Context, f ReviewFilter) (n int64, err error) {
	coll, err := s.collection(CollRawReviews)
	if err != nil {
		return 0, err
	}
	defer observe(CollRawReviews, "count", time.Now(), &err)

	filter := bson.M{}
	setIf(filter, "country", f.Country)
	setIf(filter, "keyword", f.Keyword)
	setIf(filter, "sentiment", f.Sentiment)
	setIf(filter, "reviewType", f.ReviewType)
	if f.Content != "" {
		filter["content"] = bson.M{"$regex": regexp.QuoteMeta(f.Content), "$options": "i"}
	}
	if !f.Since.IsZero() || !f.Until.IsZero() {
		window := bson.M{}
		if !f.Since.IsZero() {
			window["$gte"] = f.Since
		}
		if !f.Until.IsZero() {
			window["$lt"] = f.Until
		}
		filter["postedAt"] = window
	}
	return coll.CountDocuments(ctx, filter)
}

// ProductsByKeyword searches product keywords, names, descriptions and ingredients.
func (s *MongoStore) ProductsByKeyword(ctx context.Context, country, keyword string, limit int) (out []model.Product, err error) {
	coll, err := s.collection(CollProducts)
	if err != nil {
		return nil, err
	}
	defer observe(CollProducts, "find", time.Now(), &err)

	re := bson.M{"$regex": regexp.QuoteMeta(keyword), "$options": "i"}
	filter := bson.M{
		"country": country,
		"$or": bson.A{
			bson.M{"keywords": re},
			bson.M{"productName": re},
			bson.M{"description": re},
			bson.M{"ingredients": re},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "salesRank", Value: 1}, {Key: "reviewCount", Value: -1}}).
		SetLimit(int64(limitOr(limit, 5)))
	err = s.findAll(ctx, coll, filter, opts, &out)
	return out, err
}

// ProductForKeyword returns any product tagged with keyword.
func (s *MongoStore) ProductForKeyword(ctx context.Context, keyword string) (out model.Product, err error) {
	coll, err := s.collection(CollProducts)
	if err != nil {
		return out, err
	}
	defer observe(CollProducts, "find_one", time.Now(), &err)

	err = findOne(ctx, coll, bson.M{"keywords": keyword}, options.FindOne(), &out)
	return out, err
}

// WhitespaceProducts returns the ten most reviewed whitespace products of one kind.
func (s *MongoStore) WhitespaceProducts(ctx context.Context, country, category, kind string) (out []bson.M, err error) {
	coll, err := s.collection(CollWhitespace)
	if err != nil {
		return nil, err
	}
	defer observe(CollWhitespace, "find", time.Now(), &err)

	filter := bson.M{"country": country, "category": category, "type": kind}
	err = s.findAll(ctx, coll, filter, options.Find().SetSort(desc("reviewCount")).SetLimit(10), &out)
	return out, err
}

// KeywordSummary returns a pre-generated summary.
func (s *MongoStore) KeywordSummary(ctx context.Context, q SummaryQuery) (out model.KeywordSummary, err error) {
	coll, err := s.collection(CollKeywordSummaries)
	if err != nil {
		return out, err
	}
	defer observe(CollKeywordSummaries, "find_one", time.Now(), &err)

	filter := bson.M{"country": q.Country, "sentiment": q.Sentiment}
	switch {
	case q.Keyword != "" && q.FoldCase:
		filter["keyword"] = exactFold(q.Keyword)
	case q.Keyword != "":
		filter["keyword"] = q.Keyword
	default:
		filter["reviewType"] = q.ReviewType
	}
	err = findOne(ctx, coll, filter, options.FindOne(), &out)
	return out, err
}

// KeywordDescription returns the described keyword for a country, falling back to any country.
func (s *MongoStore) KeywordDescription(ctx context.Context, country, keyword string) (out model.ProcessedKeyword, err error) {
	coll, err := s.collection(CollProcessedKeywords)
	if err != nil {
		return out, err
	}
	defer observe(CollProcessedKeywords, "find_one", time.Now(), &err)

	err = findOne(ctx, coll, bson.M{"keyword": exactFold(keyword), "country": country}, options.FindOne(), &out)
	if err == nil && out.Description != "" {
		return out, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return out, err
	}

	out = model.ProcessedKeyword{}
	global := bson.M{
		"keyword":     exactFold(keyword),
		"description": bson.M{"$exists": true, "$ne": ""},
	}
	err = findOne(ctx, coll, global, options.FindOne(), &out)
	if err == nil && out.Description == "" {
		err = ErrNotFound
	}
	return out, err
}

// BrandProducts returns raw documents of one brand collection.
func (s *MongoStore) BrandProducts(ctx context.Context, collection string, f BrandFilter) (out []bson.M, err error) {
	coll, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	defer observe(collection, "find", time.Now(), &err)

	filter := bson.M{}
	switch {
	case f.Ingredient != "":
		re := bson.M{"$regex": regexp.QuoteMeta(strings.ToLower(f.Ingredient)), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"key_ingredients": bson.M{"$elemMatch": re}},
			bson.M{"featured_ingredients": bson.M{"$elemMatch": re}},
			bson.M{"full_ingredients": re},
		}
	case len(f.Concerns) > 0:
		re := bson.M{"$regex": alternation(f.Concerns), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"concerns": bson.M{"$elemMatch": re}},
			bson.M{"skin_concerns": bson.M{"$elemMatch": re}},
			bson.M{"key_benefits": bson.M{"$elemMatch": re}},
			bson.M{"description": re},
		}
	}
	err = s.findAll(ctx, coll, filter, options.Find(), &out)
	return out, err
}

// BatchLogs returns the newest batch workflow runs.
func (s *MongoStore) BatchLogs(ctx context.Context, limit int) (out []model.BatchLog, err error) {
	coll, err := s.collection(CollBatchLogs)
	if err != nil {
		return nil, err
	}
	defer observe(CollBatchLogs, "find", time.Now(), &err)

	opts := options.Find().SetSort(desc("completedAt")).SetLimit(int64(limitOr(limit, 10)))
	err = s.findAll(ctx, coll, bson.M{"jobType": batchJobType}, opts, &out)
	return out, err
}

// CollectionCounts counts the documents of every StatCollections entry.
func (s *MongoStore) CollectionCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, len(StatCollections))
	for _, name := range StatCollections {
		n, err := s.count(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}

func (s *MongoStore) count(ctx context.Context, name string) (n int64, err error) {
	coll, err := s.collection(name)
	if err != nil {
		return 0, err
	}
	defer observe(name, "count", time.Now(), &err)
	return coll.CountDocuments(ctx, bson.M{})
}

func (s *MongoStore) findAll(ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, out any) error {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

func findOne(ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOneOptions, out any) error {
	err := coll.FindOne(ctx, filter, opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// keywordMatch matches any keyword in productName or content.
func keywordMatch(keywords []string) bson.A {
	pattern := alternation(keywords)
	if pattern == "" {
		return nil
	}
	re := bson.M{"$regex": pattern, "$options": "i"}
	return bson.A{
		bson.M{"productName": re},
		bson.M{"content": re},
	}
}

// alternation escapes and lower-cases terms and joins them with "|".
func alternation(terms []string) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		parts = append(parts, regexp.QuoteMeta(t))
	}
	return strings.Join(parts, "|")
}

func exactFold(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func desc(field string) bson.D {
	return bson.D{{Key: field, Value: -1}}
}

func setIf(m bson.M, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func limitOr(n, fallback int) int {
	if n > 0 {
		return n
	}
	return fallback
}
