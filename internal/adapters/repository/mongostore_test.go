package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func ns(coll string) string { return "clue." + coll }

func TestMongoStore_NotConnected(t *testing.T) {
	ctx := context.Background()
	store := NewMongoStore("", "clue")

	if store.Connected() {
		t.Fatal("expected store without database to report disconnected")
	}
	if err := store.Connect(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("expected ErrNotConnected for empty uri, got %v", err)
	}

	if _, err := store.KeywordLeaderboard(ctx, LeaderboardQuery{Country: "usa"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("KeywordLeaderboard: expected ErrNotConnected, got %v", err)
	}
	if _, err := store.LatestPlatformStat(ctx, "YouTube", "usa"); !errors.Is(err, ErrNotConnected) {
		t.Errorf("LatestPlatformStat: expected ErrNotConnected, got %v", err)
	}
	if _, err := store.CountReviews(ctx, ReviewFilter{Country: "usa"}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("CountReviews: expected ErrNotConnected, got %v", err)
	}
	if _, err := store.BrandProducts(ctx, "raw_cosrx_products", BrandFilter{}); !errors.Is(err, ErrNotConnected) {
		t.Errorf("BrandProducts: expected ErrNotConnected, got %v", err)
	}
	if _, err := store.CollectionCounts(ctx); !errors.Is(err, ErrNotConnected) {
		t.Errorf("CollectionCounts: expected ErrNotConnected, got %v", err)
	}
	if err := store.Close(ctx); err != nil {
		t.Errorf("Close on unconnected store: %v", err)
	}
}

func TestMongoStore_Queries(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("keyword leaderboard decodes groups", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollProcessedKeywords), mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "niacinamide"},
				{Key: "avgScore", Value: 87.6},
				{Key: "count", Value: int32(3)},
				{Key: "trendLevel", Value: "Actionable"},
				{Key: "koreanName", Value: "나이아신아마이드"},
				{Key: "sources", Value: bson.A{"p1", "p2"}},
			},
		))

		rows, err := store.KeywordLeaderboard(ctx, LeaderboardQuery{Country: "usa", Category: "Skincare", ItemType: "Ingredients", TrendLevel: "actionable"})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(rows) != 1 {
			mt.Fatalf("expected 1 row, got %d", len(rows))
		}
		if rows[0].Keyword != "niacinamide" || rows[0].Count != 3 || len(rows[0].Sources) != 2 {
			mt.Errorf("unexpected row %+v", rows[0])
		}
	})

	mt.Run("weekly review counts flatten the group id", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollRawReviews), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: bson.D{{Key: "year", Value: int32(2025)}, {Key: "week", Value: int32(51)}}}, {Key: "count", Value: int32(12)}},
			bson.D{{Key: "_id", Value: bson.D{{Key: "year", Value: int32(2025)}, {Key: "week", Value: int32(52)}}}, {Key: "count", Value: int32(7)}},
		))

		now := time.Now()
		weeks, err := store.WeeklyReviewCounts(ctx, "usa", now.AddDate(0, 0, -56), now)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(weeks) != 2 {
			mt.Fatalf("expected 2 weeks, got %d", len(weeks))
		}
		if weeks[0].Year != 2025 || weeks[0].Week != 51 || weeks[0].Count != 12 {
			mt.Errorf("unexpected first week %+v", weeks[0])
		}
	})

	mt.Run("latest platform stat maps no documents to ErrNotFound", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollPlatformStats), mtest.FirstBatch))

		_, err := store.LatestPlatformStat(ctx, "TikTok", "usa")
		if !errors.Is(err, ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("sentences retry without keywords", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(CollReviewSentences), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(CollReviewSentences), mtest.FirstBatch,
				bson.D{{Key: "reviewType", Value: "보습"}, {Key: "sentiment", Value: "positive"}, {Key: "content", Value: "So hydrating"}},
			),
		)

		got, err := store.SentencesByType(ctx, SentenceQuery{
			Country:    "usa",
			Keywords:   []string{"snail mucin"},
			ReviewType: "보습",
			Sentiment:  "positive",
		})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 || got[0].Content != "So hydrating" {
			mt.Errorf("expected fallback sentence, got %+v", got)
		}
	})

	mt.Run("sentiment counts by id", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollRawReviews), mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "positive"}, {Key: "count", Value: int32(40)}},
			bson.D{{Key: "_id", Value: "negative"}, {Key: "count", Value: int32(9)}},
		))

		counts, err := store.SentimentCounts(ctx, "usa", "")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if counts["positive"] != 40 || counts["negative"] != 9 {
			mt.Errorf("unexpected counts %v", counts)
		}
	})

	mt.Run("count reviews", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(CollRawReviews), mtest.FirstBatch,
			bson.D{{Key: "n", Value: int32(4)}},
		))

		n, err := store.CountReviews(ctx, ReviewFilter{Country: "usa", Content: "cica (centella)"})
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if n != 4 {
			mt.Errorf("expected 4, got %d", n)
		}
	})

	mt.Run("keyword description falls back to any country", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(CollProcessedKeywords), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(CollProcessedKeywords), mtest.FirstBatch,
				bson.D{{Key: "keyword", Value: "Retinol"}, {Key: "koreanName", Value: "레티놀"}, {Key: "description", Value: "Vitamin A derivative"}},
			),
		)

		kw, err := store.KeywordDescription(ctx, "japan", "retinol")
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if kw.Description != "Vitamin A derivative" || kw.KoreanName != "레티놀" {
			mt.Errorf("unexpected keyword %+v", kw)
		}
	})

	mt.Run("keyword description not found", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(CollProcessedKeywords), mtest.FirstBatch),
			mtest.CreateCursorResponse(0, ns(CollProcessedKeywords), mtest.FirstBatch),
		)

		if _, err := store.KeywordDescription(ctx, "usa", "unknown"); !errors.Is(err, ErrNotFound) {
			mt.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	mt.Run("collection counts every collection", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		for _, name := range StatCollections {
			mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(name), mtest.FirstBatch,
				bson.D{{Key: "n", Value: int32(2)}},
			))
		}

		counts, err := store.CollectionCounts(ctx)
		if err != nil {
			mt.Fatalf("unexpected error: %v", err)
		}
		if len(counts) != len(StatCollections) {
			mt.Fatalf("expected %d collections, got %d", len(StatCollections), len(counts))
		}
		for name, n := range counts {
			if n != 2 {
				mt.Errorf("%s: expected 2, got %d", name, n)
			}
		}
	})

	mt.Run("query errors are returned", func(mt *mtest.T) {
		store := NewMongoStore("", "clue", WithDatabase(mt.DB))
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    2,
			Name:    "BadValue",
			Message: "bad query",
		}))

		if _, err := store.BatchLogs(ctx, 10); err == nil {
			mt.Error("expected error from failing find")
		}
	})
}

func TestAlternation(t *testing.T) {
	if got := alternation([]string{" C++ ", "", "Vitamin C"}); got != `c\+\+|vitamin c` {
		t.Errorf("unexpected pattern %q", got)
	}
	if keywordMatch([]string{" ", ""}) != nil {
		t.Error("expected nil match for blank keywords")
	}
	if got := exactFold("a.b")["$regex"]; got != `^a\.b$` {
		t.Errorf("unexpected exact pattern %v", got)
	}
}
