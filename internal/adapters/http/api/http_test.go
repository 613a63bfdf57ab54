package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/amore/clue/internal/adapters/cache"
	"github.com/amore/clue/internal/adapters/http/api"
	"github.com/amore/clue/internal/adapters/llm"
	"github.com/amore/clue/internal/adapters/repository"
	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
	"github.com/amore/clue/pkg/logger"
)

var fixedNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func init() {
	_ = logger.Init()
}

func newTestServer(store *mockStore, proxy *mockProxy, opts ...api.Option) (*api.Server, http.Handler) {
	opts = append([]api.Option{
		api.WithRand(rand.New(rand.NewPCG(1, 2))),
		api.WithClock(func() time.Time { return fixedNow }),
	}, opts...)
	var p api.Proxy
	if proxy != nil {
		p = proxy
	}
	var s repository.Store
	if store != nil {
		s = store
	}
	srv := api.NewServer(s, p, opts...)
	mux := http.NewServeMux()
	srv.Register(context.Background(), mux)
	return srv, srv.Wrap(mux)
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func post(h http.Handler, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestHealthAndStats(t *testing.T) {
	Convey("Given the dashboard API", t, func() {
		store := newMockStore()
		_, h := newTestServer(store, nil)

		Convey("health reports a connected database", func() {
			w := get(h, "/api/health")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["status"], ShouldEqual, "ok")
			So(body["message"], ShouldEqual, "Server is running")
			So(body["database"], ShouldEqual, "connected")
		})

		Convey("health stays up while the database is down", func() {
			store.connected = false
			w := get(h, "/api/health")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["database"], ShouldEqual, "disconnected")
		})

		Convey("stats returns collection counts and the last batch run", func() {
			store.counts = map[string]int64{repository.CollTrends: 12, repository.CollRawReviews: 340}
			store.batchLogs = []model.BatchLog{{Status: "success", Duration: 42}}
			w := get(h, "/api/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["collections"].(map[string]any)[repository.CollTrends], ShouldEqual, 12.0)
			So(body["lastBatch"].(map[string]any)["status"], ShouldEqual, "success")
			_, hasService := body["service"]
			So(hasService, ShouldBeFalse)
		})

		Convey("stats includes service statistics when a provider is set", func() {
			store.counts = map[string]int64{}
			_, h := newTestServer(store, nil, api.WithStatsProvider(&mockStatsProvider{stats: map[string]interface{}{"started": true}}))
			body := decode(get(h, "/api/stats"))
			So(body["lastBatch"], ShouldBeNil)
			So(body["service"].(map[string]any)["started"], ShouldBeTrue)
		})

		Convey("metrics are served in the Prometheus format", func() {
			w := get(h, "/metrics")
			So(w.Code, ShouldEqual, http.StatusOK)
		})
	})
}

func TestDatabaseGuard(t *testing.T) {
	Convey("Given a disconnected store", t, func() {
		store := newMockStore()
		store.connected = false
		_, h := newTestServer(store, nil)

		Convey("every database route answers 503", func() {
			for _, path := range []string{
				"/api/stats",
				"/api/trends",
				"/api/leaderboard",
				"/api/sns-platform/rankings",
				"/api/sns-platform/instagram",
				"/api/batch/status",
				"/api/real/leaderboard",
				"/api/real/reviews/count",
				"/api/real/trend-evidence",
				"/api/real/kbeauty/trends-data",
			} {
				w := get(h, path)
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				body := decode(w)
				So(body["error"], ShouldEqual, "Database not connected")
				So(body["code"], ShouldEqual, "db_unavailable")
			}
			So(store.count("KeywordLeaderboard"), ShouldEqual, 0)
		})

		Convey("a nil store is treated as disconnected", func() {
			_, h := newTestServer(nil, nil)
			So(get(h, "/api/real/leaderboard").Code, ShouldEqual, http.StatusServiceUnavailable)
			So(decode(get(h, "/api/health"))["database"], ShouldEqual, "disconnected")
		})
	})

	Convey("Given a store that loses its connection mid-request", t, func() {
		store := newMockStore()
		store.err = repository.ErrNotConnected
		_, h := newTestServer(store, nil)

		Convey("the read answers 503", func() {
			So(get(h, "/api/real/reviews/sentiment").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})

	Convey("Given a store returning an unexpected error", t, func() {
		store := newMockStore()
		store.err = errors.New("cursor exploded")
		_, h := newTestServer(store, nil)

		Convey("the read answers 500 with the wrapped error", func() {
			w := get(h, "/api/real/reviews/sentiment")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			body := decode(w)
			So(body["code"], ShouldEqual, "internal")
			So(body["error"], ShouldContainSubstring, "review sentiment")
			So(body["error"], ShouldContainSubstring, "cursor exploded")
		})
	})
}

func TestLeaderboards(t *testing.T) {
	Convey("Given keyword aggregates", t, func() {
		store := newMockStore()
		store.keywordRows = []model.KeywordAggregate{
			{Keyword: "niacinamide", AvgScore: 91.6, Count: 4, TrendLevel: types.LevelActionable, KoreanName: "나이아신아마이드"},
			{Keyword: "ceramide", AvgScore: 84.2, Count: 2, TrendLevel: types.LevelActionable},
		}
		_, h := newTestServer(store, nil)

		Convey("the real leaderboard ranks them with defaults applied", func() {
			w := get(h, "/api/real/leaderboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["country"], ShouldEqual, types.DefaultCountry)
			So(body["category"], ShouldEqual, types.DefaultCategory)
			So(body["itemType"], ShouldEqual, types.ItemIngredients)
			So(body["trendLevel"], ShouldEqual, types.LevelActionable)

			items := body["leaderboard"].([]any)
			So(items, ShouldHaveLength, 2)
			first := items[0].(map[string]any)
			So(first["rank"], ShouldEqual, 1.0)
			So(first["keyword"], ShouldEqual, "niacinamide")
			So(first["score"], ShouldEqual, 92.0)
			So(items[1].(map[string]any)["koreanName"], ShouldEqual, "ceramide")
			So(store.lastLeaderboard.Limit, ShouldEqual, 20)
		})

		Convey("query parameters reach the store", func() {
			get(h, "/api/real/leaderboard?country=japan&category=Cleansing&itemType=Effects&trendLevel=Early")
			So(store.lastLeaderboard.Country, ShouldEqual, "japan")
			So(store.lastLeaderboard.Category, ShouldEqual, "Cleansing")
			So(store.lastLeaderboard.ItemType, ShouldEqual, types.ItemEffects)
			So(store.lastLeaderboard.TrendLevel, ShouldEqual, types.LevelEarly)
		})

		Convey("an empty result encodes as an empty list", func() {
			store.keywordRows = nil
			So(decode(get(h, "/api/real/leaderboard"))["leaderboard"], ShouldResemble, []any{})
		})
	})

	Convey("Given the precomputed leaderboard", t, func() {
		store := newMockStore()
		store.precomputed = []model.LeaderboardEntry{{Keyword: "snail mucin", Score: 88, TrendLevel: types.LevelActionable}}
		_, h := newTestServer(store, nil)

		Convey("it is preferred over trend aggregation", func() {
			body := decode(get(h, "/api/leaderboard"))
			So(body["source"], ShouldEqual, repository.CollLeaderboard)
			items := body["leaderboard"].(map[string]any)["ingredients"].([]any)
			So(items, ShouldHaveLength, 1)
			So(items[0].(map[string]any)["keyword"], ShouldEqual, "snail mucin")
			So(store.count("TrendDocuments"), ShouldEqual, 0)
		})

		Convey("trend documents are aggregated when it is empty", func() {
			store.precomputed = nil
			store.trends = []model.Trend{
				{Country: "usa", Formulas: []string{"gel cream"}, Score: 80},
				{Country: "usa", Formulas: []string{"gel cream", "balm"}, Score: 70},
			}
			body := decode(get(h, "/api/leaderboard?itemType=Texture"))
			So(body["source"], ShouldEqual, repository.CollTrends)
			items := body["leaderboard"].(map[string]any)["formulas"].([]any)
			So(items, ShouldNotBeEmpty)
			So(items[0].(map[string]any)["keyword"], ShouldEqual, "gel cream")
		})
	})

	Convey("Given trend documents of several categories", t, func() {
		store := newMockStore()
		store.trends = []model.Trend{
			{Country: "usa", Category: "Skincare", Score: 90},
			{Country: "usa", Category: "Cleansing", Score: 80},
		}
		_, h := newTestServer(store, nil)

		Convey("the category filter is case-insensitive", func() {
			body := decode(get(h, "/api/trends?category=skincare"))
			So(body["count"], ShouldEqual, 1.0)
		})

		Convey("category all keeps everything", func() {
			body := decode(get(h, "/api/trends?category=all"))
			So(body["count"], ShouldEqual, 2.0)
		})
	})
}

func TestPlatforms(t *testing.T) {
	Convey("Given platform stats", t, func() {
		store := newMockStore()
		_, h := newTestServer(store, nil)

		Convey("a platform without stats answers 404", func() {
			w := get(h, "/api/sns-platform/tiktok")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["error"], ShouldEqual, "플랫폼 데이터를 찾을 수 없습니다")
		})

		Convey("the latest stats of a platform are returned", func() {
			store.latestStat = &model.PlatformStat{
				Platform: "Instagram",
				Country:  "usa",
				Date:     fixedNow,
				Keywords: []model.PlatformKeyword{{Keyword: "glass skin", Value: 120}},
			}
			body := decode(get(h, "/api/sns-platform/Instagram"))
			So(body["platform"], ShouldEqual, "Instagram")
			So(body["keywords"].([]any), ShouldHaveLength, 1)
		})

		Convey("rankings are not captured by the platform route", func() {
			store.platformStats = []model.PlatformStat{{Platform: "YouTube", Country: "usa", Date: fixedNow}}
			w := get(h, "/api/sns-platform/rankings")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(store.count("RecentPlatformStats"), ShouldEqual, 1)
			So(store.count("LatestPlatformStat"), ShouldEqual, 0)
			So(store.lastSince, ShouldEqual, fixedNow.Add(-7*24*time.Hour))
			So(decode(w)["platforms"], ShouldNotBeNil)
		})
	})
}

func TestReviews(t *testing.T) {
	Convey("Given review data", t, func() {
		store := newMockStore()
		_, h := newTestServer(store, nil)

		Convey("the review count period reads leading digits", func() {
			store.weekCounts = []model.WeekCount{{Year: 2025, Week: 10, Count: 7}}
			body := decode(get(h, "/api/real/reviews/count?period=4weeks"))
			So(body["period"], ShouldEqual, "4weeks")
			So(store.lastSince, ShouldEqual, fixedNow.Add(-4*7*24*time.Hour))
		})

		Convey("sentiment totals add up", func() {
			store.sentiments = map[string]int{types.SentimentPositive: 30, types.SentimentNegative: 12}
			body := decode(get(h, "/api/real/reviews/sentiment?keyword=toner"))
			So(body["positive"], ShouldEqual, 30.0)
			So(body["negative"], ShouldEqual, 12.0)
			So(body["total"], ShouldEqual, 42.0)
		})

		Convey("review details carry a product field", func() {
			store.reviews = []bson.M{
				{"content": "great", "productName": "Relief Sun"},
				{"content": "ok", "product": "Glow Serum"},
				{"content": "meh"},
			}
			reviews := decode(get(h, "/api/real/reviews/details"))["reviews"].([]any)
			So(reviews, ShouldHaveLength, 3)
			So(reviews[0].(map[string]any)["product"], ShouldEqual, "Relief Sun")
			So(reviews[1].(map[string]any)["product"], ShouldEqual, "Glow Serum")
			So(reviews[2].(map[string]any)["product"], ShouldEqual, "Unknown Product")
		})

		Convey("reviews by type require a review type", func() {
			w := get(h, "/api/real/combinations/reviews-by-type")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "reviewType parameter required")
		})

		Convey("reviews by type pass keywords and defaults through", func() {
			store.sentences = []model.ReviewSentence{{ReviewType: "보습", Sentiment: types.SentimentPositive, Content: "so hydrating", CreatedAt: fixedNow}}
			w := get(h, "/api/real/combinations/reviews-by-type?reviewType=%EB%B3%B4%EC%8A%B5&keywords=a,%20b,,")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(store.lastSentence.Keywords, ShouldResemble, []string{"a", "b"})
			So(store.lastSentence.Sentiment, ShouldEqual, types.SentimentPositive)
			So(decode(w)["reviews"].([]any), ShouldHaveLength, 1)
		})

		Convey("a keyword summary falls back to a review count", func() {
			store.reviewCount = 17
			w := get(h, "/api/real/keyword-summary?keyword=retinol")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["source"], ShouldEqual, "fallback")
			So(body["summary"], ShouldContainSubstring, "17건")
			So(store.lastFilter.Content, ShouldEqual, "retinol")
			So(store.lastFilter.Sentiment, ShouldEqual, types.SentimentPositive)
		})

		Convey("a stored keyword summary is returned as is", func() {
			store.summary = &model.KeywordSummary{Summary: "stored", Source: "llm", GeneratedAt: fixedNow}
			body := decode(get(h, "/api/real/keyword-summary?keyword=retinol"))
			So(body["summary"], ShouldEqual, "stored")
			So(body["source"], ShouldEqual, "llm")
			So(store.count("CountReviews"), ShouldEqual, 0)
		})

		Convey("a keyword summary requires a keyword", func() {
			w := get(h, "/api/real/keyword-summary")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "keyword parameter required")
		})

		Convey("a review type summary requires a keyword or a review type", func() {
			w := get(h, "/api/real/review-type-summary")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "keyword or reviewType parameter required")
		})

		Convey("a review type summary counts reviews of that type", func() {
			store.reviewCount = 5
			body := decode(get(h, "/api/real/review-type-summary?reviewType=%EB%B3%B4%EC%8A%B5"))
			So(body["source"], ShouldEqual, "fallback")
			So(body["reviewCount"], ShouldEqual, 5.0)
			So(body["sampleReviews"], ShouldResemble, []any{})
			So(store.lastFilter.ReviewType, ShouldEqual, "보습")
		})

		Convey("a keyword takes precedence over a review type", func() {
			body := decode(get(h, "/api/real/review-type-summary?keyword=pdrn&reviewType=%EB%B3%B4%EC%8A%B5"))
			So(body["keyword"], ShouldEqual, "pdrn")
			So(body["reviewCount"], ShouldEqual, 0.0)
			So(store.count("CountReviews"), ShouldEqual, 0)
		})
	})
}

func TestRealData(t *testing.T) {
	Convey("Given real data routes", t, func() {
		store := newMockStore()
		_, h := newTestServer(store, nil)

		Convey("products by keyword require a keyword", func() {
			So(get(h, "/api/real/products/by-keyword").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("trend evidence covers eight weeks and a full lifecycle curve", func() {
			store.reviewCount = 3
			w := get(h, "/api/real/trend-evidence?keyword=pdrn")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["weeksData"].([]any), ShouldHaveLength, 8)
			So(body["plcPrediction"].([]any), ShouldHaveLength, 13)
			So(body["trendLevel"], ShouldEqual, types.LevelGrowing)
			So(store.count("CountReviews"), ShouldEqual, 8)
			So(store.count("ProductForKeyword"), ShouldEqual, 1)
		})

		Convey("trend evidence uses the keyword's product level", func() {
			store.keywordProd = &model.Product{TrendLevel: types.LevelEarly, Score: 40}
			body := decode(get(h, "/api/real/trend-evidence?keyword=pdrn"))
			So(body["trendLevel"], ShouldEqual, types.LevelEarly)
		})

		Convey("whitespace products expose both image fields", func() {
			store.whitespace = map[string][]bson.M{
				"overseas": {{"name": "A", "image_url": "https://img/a.jpg"}},
				"korean":   {{"name": "B"}},
			}
			body := decode(get(h, "/api/real/whitespace/products"))
			overseas := body["overseas"].([]any)[0].(map[string]any)
			So(overseas["image"], ShouldEqual, "https://img/a.jpg")
			So(overseas["imageUrl"], ShouldEqual, "https://img/a.jpg")
			korean := body["korean"].([]any)[0].(map[string]any)
			_, hasImage := korean["image"]
			So(hasImage, ShouldBeFalse)
		})

		Convey("an undescribed keyword answers source none", func() {
			body := decode(get(h, "/api/real/keyword-description?keyword=bakuchiol"))
			So(body["source"], ShouldEqual, "none")
			So(body["koreanName"], ShouldEqual, "bakuchiol")
			So(body["description"], ShouldEqual, "")
		})

		Convey("a described keyword answers source database", func() {
			store.description = &model.ProcessedKeyword{Keyword: "bakuchiol", KoreanName: "바쿠치올", Description: "plant retinol"}
			body := decode(get(h, "/api/real/keyword-description?keyword=bakuchiol"))
			So(body["source"], ShouldEqual, "database")
			So(body["koreanName"], ShouldEqual, "바쿠치올")
		})

		Convey("batch status without runs has no last run", func() {
			body := decode(get(h, "/api/batch/status"))
			So(body["lastRun"], ShouldBeNil)
			So(body["recentLogs"], ShouldResemble, []any{})
		})

		Convey("batch status reports the newest run first", func() {
			store.batchLogs = []model.BatchLog{
				{Status: "success", Country: "usa", Duration: 12},
				{Status: "failed", Reason: "timeout"},
			}
			body := decode(get(h, "/api/batch/status"))
			So(body["lastRun"].(map[string]any)["country"], ShouldEqual, "usa")
			logs := body["recentLogs"].([]any)
			So(logs, ShouldHaveLength, 2)
			So(logs[1].(map[string]any)["reason"], ShouldEqual, "timeout")
		})
	})
}

func TestKBeauty(t *testing.T) {
	Convey("Given brand catalogs with one failing collection", t, func() {
		store := newMockStore()
		store.brandDocs = map[string][]bson.M{}
		for _, coll := range []string{
			"raw_tirtir_products",
			"raw_medicube_products",
			"raw_beautyofjoseon_products",
			"raw_laneige_products",
			"raw_cosrx_products",
			"raw_skin1004_products",
			"raw_biodance_products",
		} {
			store.brandDocs[coll] = []bson.M{
				{"product_name": coll + " new", "is_new": true},
				{"product_name": coll + " new", "is_new": true},
				{"product_name": coll + " classic"},
			}
		}
		store.brandErr = map[string]error{"raw_cosrx_products": errors.New("collection missing")}
		_, h := newTestServer(store, nil)

		Convey("products by ingredient skip the failed brand and keep unique new products", func() {
			w := get(h, "/api/real/kbeauty/products-by-ingredient?ingredient=centella")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["ingredient"], ShouldEqual, "centella")
			So(body["totalCount"], ShouldEqual, 6.0)
			So(body["products"].([]any), ShouldHaveLength, 6)
			So(store.count("BrandProducts"), ShouldEqual, 7)
		})

		Convey("products by ingredient require an ingredient", func() {
			w := get(h, "/api/real/kbeauty/products-by-ingredient")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["error"], ShouldEqual, "ingredient parameter required")
		})

		Convey("products by concern expand the concern into search terms", func() {
			body := decode(get(h, "/api/real/kbeauty/products-by-concern?concern=acne"))
			So(body["searchTerms"], ShouldContain, "blemish")
			So(body["totalCount"], ShouldEqual, 6.0)
		})

		Convey("a lost connection fails the whole fan-out", func() {
			store.brandErr["raw_laneige_products"] = repository.ErrNotConnected
			So(get(h, "/api/real/kbeauty/trends-data").Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestLLMProxy(t *testing.T) {
	Convey("Given an LLM proxy", t, func() {
		proxy := &mockProxy{resp: &llm.Response{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"success":true}`)}}
		_, h := newTestServer(newMockStore(), proxy)

		Convey("analysis requests are relayed verbatim", func() {
			w := post(h, "/api/llm/kbeauty-trends", `{"category":"Skincare"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldEqual, `{"success":true}`)
			So(proxy.routes, ShouldHaveLength, 1)
			So(proxy.routes[0].Name, ShouldEqual, llm.RouteKBeautyTrends)
			So(proxy.bodies[0], ShouldEqual, `{"category":"Skincare"}`)
		})

		Convey("the upstream status is preserved", func() {
			proxy.resp = &llm.Response{StatusCode: http.StatusUnprocessableEntity, Body: []byte(`{"detail":"bad"}`)}
			w := post(h, "/api/llm/kbeauty-trends", `{}`)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json")
		})

		Convey("chat requests go to the chat routes", func() {
			So(post(h, "/api/chat/text", `{"message":"hi"}`).Code, ShouldEqual, http.StatusOK)
			So(proxy.routes[0].Name, ShouldEqual, llm.RouteChatText)
		})

		Convey("unknown routes answer 404", func() {
			w := post(h, "/api/llm/does-not-exist", `{}`)
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(decode(w)["success"], ShouldBeFalse)
			So(post(h, "/api/chat/video", `{}`).Code, ShouldEqual, http.StatusNotFound)
			So(proxy.routes, ShouldBeEmpty)
		})

		Convey("chat routes are not reachable under the llm prefix", func() {
			So(post(h, "/api/llm/chat", `{}`).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("an unreachable upstream answers 503", func() {
			proxy.err = &llm.UpstreamError{Upstream: "llm5", Route: "keyword-why", Outcome: "transport", Err: errors.New("connection refused")}
			w := post(h, "/api/llm/keyword-why", `{"keyword":"pdrn"}`)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			body := decode(w)
			So(body["success"], ShouldBeFalse)
			So(body["error"], ShouldContainSubstring, "connection refused")
		})

		Convey("an invalid body answers 400", func() {
			proxy.err = llm.ErrInvalidBody
			So(post(h, "/api/llm/keyword-why", `{`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("kbeauty trend analysis falls back when the upstream is down", func() {
			proxy.err = &llm.UpstreamError{Upstream: "llm6", Route: llm.RouteKBeautyTrends, Outcome: "transport", Err: errors.New("refused")}
			w := post(h, "/api/llm/kbeauty-trends", `{"category":"Skincare","brandSummaries":[{"brand":"COSRX","newCount":3}]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["fallback"], ShouldBeTrue)
			So(body["category"], ShouldEqual, "Skincare")
			So(body["brandStrategies"].([]any)[0], ShouldStartWith, "COSRX: 3개")
		})

		Convey("ingredient detail is answered locally", func() {
			w := post(h, "/api/llm/ingredient-detail", `{"ingredient":"Retinol"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["success"], ShouldBeTrue)
			So(body["usage"], ShouldEqual, "저녁에만 사용, 자외선 차단 필수")
			So(proxy.routes, ShouldBeEmpty)
		})

		Convey("ingredient detail rejects invalid JSON", func() {
			So(post(h, "/api/llm/ingredient-detail", `not json`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("llm health is degraded while some upstreams are down", func() {
			proxy.health = llm.HealthReport{
				Upstreams: []llm.UpstreamHealth{{Name: "llm4", Status: "healthy"}, {Name: "llm5", Status: "unreachable"}},
				Healthy:   1,
			}
			body := decode(get(h, "/api/llm/health"))
			So(body["status"], ShouldEqual, "degraded")
			So(body["total"], ShouldEqual, 2.0)
			So(body["upstreams"].([]any), ShouldHaveLength, 2)
		})
	})

	Convey("Given no LLM proxy", t, func() {
		_, h := newTestServer(newMockStore(), nil)

		Convey("relayed routes answer 503", func() {
			So(post(h, "/api/llm/keyword-why", `{}`).Code, ShouldEqual, http.StatusServiceUnavailable)
			So(post(h, "/api/chat/text", `{"message":"hi"}`).Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("kbeauty trend analysis still serves its fallback", func() {
			w := post(h, "/api/llm/kbeauty-trends", `{"category":"Makeup","brandSummaries":[{"brand":"LANEIGE","newCount":2}]}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["fallback"], ShouldBeTrue)
			So(body["category"], ShouldEqual, "Makeup")
			So(body["brandStrategies"].([]any)[0], ShouldStartWith, "LANEIGE: 2개")
		})

		Convey("llm health reports down", func() {
			So(decode(get(h, "/api/llm/health"))["status"], ShouldEqual, "down")
		})
	})
}

func TestChatBodies(t *testing.T) {
	Convey("Given the API in front of a real LLM client", t, func() {
		var hits atomic.Int32
		upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer upstream.Close()

		client, err := llm.New(map[string]string{
			llm.UpstreamPort4: upstream.URL,
			llm.UpstreamPort5: upstream.URL,
			llm.UpstreamPort6: upstream.URL,
			llm.UpstreamPort7: upstream.URL,
		})
		So(err, ShouldBeNil)
		srv := api.NewServer(newMockStore(), client)
		mux := http.NewServeMux()
		srv.Register(context.Background(), mux)
		h := srv.Wrap(mux)

		Convey("a JSON object is relayed", func() {
			So(post(h, "/api/chat/text", `{"message":"hi"}`).Code, ShouldEqual, http.StatusOK)
			So(hits.Load(), ShouldEqual, 1)
		})

		Convey("a null body answers 400", func() {
			for _, target := range []string{"/api/chat/text", "/api/chat/multimodal"} {
				w := post(h, target, `null`)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				body := decode(w)
				So(body["success"], ShouldBeFalse)
				So(body["error"], ShouldContainSubstring, "JSON object")
			}
			So(hits.Load(), ShouldEqual, 0)
		})

		Convey("an array body answers 400", func() {
			So(post(h, "/api/chat/text", `[]`).Code, ShouldEqual, http.StatusBadRequest)
			So(hits.Load(), ShouldEqual, 0)
		})
	})
}

func TestResponseCache(t *testing.T) {
	Convey("Given a server with a memory cache", t, func() {
		store := newMockStore()
		store.keywordRows = []model.KeywordAggregate{{Keyword: "peptide", AvgScore: 77}}
		_, h := newTestServer(store, nil, api.WithCache(cache.NewMemoryCache(16, time.Minute), time.Minute))

		Convey("a repeated read is served from the cache", func() {
			first := get(h, "/api/real/leaderboard?country=usa")
			So(first.Header().Get(api.CacheHeader), ShouldEqual, "MISS")
			second := get(h, "/api/real/leaderboard?country=usa")
			So(second.Header().Get(api.CacheHeader), ShouldEqual, "HIT")
			So(second.Body.String(), ShouldEqual, first.Body.String())
			So(store.count("KeywordLeaderboard"), ShouldEqual, 1)
		})

		Convey("different queries are cached separately", func() {
			get(h, "/api/real/leaderboard?country=usa")
			get(h, "/api/real/leaderboard?country=japan")
			So(store.count("KeywordLeaderboard"), ShouldEqual, 2)
		})

		Convey("errors are not cached", func() {
			So(get(h, "/api/real/products/by-keyword").Code, ShouldEqual, http.StatusBadRequest)
			So(get(h, "/api/real/products/by-keyword").Header().Get(api.CacheHeader), ShouldEqual, "MISS")
		})

		Convey("cached answers survive a database outage", func() {
			get(h, "/api/real/leaderboard")
			store.connected = false
			w := get(h, "/api/real/leaderboard")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get(api.CacheHeader), ShouldEqual, "HIT")
		})

		Convey("uncached routes always reach the store", func() {
			get(h, "/api/batch/status")
			get(h, "/api/batch/status")
			So(store.count("BatchLogs"), ShouldEqual, 2)
		})
	})
}

func TestMiddlewareChain(t *testing.T) {
	Convey("Given the wrapped handler", t, func() {
		store := newMockStore()
		_, h := newTestServer(store, &mockProxy{resp: &llm.Response{StatusCode: http.StatusOK}}, api.WithMaxBodyBytes(16))

		Convey("every response carries a request id", func() {
			w := get(h, "/api/health")
			So(w.Header().Get(api.RequestIDHeader), ShouldNotBeEmpty)
		})

		Convey("an incoming request id is kept", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set(api.RequestIDHeader, "req-123")
			h.ServeHTTP(w, req)
			So(w.Header().Get(api.RequestIDHeader), ShouldEqual, "req-123")
		})

		Convey("any origin is allowed without a frontend url", func() {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})

		Convey("a configured frontend url restricts origins", func() {
			_, h := newTestServer(store, nil, api.WithFrontendURL("https://clue.example.com"))
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			req.Header.Set("Origin", "https://evil.example.com")
			h.ServeHTTP(w, req)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldBeEmpty)
		})

		Convey("oversized bodies answer 413", func() {
			w := post(h, "/api/llm/kbeauty-trends", `{"category":"Skincare and much more"}`)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("a panicking handler answers 500", func() {
			store.panicOn = "SentimentCounts"
			w := get(h, "/api/real/reviews/sentiment")
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
