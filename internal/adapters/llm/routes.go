// Package llm forwards analysis and chat requests to the LLM inference servers.
package llm

import "sort"

// Upstream names as keyed in config.Config.Upstreams.
const (
	UpstreamPort4 = "port4"
	UpstreamPort5 = "port5"
	UpstreamPort6 = "port6"
	UpstreamPort7 = "port7"
)

// Route names that need special handling by callers.
const (
	RouteKBeautyTrends  = "kbeauty-trends"
	RouteChatText       = "chat/text"
	RouteChatMultimodal = "chat/multimodal"
)

// HealthPath is probed on every upstream by Client.Health.
const HealthPath = "/api/llm/health"

// Route is one proxied endpoint.
type Route struct {
	Name     string
	Upstream string
	Path     string
	// Long routes use the long timeout.
	Long bool
	// Chat routes get a sessionId when the body has none.
	Chat bool
}

var routes = map[string]Route{}

func init() { //nolint:gochecknoinits // static route table
	add := func(upstream string, long bool, names ...string) {
		for _, n := range names {
			routes[n] = Route{Name: n, Upstream: upstream, Path: "/api/llm/" + n, Long: long}
		}
	}
	add(UpstreamPort4, false, "keyword-why", "category-trend")
	add(UpstreamPort4, true, RouteKBeautyTrends)
	add(UpstreamPort5, false, "sns-analysis", "whitespace-product")
	add(UpstreamPort6, false, "category-strategy", "whitespace-category", "country-strategy", "review-summary")
	add(UpstreamPort7, false, "rag-insight", "plc-prediction", "category-prediction")

	routes[RouteChatText] = Route{Name: RouteChatText, Upstream: UpstreamPort7, Path: "/api/chat/text", Chat: true}
	routes[RouteChatMultimodal] = Route{Name: RouteChatMultimodal, Upstream: UpstreamPort7, Path: "/api/chat/multimodal", Long: true, Chat: true}
}

// Lookup returns the route registered under name.
func Lookup(name string) (Route, bool) {
	r, ok := routes[name]
	return r, ok
}

// Routes returns every route sorted by name.
func Routes() []Route {
	out := make([]Route, 0, len(routes))
	for _, r := range routes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
