package trend

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/amore/clue/internal/domain/model"
	"github.com/amore/clue/internal/domain/types"
)

// EvidenceWeeks is the length of the weekly evidence series.
const EvidenceWeeks = 8

var plcMonths = [13]string{"현재", "1개월", "2개월", "3개월", "4개월", "5개월", "6개월", "7개월", "8개월", "9개월", "10개월", "11개월", "12개월"}

// EvidenceBases derives the SNS base from YouTube keyword values and the
// retail base from Amazon keyword ranks. A keyword narrows both to
// matching entries when any match.
func EvidenceBases(stats []model.PlatformStat, keyword string) (sns, retail float64) {
	kw := strings.ToLower(keyword)
	matches := func(k model.PlatformKeyword) bool {
		return kw != "" && strings.Contains(strings.ToLower(k.DisplayName()), kw)
	}

	var total, matched float64
	for _, s := range stats {
		if s.Platform != "YouTube" {
			continue
		}
		for _, k := range s.Keywords {
			total += k.Value
			if matches(k) {
				matched += k.Value
			}
		}
	}
	sns = total / 10
	if kw != "" && matched > 0 {
		sns = matched
	}

	for _, s := range stats {
		if s.Platform != "Amazon" {
			continue
		}
		for _, k := range s.Keywords {
			rank := k.Rank
			if rank == 0 {
				rank = 50
			}
			score := 100 - rank*2
			if matches(k) {
				score += k.Value / 10
			}
			retail = math.Max(retail, score)
		}
	}
	if retail == 0 {
		retail = 50
	}
	return sns, retail
}

// TrendEvidence builds W1..W8 from weekly review counts (oldest first) and
// the SNS and retail bases. Later weeks grow by 3% per week; values that
// come out non-positive are replaced by small random floors.
func TrendEvidence(reviewCounts []int, snsBase, retailBase float64, rng *rand.Rand) []model.WeekPoint {
	points := make([]model.WeekPoint, 0, EvidenceWeeks)
	for i := 0; i < EvidenceWeeks; i++ {
		w := EvidenceWeeks - 1 - i
		growth := 1 + float64(EvidenceWeeks-w)*0.03
		snsVar := 0.85 + rng.Float64()*0.3
		retailVar := 0.9 + rng.Float64()*0.2

		review := 0
		if i < len(reviewCounts) {
			review = reviewCounts[i]
		}
		if review <= 0 {
			review = 5 + rng.IntN(20)
		}
		sns := int(math.Floor(snsBase * snsVar * growth))
		if sns <= 0 {
			sns = 50 + rng.IntN(100)
		}
		retail := int(math.Floor(retailBase * retailVar * growth))
		if retail <= 0 {
			retail = 30 + rng.IntN(50)
		}
		points = append(points, model.WeekPoint{
			Week:   fmt.Sprintf("W%d", EvidenceWeeks-w),
			Review: review,
			SNS:    sns,
			Retail: retail,
		})
	}
	return points
}

// PLCPrediction projects a 12-month product life cycle curve from the
// current score. Early trends accelerate then fall back past 95, growing
// trends flatten at 98, and mature trends decay with a floor of 50.
func PLCPrediction(trendLevel string, score float64) []model.PLCPoint {
	points := make([]model.PLCPoint, 0, len(plcMonths))
	for i := range plcMonths {
		x := float64(i)
		var v float64
		switch trendLevel {
		case types.LevelEarly:
			v = score + x*x*1.5
			if v > 95 {
				v = 95 - (x-8)*2
			}
		case types.LevelGrowing:
			v = score + x*3 - x*x*0.15
			if v > 98 {
				v = 98
			}
		default:
			v = score + x - x*x*0.2
			if v < 50 {
				v = 50
			}
		}
		phase := "prediction_1y"
		switch {
		case i <= 3:
			phase = "current"
		case i <= 6:
			phase = "prediction_6m"
		}
		points = append(points, model.PLCPoint{
			Month: plcMonths[i],
			Value: int(math.Round(math.Max(20, math.Min(100, v)))),
			Phase: phase,
		})
	}
	return points
}
