package app

import (
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"interviewai/pkg/domain"
)

// strengthThreshold separates strengths (mean >= 7) from weaknesses.
const strengthThreshold = 7.0

var dimensionOrder = []string{"relevance", "clarity", "completeness", "confidence"}

var recommendations = map[string]string{
	"relevance":    "Focus on understanding the question and provide relevant examples",
	"clarity":      "Practice speaking clearly and organizing your thoughts better",
	"completeness": "Provide more detailed answers and cover all aspects of the question",
	"confidence":   "Practice more to build confidence in your answers",
}

// OverallPerformance summarizes a user's score history.
type OverallPerformance struct {
	TotalAttempts int     `json:"totalAttempts"`
	AverageScore  float64 `json:"averageScore"`
	BestScore     float64 `json:"bestScore"`
	WorstScore    float64 `json:"worstScore"`
	Progress      float64 `json:"progress"`
}

// MetricScore pairs a dimension name with its mean score.
type MetricScore struct {
	Metric string  `json:"metric"`
	Score  float64 `json:"score"`
}

// StrengthsWeaknesses partitions the four dimensions around the
// strength threshold.
type StrengthsWeaknesses struct {
	AllMetrics      map[string]float64 `json:"allMetrics"`
	Strengths       []MetricScore      `json:"strengths"`
	Weaknesses      []MetricScore      `json:"weaknesses"`
	Sentiment       map[string]int     `json:"sentiment"`
	Recommendations map[string]string  `json:"recommendations"`
}

// RoleLevelStats aggregates scores for one (role, level) group.
type RoleLevelStats struct {
	Role         string  `json:"role"`
	Level        string  `json:"level"`
	AverageScore float64 `json:"averageScore"`
	Attempts     int     `json:"attempts"`
	MinScore     float64 `json:"minScore"`
	MaxScore     float64 `json:"maxScore"`
}

// AttemptStatistics counts attempts by interview type.
type AttemptStatistics struct {
	Total   int            `json:"total"`
	ByRole  map[string]int `json:"byRole"`
	ByLevel map[string]int `json:"byLevel"`
}

// TrendPoint is one attempt on the score timeline.
type TrendPoint struct {
	AttemptNumber int       `json:"attemptNumber"`
	OverallScore  float64   `json:"overallScore"`
	Relevance     float64   `json:"relevance"`
	Clarity       float64   `json:"clarity"`
	Completeness  float64   `json:"completeness"`
	Confidence    float64   `json:"confidence"`
	Interview     string    `json:"interview"`
	Level         string    `json:"level"`
	Sentiment     string    `json:"sentiment"`
	Date          time.Time `json:"date"`
}

// Dashboard bundles the four user-scoped aggregates.
type Dashboard struct {
	OverallPerformance   OverallPerformance        `json:"overallPerformance"`
	StrengthsWeaknesses  StrengthsWeaknesses       `json:"strengthsAndWeaknesses"`
	ScoresByRoleAndLevel map[string]RoleLevelStats `json:"scoresByRoleAndLevel"`
	AttemptStatistics    AttemptStatistics         `json:"attemptStatistics"`
}

// OverallPerformance computes attempt count, mean, extremes and the
// first-to-last progress percentage. Empty history yields all zeros.
func (a *App) OverallPerformance(identity domain.Identity) (OverallPerformance, error) {
	scores, err := a.store.ListScoresByUser(identity.UserID)
	if err != nil {
		return OverallPerformance{}, fmt.Errorf("list scores: %w", err)
	}
	if len(scores) == 0 {
		return OverallPerformance{}, nil
	}

	total := 0.0
	best := scores[0].OverallScore
	worst := scores[0].OverallScore
	for _, s := range scores {
		total += s.OverallScore
		if s.OverallScore > best {
			best = s.OverallScore
		}
		if s.OverallScore < worst {
			worst = s.OverallScore
		}
	}

	first := scores[0].OverallScore
	last := scores[len(scores)-1].OverallScore
	progress := 0.0
	if len(scores) >= 2 && first != 0 {
		progress = round1((last - first) / first * 100)
	}

	return OverallPerformance{
		TotalAttempts: len(scores),
		AverageScore:  round1(total / float64(len(scores))),
		BestScore:     best,
		WorstScore:    worst,
		Progress:      progress,
	}, nil
}

// StrengthsAndWeaknesses computes per-dimension means and partitions
// them around the strength threshold, with a sentiment histogram and a
// recommendation per weak dimension.
func (a *App) StrengthsAndWeaknesses(identity domain.Identity) (StrengthsWeaknesses, error) {
	scores, err := a.store.ListScoresByUser(identity.UserID)
	if err != nil {
		return StrengthsWeaknesses{}, fmt.Errorf("list scores: %w", err)
	}

	result := StrengthsWeaknesses{
		AllMetrics:      map[string]float64{},
		Strengths:       []MetricScore{},
		Weaknesses:      []MetricScore{},
		Sentiment:       map[string]int{},
		Recommendations: map[string]string{},
	}
	if len(scores) == 0 {
		return result, nil
	}

	result.AllMetrics = dimensionMeans(scores)
	for _, s := range scores {
		result.Sentiment[s.Sentiment]++
	}

	for _, metric := range dimensionOrder {
		entry := MetricScore{Metric: metric, Score: result.AllMetrics[metric]}
		if entry.Score >= strengthThreshold {
			result.Strengths = append(result.Strengths, entry)
		} else {
			result.Weaknesses = append(result.Weaknesses, entry)
			result.Recommendations[metric] = recommendations[metric]
		}
	}
	sort.Slice(result.Strengths, func(i, j int) bool {
		return result.Strengths[i].Score > result.Strengths[j].Score
	})
	sort.Slice(result.Weaknesses, func(i, j int) bool {
		return result.Weaknesses[i].Score < result.Weaknesses[j].Score
	})
	return result, nil
}

// AverageScoresByRoleAndLevel groups the user's scores by the owning
// interview's role and level, keyed "role_level".
func (a *App) AverageScoresByRoleAndLevel(identity domain.Identity) (map[string]RoleLevelStats, error) {
	scores, interviews, err := a.scoresWithInterviews(identity)
	if err != nil {
		return nil, err
	}

	result := map[string]RoleLevelStats{}
	counts := map[string]int{}
	totals := map[string]float64{}
	for _, s := range scores {
		iv, ok := interviews[s.InterviewID]
		if !ok {
			continue
		}
		key := iv.Role + "_" + iv.Level
		stats, seen := result[key]
		if !seen {
			stats = RoleLevelStats{
				Role:     iv.Role,
				Level:    iv.Level,
				MinScore: s.OverallScore,
				MaxScore: s.OverallScore,
			}
		}
		if s.OverallScore < stats.MinScore {
			stats.MinScore = s.OverallScore
		}
		if s.OverallScore > stats.MaxScore {
			stats.MaxScore = s.OverallScore
		}
		stats.Attempts++
		result[key] = stats
		counts[key]++
		totals[key] += s.OverallScore
	}
	for key, stats := range result {
		stats.AverageScore = round1(totals[key] / float64(counts[key]))
		result[key] = stats
	}
	return result, nil
}

// TotalAttemptsByType counts the user's attempts by interview role and
// level.
func (a *App) TotalAttemptsByType(identity domain.Identity) (AttemptStatistics, error) {
	scores, interviews, err := a.scoresWithInterviews(identity)
	if err != nil {
		return AttemptStatistics{}, err
	}
	stats := AttemptStatistics{
		Total:   len(scores),
		ByRole:  map[string]int{},
		ByLevel: map[string]int{},
	}
	for _, s := range scores {
		iv, ok := interviews[s.InterviewID]
		if !ok {
			continue
		}
		stats.ByRole[iv.Role]++
		stats.ByLevel[iv.Level]++
	}
	return stats, nil
}

// ScoresTrend returns up to limit attempts in chronological order with
// 1-based attempt numbers.
func (a *App) ScoresTrend(identity domain.Identity, limit int) ([]TrendPoint, error) {
	if limit <= 0 {
		limit = 20
	}
	scores, interviews, err := a.scoresWithInterviews(identity)
	if err != nil {
		return nil, err
	}
	if len(scores) > limit {
		scores = scores[:limit]
	}
	trend := make([]TrendPoint, 0, len(scores))
	for i, s := range scores {
		iv := interviews[s.InterviewID]
		trend = append(trend, TrendPoint{
			AttemptNumber: i + 1,
			OverallScore:  s.OverallScore,
			Relevance:     s.Relevance,
			Clarity:       s.Clarity,
			Completeness:  s.Completeness,
			Confidence:    s.Confidence,
			Interview:     iv.Role,
			Level:         iv.Level,
			Sentiment:     s.Sentiment,
			Date:          s.CreatedAt,
		})
	}
	return trend, nil
}

// Dashboard computes the four aggregates concurrently.
func (a *App) Dashboard(identity domain.Identity) (Dashboard, error) {
	var dashboard Dashboard
	var g errgroup.Group
	g.Go(func() error {
		var err error
		dashboard.OverallPerformance, err = a.OverallPerformance(identity)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.StrengthsWeaknesses, err = a.StrengthsAndWeaknesses(identity)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.ScoresByRoleAndLevel, err = a.AverageScoresByRoleAndLevel(identity)
		return err
	})
	g.Go(func() error {
		var err error
		dashboard.AttemptStatistics, err = a.TotalAttemptsByType(identity)
		return err
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return dashboard, nil
}

// ScoreHistoryPoint is one persisted attempt on a per-interview history.
type ScoreHistoryPoint struct {
	OverallScore float64   `json:"overallScore"`
	CreatedAt    time.Time `json:"createdAt"`
}

// InterviewAnalytics summarizes the attempts made against one interview.
type InterviewAnalytics struct {
	Attempts     int                 `json:"attempts"`
	AverageScore float64             `json:"averageScore"`
	Strengths    []string            `json:"strengths"`
	Weaknesses   []string            `json:"weaknesses"`
	Scores       []ScoreHistoryPoint `json:"scores"`
}

// InterviewAnalytics aggregates the caller's scores for a single
// interview. No recorded attempts is reported as not found.
func (a *App) InterviewAnalytics(identity domain.Identity, interviewID string) (InterviewAnalytics, error) {
	scores, err := a.store.ListScoresByInterview(interviewID, identity.UserID)
	if err != nil {
		return InterviewAnalytics{}, fmt.Errorf("list scores: %w", err)
	}
	if len(scores) == 0 {
		return InterviewAnalytics{}, ErrNoAnalytics
	}

	total := 0.0
	history := make([]ScoreHistoryPoint, 0, len(scores))
	for _, s := range scores {
		total += s.OverallScore
		history = append(history, ScoreHistoryPoint{OverallScore: s.OverallScore, CreatedAt: s.CreatedAt})
	}
	means := dimensionMeans(scores)
	result := InterviewAnalytics{
		Attempts:     len(scores),
		AverageScore: round1(total / float64(len(scores))),
		Strengths:    []string{},
		Weaknesses:   []string{},
		Scores:       history,
	}
	for _, metric := range dimensionOrder {
		if means[metric] >= strengthThreshold {
			result.Strengths = append(result.Strengths, metric)
		} else {
			result.Weaknesses = append(result.Weaknesses, metric)
		}
	}
	return result, nil
}

// ScoresOverTime is the line-chart view of the user's full history.
type ScoresOverTime struct {
	TotalAttempts int          `json:"totalAttempts"`
	AverageScore  float64      `json:"averageScore"`
	MinScore      float64      `json:"minScore"`
	MaxScore      float64      `json:"maxScore"`
	ChartData     []TrendPoint `json:"chartData"`
}

// ScoresOverTime returns every attempt in chronological order with
// summary statistics. An empty history is reported as not found.
func (a *App) ScoresOverTime(identity domain.Identity) (ScoresOverTime, error) {
	scores, interviews, err := a.scoresWithInterviews(identity)
	if err != nil {
		return ScoresOverTime{}, err
	}
	if len(scores) == 0 {
		return ScoresOverTime{}, ErrNoScores
	}

	total := 0.0
	min := scores[0].OverallScore
	max := scores[0].OverallScore
	chart := make([]TrendPoint, 0, len(scores))
	for i, s := range scores {
		total += s.OverallScore
		if s.OverallScore < min {
			min = s.OverallScore
		}
		if s.OverallScore > max {
			max = s.OverallScore
		}
		iv := interviews[s.InterviewID]
		chart = append(chart, TrendPoint{
			AttemptNumber: i + 1,
			OverallScore:  s.OverallScore,
			Relevance:     s.Relevance,
			Clarity:       s.Clarity,
			Completeness:  s.Completeness,
			Confidence:    s.Confidence,
			Interview:     iv.Role,
			Level:         iv.Level,
			Sentiment:     s.Sentiment,
			Date:          s.CreatedAt,
		})
	}
	return ScoresOverTime{
		TotalAttempts: len(scores),
		AverageScore:  round1(total / float64(len(scores))),
		MinScore:      min,
		MaxScore:      max,
		ChartData:     chart,
	}, nil
}

// InterviewStat is the per-interview average on the dashboard chart.
type InterviewStat struct {
	InterviewID  string  `json:"interviewId"`
	Role         string  `json:"role"`
	Level        string  `json:"level"`
	AverageScore float64 `json:"averageScore"`
	Attempts     int     `json:"attempts"`
}

// RecentAttempt is one of the latest attempts, newest first.
type RecentAttempt struct {
	Interview string    `json:"interview"`
	Score     float64   `json:"score"`
	Date      time.Time `json:"date"`
}

// DashboardChartData is the chart-ready aggregate view.
type DashboardChartData struct {
	OverallStats   OverallPerformance `json:"overallStats"`
	InterviewStats []InterviewStat    `json:"interviewStats"`
	MetricTrends   map[string]float64 `json:"metricTrends"`
	RecentAttempts []RecentAttempt    `json:"recentAttempts"`
}

// DashboardChartData aggregates per-interview averages, dimension
// trends and the five most recent attempts. An empty history is
// reported as not found.
func (a *App) DashboardChartData(identity domain.Identity) (DashboardChartData, error) {
	scores, interviews, err := a.scoresWithInterviews(identity)
	if err != nil {
		return DashboardChartData{}, err
	}
	if len(scores) == 0 {
		return DashboardChartData{}, ErrNoDashboardData
	}

	perInterviewTotal := map[string]float64{}
	perInterviewCount := map[string]int{}
	order := []string{}
	total := 0.0
	best := scores[0].OverallScore
	for _, s := range scores {
		if _, seen := perInterviewCount[s.InterviewID]; !seen {
			order = append(order, s.InterviewID)
		}
		perInterviewTotal[s.InterviewID] += s.OverallScore
		perInterviewCount[s.InterviewID]++
		total += s.OverallScore
		if s.OverallScore > best {
			best = s.OverallScore
		}
	}

	stats := make([]InterviewStat, 0, len(order))
	for _, id := range order {
		iv := interviews[id]
		stats = append(stats, InterviewStat{
			InterviewID:  id,
			Role:         iv.Role,
			Level:        iv.Level,
			AverageScore: round1(perInterviewTotal[id] / float64(perInterviewCount[id])),
			Attempts:     perInterviewCount[id],
		})
	}

	first := scores[0].OverallScore
	last := scores[len(scores)-1].OverallScore
	progress := 0.0
	if len(scores) >= 2 && first != 0 {
		progress = round1((last - first) / first * 100)
	}

	recent := []RecentAttempt{}
	start := len(scores) - 5
	if start < 0 {
		start = 0
	}
	for i := len(scores) - 1; i >= start; i-- {
		s := scores[i]
		recent = append(recent, RecentAttempt{
			Interview: interviews[s.InterviewID].Role,
			Score:     s.OverallScore,
			Date:      s.CreatedAt,
		})
	}

	return DashboardChartData{
		OverallStats: OverallPerformance{
			TotalAttempts: len(scores),
			AverageScore:  round1(total / float64(len(scores))),
			BestScore:     best,
			Progress:      progress,
		},
		InterviewStats: stats,
		MetricTrends:   dimensionMeans(scores),
		RecentAttempts: recent,
	}, nil
}

// scoresWithInterviews loads the user's scores (oldest first) together
// with an index of their interviews.
func (a *App) scoresWithInterviews(identity domain.Identity) ([]domain.Score, map[string]domain.Interview, error) {
	scores, err := a.store.ListScoresByUser(identity.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("list scores: %w", err)
	}
	interviews, err := a.store.ListInterviewsByUser(identity.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("list interviews: %w", err)
	}
	index := make(map[string]domain.Interview, len(interviews))
	for _, iv := range interviews {
		index[iv.ID] = iv
	}
	return scores, index, nil
}

func dimensionMeans(scores []domain.Score) map[string]float64 {
	sums := map[string]float64{}
	for _, s := range scores {
		sums["relevance"] += s.Relevance
		sums["clarity"] += s.Clarity
		sums["completeness"] += s.Completeness
		sums["confidence"] += s.Confidence
	}
	means := make(map[string]float64, len(sums))
	n := float64(len(scores))
	for _, metric := range dimensionOrder {
		means[metric] = round1(sums[metric] / n)
	}
	return means
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
