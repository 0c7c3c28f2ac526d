package service

import (
	"PortfolioSync/internal/adapter/scraper"
	"PortfolioSync/internal/model"

	"github.com/sirupsen/logrus"
)

// AggregationService 跨平台聚合：把各平台的异构统计归并为一份StudentStats
type AggregationService struct {
	logger *logrus.Logger
}

func NewAggregationService(logger *logrus.Logger) *AggregationService {
	return &AggregationService{logger: logger}
}

// Aggregate 纯函数全量重算：相同输入必得相同输出（幂等），
// 输入中缺席的平台贡献保持0（绝不保留上一次聚合的残留）
//
// 投影规则：
//   - easySolved/mediumSolved/hardSolved 累入三档难度桶
//   - problemsSolved 累入总题数；缺失时用三档之和兜底
//   - contributions 累入GithubContributions
//   - contests 累入参赛场次
//   - rating 仅取自rating-bearing平台；多平台并存时取最大（跨平台rating
//     不可比，取最大是确定性规则）
func (s *AggregationService) Aggregate(inputs map[model.PlatformID]model.PlatformStats) *model.StudentStats {
	agg := &model.StudentStats{}

	for platform, stats := range inputs {
		if stats == nil {
			continue
		}

		easy := int(stats.Number(model.StatEasySolved))
		medium := int(stats.Number(model.StatMediumSolved))
		hard := int(stats.Number(model.StatHardSolved))
		agg.EasyProblems += easy
		agg.MediumProblems += medium
		agg.HardProblems += hard

		if _, ok := stats[model.StatProblemsSolved]; ok {
			agg.TotalProblems += int(stats.Number(model.StatProblemsSolved))
		} else {
			agg.TotalProblems += easy + medium + hard
		}

		agg.GithubContributions += int(stats.Number(model.StatContributions))
		agg.ContestsParticipated += int(stats.Number(model.StatContests))

		if scraper.RatingBearing(platform) {
			if rating := int(stats.Number(model.StatRating)); rating > agg.Rating {
				agg.Rating = rating
			}
		}
	}

	return agg
}

// AggregateOutcomes 同步批次结果 → 聚合输入（只取成功结果）
func (s *AggregationService) AggregateOutcomes(outcomes []*model.SyncOutcome) *model.StudentStats {
	inputs := make(map[model.PlatformID]model.PlatformStats, len(outcomes))
	for _, o := range outcomes {
		if o.Success && o.Stats != nil {
			inputs[o.PlatformID] = o.Stats
		}
	}
	return s.Aggregate(inputs)
}
