package model

import (
	"strconv"
	"strings"
	"time"
)

// PlatformID 平台标识（统一小写，作为连接表和注册表的key）
type PlatformID string

const (
	PlatformLeetCode      PlatformID = "leetcode"
	PlatformGitHub        PlatformID = "github"
	PlatformCodeforces    PlatformID = "codeforces"
	PlatformCodeChef      PlatformID = "codechef"
	PlatformHackerRank    PlatformID = "hackerrank"
	PlatformAtCoder       PlatformID = "atcoder"
	PlatformGeeksForGeeks PlatformID = "geeksforgeeks"
	PlatformHackerEarth   PlatformID = "hackerearth"
	PlatformSPOJ          PlatformID = "spoj"
	PlatformTopCoder      PlatformID = "topcoder"
	PlatformInterviewBit  PlatformID = "interviewbit"
	PlatformCodingNinjas  PlatformID = "codingninjas"
	PlatformCodewars      PlatformID = "codewars"
	PlatformKaggle        PlatformID = "kaggle"
	PlatformStackOverflow PlatformID = "stackoverflow"
)

// NormalizePlatformID 平台标识归一化：去空格+小写
func NormalizePlatformID(raw string) PlatformID {
	return PlatformID(strings.ToLower(strings.TrimSpace(raw)))
}

// ========== 统一统计字段名（各适配器归一化后的key） ==========
const (
	StatUsername       = "username"
	StatProblemsSolved = "problemsSolved"
	StatEasySolved     = "easySolved"
	StatMediumSolved   = "mediumSolved"
	StatHardSolved     = "hardSolved"
	StatRating         = "rating"
	StatRank           = "rank"
	StatContests       = "contests"
	StatContributions  = "contributions"
	StatBadges         = "badges"
)

// PlatformStats 单平台统计结果：自由键值结构（各平台字段差异在聚合层抹平）
// 约定：至少包含username字段（归一化后的用户名）
type PlatformStats map[string]interface{}

// Username 读取归一化用户名；缺失返回空串
func (s PlatformStats) Username() string {
	if s == nil {
		return ""
	}
	if v, ok := s[StatUsername].(string); ok {
		return v
	}
	return ""
}

// Number 按字段名读取数值；兼容json解码后的float64/int/字符串数字，缺失返回0
func (s PlatformStats) Number(key string) float64 {
	if s == nil {
		return 0
	}
	switch v := s[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		// 兼容"1,234"这类带千分位的页面文本
		cleaned := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// ZeroStats 构建全0统计（降级兜底：网络全部失败但用户名形态可信时返回）
func ZeroStats(username string, numericFields ...string) PlatformStats {
	stats := PlatformStats{StatUsername: username}
	if len(numericFields) == 0 {
		numericFields = []string{StatProblemsSolved, StatRating, StatContests}
	}
	for _, f := range numericFields {
		stats[f] = 0
	}
	return stats
}

// SyncOutcome 单次（用户，平台）同步结果；不直接落库，由调用方立即消费
type SyncOutcome struct {
	PlatformID PlatformID    `json:"platform"`
	Success    bool          `json:"success"`              // 抓取是否成功（确认不存在也算失败）
	Stats      PlatformStats `json:"stats,omitempty"`      // 成功时的归一化统计
	Error      string        `json:"error,omitempty"`      // 失败原因（抓取或落库）
	FetchedAt  time.Time     `json:"fetchedAt"`            // 抓取完成时间
	Persisted  bool          `json:"persisted"`            // 成功结果是否已写入连接缓存
}

// StudentStats 跨平台聚合统计：每次同步全量重算（保证幂等，杜绝增量漂移）
type StudentStats struct {
	TotalProblems        int `json:"totalProblems"`
	EasyProblems         int `json:"easyProblems"`
	MediumProblems       int `json:"mediumProblems"`
	HardProblems         int `json:"hardProblems"`
	GithubContributions  int `json:"githubContributions"`
	ContestsParticipated int `json:"contestsParticipated"`
	Rating               int `json:"rating"`
}
