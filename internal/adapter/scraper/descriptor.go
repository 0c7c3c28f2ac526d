package scraper

import (
	"regexp"
	"strings"

	"PortfolioSync/internal/model"
)

// MirrorAPI 社区镜像/官方免认证API的声明式描述
// 按顺序逐个探测，单个失败静默落到下一个候选
type MirrorAPI struct {
	Name        string            // 来源名（仅日志用）
	URLTemplate string            // 含一个%s占位（归一化用户名）
	Fields      map[string]string // 统一统计字段 → 响应JSON路径
	RequirePath string            // 必须存在的路径（缺失视为无效响应）
	ErrorPath   string            // 错误标记路径（可空）
	ErrorValues []string          // ErrorPath取到这些值时视为失败
}

// HTMLRule 主页文本提取规则：按pattern顺序取首个数字捕获组
type HTMLRule struct {
	Field    string
	Patterns []*regexp.Regexp
}

// Descriptor 平台声明式描述：一份描述驱动完整的降级抓取链
// （官方/镜像API → 主页抓取 → 全0兜底），新平台只加数据不加控制流
type Descriptor struct {
	Platform           model.PlatformID
	ProfileURLTemplate string           // 公开主页模板，含一个%s占位
	URLPatterns        []*regexp.Regexp // 从完整主页URL提取用户名（捕获组1）
	Mirrors            []MirrorAPI
	AbsenceMarkers     []string // 主页中"用户不存在"的确定性标记（小写匹配）
	HTMLRules          []HTMLRule
	NumericFields      []string // 该平台的数值统计字段（未命中补0，兜底全0）
	RatingBearing      bool     // 是否纳入跨平台rating取最大
}

// ========== 自定义平台通用提取规则（generic适配器用） ==========
var (
	CommonSolvedPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Problems?\s*Solved[^0-9]{0,20}([\d,]+)`),
		regexp.MustCompile(`(?i)([\d,]+)\s*problems?\s*solved`),
		regexp.MustCompile(`(?i)Solved[^0-9]{0,10}([\d,]+)`),
	}
	CommonRatingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Rating[^0-9]{0,20}([\d,]+)`),
	}
	CommonContestPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Contests?[^0-9]{0,20}([\d,]+)`),
	}
)

// CanonicalUsername 输入归一化：完整主页URL → 用户名；无匹配则trim后原样返回
// 兼容"@alice"写法（部分平台主页以@前缀展示）
func (d *Descriptor) CanonicalUsername(identifier string) string {
	id := strings.TrimSpace(identifier)
	for _, p := range d.URLPatterns {
		if m := p.FindStringSubmatch(id); len(m) >= 2 {
			return strings.TrimSuffix(m[1], "/")
		}
	}
	return strings.TrimPrefix(id, "@")
}
