package extract

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// JSONPath 在解码后的JSON文档中按点分路径取值（支持数组下标，如"items.0.reputation"）
// 路径不存在返回 (nil, false)
func JSONPath(doc interface{}, path string) (interface{}, bool) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = v
		case []interface{}:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			cur = node[idx]
		default:
			return nil, false
		}
	}
	return cur, true
}

// JSONNumber 按路径取数值；字符串数字也接受，取不到返回 (0, false)
func JSONNumber(doc interface{}, path string) (float64, bool) {
	v, ok := JSONPath(doc, path)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		return f, err == nil
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// JSONString 按路径取字符串，取不到返回空串
func JSONString(doc interface{}, path string) string {
	v, ok := JSONPath(doc, path)
	if !ok {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

// DecodeJSON 解码body为通用文档（对象或数组）
func DecodeJSON(body []byte) (interface{}, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("JSON解码失败: %w", err)
	}
	return doc, nil
}

// ContainsAny 大小写不敏感的子串匹配（页面"用户不存在"标记检测）
func ContainsAny(body []byte, markers []string) bool {
	if len(markers) == 0 {
		return false
	}
	lower := strings.ToLower(string(body))
	for _, m := range markers {
		if m == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(m)) {
			return true
		}
	}
	return false
}

// stripTags 去掉HTML标签，保留文本（正则粗提取足够，不上DOM解析）
var tagPattern = regexp.MustCompile(`<[^>]*>`)

// FirstNumber 在HTML文本中按规则列表顺序查找首个数字捕获组
// 每条pattern必须含一个捕获组，组内容允许带千分位逗号；全部未命中返回 (0, false)
func FirstNumber(body []byte, patterns []*regexp.Regexp) (float64, bool) {
	text := tagPattern.ReplaceAllString(string(body), " ")
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if len(m) < 2 {
			// 再在原始HTML上试一次：部分数值藏在属性/内联JSON里
			m = p.FindStringSubmatch(string(body))
		}
		if len(m) < 2 {
			continue
		}
		cleaned := strings.ReplaceAll(strings.TrimSpace(m[1]), ",", "")
		n, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			continue
		}
		return n, true
	}
	return 0, false
}

// 用户名形态校验：平台通用的合法handle（降级兜底的准入条件）
var handlePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// PlausibleHandle 判断字符串是否是形态可信的平台用户名
func PlausibleHandle(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && handlePattern.MatchString(s)
}
