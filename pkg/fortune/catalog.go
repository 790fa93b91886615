package fortune

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// 字段缺失时的兜底文案
const (
	DefaultSummary    = "运势数据未知"
	DefaultLuckyStar  = "幸运星未知"
	DefaultSignText   = "星座运势未知"
	DefaultUnsignText = "非星座运势未知"
)

// Entry 单条运势文案
type Entry struct {
	FortuneSummary string `json:"fortuneSummary"`
	LuckyStar      string `json:"luckyStar"`
	SignText       string `json:"signText"`
	UnsignText     string `json:"unsignText"`
}

// withDefaults 缺失字段替换为兜底文案
func (e Entry) withDefaults() Entry {
	if e.FortuneSummary == "" {
		e.FortuneSummary = DefaultSummary
	}
	if e.LuckyStar == "" {
		e.LuckyStar = DefaultLuckyStar
	}
	if e.SignText == "" {
		e.SignText = DefaultSignText
	}
	if e.UnsignText == "" {
		e.UnsignText = DefaultUnsignText
	}
	return e
}

// Catalog 运势文案目录，按分类键组织，加载后只读
type Catalog struct {
	categories map[string][]Entry
	keys       []string
}

// LoadCatalog 从JSON文件加载运势目录
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCatalogNotFound, path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析JSON运势目录。空分类会被丢弃
func ParseCatalog(data []byte) (*Catalog, error) {
	raw := map[string][]Entry{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	categories := make(map[string][]Entry, len(raw))
	for key, entries := range raw {
		if key == "" || len(entries) == 0 {
			continue
		}
		categories[key] = entries
	}

	// 分类键排序保证抽取顺序稳定
	keys := make([]string, 0, len(categories))
	for key := range categories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return &Catalog{categories: categories, keys: keys}, nil
}

// Len 返回分类数
func (c *Catalog) Len() int {
	return len(c.keys)
}

// Keys 返回排序后的分类键
func (c *Catalog) Keys() []string {
	return c.keys
}

// Entries 返回指定分类的文案列表
func (c *Catalog) Entries(key string) ([]Entry, bool) {
	entries, ok := c.categories[key]
	return entries, ok
}
