// 包 catalog：站点支持的主题与城市目录（按区域分组），进程启动时构建一次，运行期只读
package catalog

import (
	"errors"
	"fmt"

	"geo-leads/internal/slug"
)

// DefaultState：目录内城市统一所属州
const DefaultState = "CA"

// ErrDuplicateCity：严格模式下同一城市 slug 出现在多个区域分组
var ErrDuplicateCity = errors.New("catalog: duplicate city slug")

// Topic：服务/内容类别 slug，例如 stop-auction
type Topic string

// Group：区域分组（县或多县区域），仅作组织元数据，不参与解析逻辑
type Group struct {
	Name   string   `json:"name"`
	Cities []string `json:"cities"`
}

// CityMeta：城市展示元数据
type CityMeta struct {
	Slug  string `json:"slug"`
	Name  string `json:"name"`
	Group string `json:"group"`
	State string `json:"state"`
}

// Duplicate：重复出现的城市及其所在分组（按构建顺序）
type Duplicate struct {
	Slug   string
	Groups []string
}

// Catalog：不可变目录值
// 约束：构建后不提供修改方法；对外返回的切片均为副本
type Catalog struct {
	topics   []Topic
	topicSet map[Topic]struct{}
	groups   []Group
	cities   []string
	meta     map[string]CityMeta
	dups     []Duplicate
}

// New：由主题与分组构建目录，所有输入先经 slug 归一化
// 约束：同一 slug 出现在多个分组时，构建顺序中首个分组的元数据生效，重复项经 Duplicates 报告
func New(topics []string, groups []Group) *Catalog {
	c := &Catalog{
		topicSet: make(map[Topic]struct{}),
		meta:     make(map[string]CityMeta),
	}
	for _, t := range topics {
		s := Topic(slug.Normalize(t))
		if s == "" {
			continue
		}
		if _, ok := c.topicSet[s]; ok {
			continue
		}
		c.topicSet[s] = struct{}{}
		c.topics = append(c.topics, s)
	}
	seenIn := make(map[string][]string)
	for _, g := range groups {
		ng := Group{Name: g.Name}
		for _, raw := range g.Cities {
			s := slug.Normalize(raw)
			if s == "" {
				continue
			}
			ng.Cities = append(ng.Cities, s)
			seenIn[s] = append(seenIn[s], g.Name)
			if _, ok := c.meta[s]; ok {
				continue
			}
			c.meta[s] = CityMeta{Slug: s, Name: slug.Title(s), Group: g.Name, State: DefaultState}
			c.cities = append(c.cities, s)
		}
		c.groups = append(c.groups, ng)
	}
	for _, s := range c.cities {
		if gs := seenIn[s]; len(gs) > 1 {
			c.dups = append(c.dups, Duplicate{Slug: s, Groups: gs})
		}
	}
	return c
}

// NewStrict：与 New 相同，但存在跨分组重复城市时返回错误
func NewStrict(topics []string, groups []Group) (*Catalog, error) {
	c := New(topics, groups)
	if len(c.dups) > 0 {
		d := c.dups[0]
		return nil, fmt.Errorf("%w: %s in %v", ErrDuplicateCity, d.Slug, d.Groups)
	}
	return c, nil
}

// Topics：按定义顺序返回主题
func (c *Catalog) Topics() []Topic {
	return append([]Topic(nil), c.topics...)
}

func (c *Catalog) HasTopic(t string) bool {
	_, ok := c.topicSet[Topic(t)]
	return ok
}

// AllCities：去重后的城市 slug，顺序为首次出现顺序
func (c *Catalog) AllCities() []string {
	return append([]string(nil), c.cities...)
}

// Lookup：slug → 元数据；未收录时返回 false，不视为错误
func (c *Catalog) Lookup(s string) (CityMeta, bool) {
	m, ok := c.meta[s]
	return m, ok
}

// Supported：slug 是否在服务区域内
func (c *Catalog) Supported(s string) bool {
	if s == "" {
		return false
	}
	_, ok := c.meta[s]
	return ok
}

func (c *Catalog) Groups() []Group {
	out := make([]Group, len(c.groups))
	for i, g := range c.groups {
		out[i] = Group{Name: g.Name, Cities: append([]string(nil), g.Cities...)}
	}
	return out
}

func (c *Catalog) Duplicates() []Duplicate {
	return append([]Duplicate(nil), c.dups...)
}
