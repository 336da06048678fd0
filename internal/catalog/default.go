package catalog

import "sync"

// 主题列表：止赎相关服务页面
var defaultTopics = []string{
	"postpone-foreclosure",
	"stop-auction",
	"loan-modification",
	"reinstate-loan",
	"sell-before-auction",
}

// 服务区域：92802 周边约 50 英里
var defaultGroups = []Group{
	{Name: "orange", Cities: []string{
		"aliso-viejo", "anaheim", "brea", "buena-park", "costa-mesa", "cypress", "dana-point",
		"fountain-valley", "fullerton", "garden-grove", "huntington-beach", "irvine", "la-habra",
		"la-palma", "laguna-beach", "laguna-hills", "laguna-niguel", "laguna-woods", "lake-forest",
		"los-alamitos", "mission-viejo", "newport-beach", "orange", "placentia",
		"rancho-santa-margarita", "san-clemente", "san-juan-capistrano", "santa-ana", "seal-beach",
		"stanton", "tustin", "villa-park", "westminster", "yorba-linda",
	}},
	// 不含约 50 英里以外的沙漠城市
	{Name: "riverside", Cities: []string{
		"corona", "norco", "eastvale", "jurupa-valley", "riverside", "moreno-valley", "perris",
		"lake-elsinore", "canyon-lake", "menifee", "wildomar", "murrieta", "temecula",
	}},
	{Name: "losAngeles_BC", Cities: []string{
		"los-angeles", "long-beach", "carson", "compton", "lynwood", "south-gate", "huntington-park",
		"maywood", "cudahy", "bell", "bell-gardens", "paramount", "bellflower", "lakewood", "downey",
		"norwalk", "cerritos", "artesia", "hawaiian-gardens", "la-mirada", "whittier", "pico-rivera",
		"montebello", "monterey-park", "alhambra", "san-gabriel", "rosemead", "el-monte",
		"south-el-monte", "baldwin-park", "la-puente", "west-covina", "covina", "azusa", "glendora",
		"duarte", "monrovia", "pomona", "diamond-bar", "walnut", "industry", "irwindale",
		"gardena", "hawthorne", "inglewood", "lawndale", "torrance", "lomita",
	}},
	{Name: "sanBernardino_BC", Cities: []string{
		"chino", "chino-hills", "montclair", "upland", "ontario", "rancho-cucamonga", "fontana",
		"rialto", "bloomington", "colton", "san-bernardino", "loma-linda", "grand-terrace",
		"redlands", "highland", "yucaipa",
	}},
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default：站点内置目录（进程级单例，构建一次）
func Default() *Catalog {
	defaultOnce.Do(func() { defaultCat = New(defaultTopics, defaultGroups) })
	return defaultCat
}

// DefaultStrict：同一数据按严格模式构建，城市重复出现在多个分组时报错
func DefaultStrict() (*Catalog, error) { return NewStrict(defaultTopics, defaultGroups) }
