package revgeo

// cityPriority：城市字段的组件类型优先级
var cityPriority = []string{"locality", "postal_town", "administrative_area_level_3", "sublocality", "neighborhood"}

const stateType = "administrative_area_level_1"

func pick(cs []Component, typ string) (Component, bool) {
	for _, c := range cs {
		for _, t := range c.Types {
			if t == typ {
				return c, true
			}
		}
	}
	return Component{}, false
}

// CityState：按候选顺序扫描，返回首个产出城市或州的候选中的值
// 约束：城市取 long_name，按 cityPriority 取首个非空；州独立取一级行政区 short_name；
// 不跨候选合并字段；全部未命中时返回两个空串
func CityState(results []Result) (city, state string) {
	for _, r := range results {
		city, state = "", ""
		for _, typ := range cityPriority {
			if c, ok := pick(r.AddressComponents, typ); ok && c.LongName != "" {
				city = c.LongName
				break
			}
		}
		if c, ok := pick(r.AddressComponents, stateType); ok {
			state = c.ShortName
		}
		if city != "" || state != "" {
			return city, state
		}
	}
	return "", ""
}
