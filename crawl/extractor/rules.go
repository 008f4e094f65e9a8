package extractor

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// NameRule identifies one product type from a file or directory name.
// The pattern's named groups sat, date, tile and pathrow feed the
// match.
type NameRule struct {
	ProductType string
	Pattern     *regexp.Regexp
	DateLayout  string
}

// Match is what a product name tells about the product.
type Match struct {
	ProductType string
	Satellite   string
	Tile        string
	CodeImage   string
	Acquired    time.Time
}

const s2Name = `(?P<sat>S2[AB])_MSIL(?:1C|2A)_(?P<date>\d{8}T\d{6})_N\d{4}_R\d{3}_T(?P<tile>\w{5})_\d{8}T\d{6}`
const l8Name = `LC08_L1(?:TP|GT|GS)_(?P<pathrow>\d{6})_(?P<date>\d{8})_\d{8}_01_(?:T1|T2|RT)`

// DefaultRules are tried in order; the first match wins.
var DefaultRules = []*NameRule{
	{"S2_ESA_L1C", regexp.MustCompile(`^` + strings.Replace(s2Name, "(?:1C|2A)", "1C", 1) + `(?:\.SAFE|\.zip)$`), "20060102T150405"},
	{"S2_ESA_L2A", regexp.MustCompile(`^` + strings.Replace(s2Name, "(?:1C|2A)", "2A", 1) + `(?:\.SAFE|\.zip)$`), "20060102T150405"},
	{"S2_THEIA", regexp.MustCompile(`^SENTINEL2(?P<sat>[AB])_(?P<date>\d{8}-\d{6})-\d{3}_L2A_T(?P<tile>\w{5})_[CD]_V\d+-\d+(?:\.zip)?$`), "20060102-150405"},
	{"S2_C2RCC", regexp.MustCompile(`^` + s2Name + `.*(?i:c2rcc).*\.nc$`), "20060102T150405"},
	{"S2_GRS", regexp.MustCompile(`^` + s2Name + `.*(?i:grs).*\.nc$`), "20060102T150405"},
	{"L8_GRS", regexp.MustCompile(`^` + l8Name + `.*(?i:grs).*\.nc$`), "20060102"},
	{"L8_USGS_L1C1", regexp.MustCompile(`^` + l8Name + `(?:\.tar\.gz|\.tgz)?$`), "20060102"},
	{"L8_USGS_L2", regexp.MustCompile(`^LC08(?P<pathrow>\d{6})(?P<date>\d{8})\d{2}T[12]-SC\d{14}(?:\.tar\.gz)?$`), "20060102"},
}

// Identify matches name against rules.  It returns nil when no rule
// applies.
func Identify(rules []*NameRule, name string) (*Match, error) {
	for _, r := range rules {
		sm := r.Pattern.FindStringSubmatch(name)
		if sm == nil {
			continue
		}
		groups := map[string]string{}
		for i, g := range r.Pattern.SubexpNames() {
			if len(g) > 0 {
				groups[g] = sm[i]
			}
		}

		m := &Match{ProductType: r.ProductType}
		var err error
		m.Acquired, err = time.Parse(r.DateLayout, groups["date"])
		if err != nil {
			return nil, fmt.Errorf("%s: invalid acquisition date: %v", name, err)
		}
		day := m.Acquired.Format("20060102")
		switch {
		case len(groups["pathrow"]) > 0:
			m.Satellite = "LC8"
			m.Tile = groups["pathrow"]
			m.CodeImage = "LC8" + m.Tile + day
		case r.ProductType == "S2_THEIA":
			m.Satellite = "S2"
			m.Tile = groups["tile"]
			m.CodeImage = "S2" + groups["sat"] + m.Tile + day
		default:
			m.Satellite = "S2"
			m.Tile = groups["tile"]
			m.CodeImage = groups["sat"] + m.Tile + day
		}
		return m, nil
	}
	return nil, nil
}
