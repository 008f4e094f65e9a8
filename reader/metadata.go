package reader

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nci/gcube/raster"
)

// MTL is a Landsat MTL.txt file: key/value pairs grouped by the
// innermost GROUP they appear in.
type MTL map[string]map[string]string

func ParseMTL(data []byte) (MTL, error) {
	mtl := MTL{}
	var stack []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "END" {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		switch key {
		case "GROUP":
			stack = append(stack, val)
			if _, ok := mtl[val]; !ok {
				mtl[val] = map[string]string{}
			}
		case "END_GROUP":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			if len(stack) == 0 {
				return nil, fmt.Errorf("MTL item %s outside any group", key)
			}
			mtl[stack[len(stack)-1]][key] = val
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(mtl) == 0 {
		return nil, fmt.Errorf("MTL file has no group")
	}
	return mtl, nil
}

// Get looks key up in every group.
func (m MTL) Get(key string) (string, bool) {
	var groups []string
	for g := range m {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		if v, ok := m[g][key]; ok {
			return v, true
		}
	}
	return "", false
}

func (m MTL) Float(key string) (float64, error) {
	v, ok := m.Get(key)
	if !ok {
		return 0, raster.ProductErrorf("MTL item %s is missing", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, raster.ProductErrorf("MTL item %s=%q is not a number", key, v)
	}
	return f, nil
}

// Flatten returns "GROUP:KEY" items.
func (m MTL) Flatten() map[string]string {
	out := map[string]string{}
	for g, items := range m {
		for k, v := range items {
			out[g+":"+k] = v
		}
	}
	return out
}

type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []xmlNode  `xml:",any"`
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) child(name string) *xmlNode {
	for i := range n.Children {
		if n.Children[i].XMLName.Local == name {
			return &n.Children[i]
		}
	}
	return nil
}

func (n *xmlNode) walk(fn func(*xmlNode)) {
	fn(n)
	for i := range n.Children {
		n.Children[i].walk(fn)
	}
}

// parseMuscateMetadata flattens a THEIA MTD_ALL.xml file.  Second
// level elements give their text and "tag:attr" attributes; named
// special values, quality indexes and processing parameters are keyed
// by their name.
func parseMuscateMetadata(data []byte) (map[string]string, error) {
	var root xmlNode
	if err := xml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing metadata: %v", err)
	}

	md := map[string]string{}
	for _, elem := range root.Children {
		for _, sub := range elem.Children {
			if text := strings.TrimSpace(sub.Content); text != "" {
				md[sub.XMLName.Local] = text
			}
			for _, a := range sub.Attrs {
				md[sub.XMLName.Local+":"+a.Name.Local] = a.Value
			}
		}
	}
	root.walk(func(n *xmlNode) {
		switch n.XMLName.Local {
		case "Horizontal_Coordinate_System":
			for _, c := range n.Children {
				md[c.XMLName.Local] = strings.TrimSpace(c.Content)
			}
		case "SPECIAL_VALUE", "QUALITY_INDEX":
			if name := n.attr("name"); name != "" {
				md[name] = strings.TrimSpace(n.Content)
			}
		case "Processing_Information":
			name, value := n.child("NAME"), n.child("VALUE")
			if name != nil && value != nil {
				md[strings.TrimSpace(name.Content)] = strings.TrimSpace(value.Content)
			}
		}
	})
	return md, nil
}

// subdatasetNames lists a container dataset's subdatasets in GDAL
// order.
func subdatasetNames(ds raster.Dataset) []string {
	md := ds.Metadata("SUBDATASETS")
	type entry struct {
		idx  int
		name string
	}
	var entries []entry
	for key, val := range md {
		if !strings.HasPrefix(key, "SUBDATASET_") || !strings.HasSuffix(key, "_NAME") {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(key, "SUBDATASET_"), "_NAME"))
		if err != nil {
			continue
		}
		entries = append(entries, entry{idx, val})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].idx < entries[j].idx })
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// subdatasetVariable is the variable part of a subdataset name, the
// text after the last colon.
func subdatasetVariable(name string) string {
	return name[strings.LastIndex(name, ":")+1:]
}

func netCDFVariable(file, variable string) string {
	return fmt.Sprintf("NETCDF:\"%s\":%s", file, variable)
}

// stripPrefixed copies the items of md whose key starts with prefix,
// without the prefix.
func stripPrefixed(dst, md map[string]string, prefix string) {
	for k, v := range md {
		if strings.HasPrefix(k, prefix) {
			dst[strings.TrimPrefix(k, prefix)] = v
		}
	}
}
