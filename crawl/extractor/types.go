package extractor

import "time"

// ProductRecord is one catalogue entry: a product found on disk,
// identified by its name.
type ProductRecord struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	ProductType string    `json:"product_type"`
	NameSpace   string    `json:"namespace,omitempty"`
	Satellite   string    `json:"satellite"`
	Tile        string    `json:"tile"`
	CodeImage   string    `json:"code_image"`
	Acquired    time.Time `json:"acquired"`
	// CRS and Polygon are set when the footprint is read.  Polygon is
	// WKT in geographic WGS84.
	CRS     string     `json:"crs,omitempty"`
	Polygon string     `json:"polygon,omitempty"`
	Posix   *PosixInfo `json:"posix,omitempty"`
}

type PosixInfo struct {
	FilePath string    `json:"file_path"`
	INode    uint64    `json:"inode"`
	Size     int64     `json:"size"`
	MTime    time.Time `json:"mtime"`
	CTime    time.Time `json:"ctime"`
	ID       string    `json:"id"`
}
