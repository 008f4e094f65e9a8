package gdalprocess

/*
#include <stdlib.h>
#include "gdal.h"
#include "ogr_srs_api.h"
#include "cpl_conv.h"
#include "cpl_error.h"
#include "cpl_string.h"
#cgo pkg-config: gdal

static int read_window(GDALRasterBandH band, int xoff, int yoff, int xsize, int ysize, float *buf) {
	return GDALRasterIO(band, GF_Read, xoff, yoff, xsize, ysize, buf, xsize, ysize, GDT_Float32, 0, 0);
}
*/
import "C"

import (
	"fmt"
	"log"
	"strings"
	"unsafe"

	"github.com/nci/gcube/raster"
)

// Dataset is a raster.Dataset over a GDAL dataset handle.
type Dataset struct {
	path string
	h    C.GDALDatasetH
	vrt  *VRTManager
}

// Opener opens GDAL datasets.  It also implements
// raster.GeoreferencingOpener by wrapping the source in a VRT.
type Opener struct {
	Debug bool
}

func gdalError(format string, a ...interface{}) error {
	msg := fmt.Sprintf(format, a...)
	if last := C.GoString(C.CPLGetLastErrorMsg()); len(last) > 0 {
		msg += ": " + last
	}
	return fmt.Errorf("%s", msg)
}

func openDataset(path string) (C.GDALDatasetH, error) {
	pathC := C.CString(path)
	defer C.free(unsafe.Pointer(pathC))

	C.CPLErrorReset()
	h := C.GDALOpenEx(pathC, C.GDAL_OF_READONLY|C.GDAL_OF_RASTER|C.GDAL_OF_VERBOSE_ERROR, nil, nil, nil)
	if h == nil {
		return nil, gdalError("GDAL could not open dataset %s", path)
	}
	return h, nil
}

func (o *Opener) Open(path string) (raster.Dataset, error) {
	h, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{path: path, h: h}
	if o.Debug {
		w, ht := ds.Size()
		log.Printf("open: %s %dx%d, %d bands", path, w, ht, ds.BandCount())
	}
	return ds, nil
}

// OpenGeoreferenced opens path through an in-memory VRT carrying gt
// and crs.
func (o *Opener) OpenGeoreferenced(path string, gt raster.GeoTransform, crs string) (raster.Dataset, error) {
	src, err := openDataset(path)
	if err != nil {
		return nil, err
	}
	spec := &VRTSpec{
		Width:        int(C.GDALGetRasterXSize(src)),
		Height:       int(C.GDALGetRasterYSize(src)),
		SRS:          srsDefinition(crs),
		GeoTransform: gt,
	}
	for i := 1; i <= int(C.GDALGetRasterCount(src)); i++ {
		band := C.GDALGetRasterBand(src, C.int(i))
		var hasNoData C.int
		nodata := float64(C.GDALGetRasterNoDataValue(band, &hasNoData))
		spec.Bands = append(spec.Bands, VRTBand{
			Source:      path,
			SourceBand:  i,
			DataType:    C.GoString(C.GDALGetDataTypeName(C.GDALGetRasterDataType(band))),
			Description: C.GoString(C.GDALGetDescription(C.GDALMajorObjectH(band))),
			HasNoData:   hasNoData != 0,
			NoData:      nodata,
		})
	}
	C.GDALClose(src)

	mgr, err := NewVRTManager(spec)
	if err != nil {
		return nil, err
	}
	h, err := openDataset(mgr.DSFileName)
	if err != nil {
		mgr.Close()
		return nil, err
	}
	if o.Debug {
		log.Printf("open: %s georeferenced through %s", path, mgr.DSFileName)
	}
	return &Dataset{path: path, h: h, vrt: mgr}, nil
}

func (ds *Dataset) Size() (int, int) {
	return int(C.GDALGetRasterXSize(ds.h)), int(C.GDALGetRasterYSize(ds.h))
}

func (ds *Dataset) BandCount() int {
	return int(C.GDALGetRasterCount(ds.h))
}

func (ds *Dataset) GeoTransform() (raster.GeoTransform, error) {
	var gt raster.GeoTransform
	if C.GDALGetGeoTransform(ds.h, (*C.double)(unsafe.Pointer(&gt[0]))) != C.CE_None {
		return gt, fmt.Errorf("%s has no geotransform", ds.path)
	}
	return gt, nil
}

func (ds *Dataset) Projection() string {
	return authorityCode(C.GoString(C.GDALGetProjectionRef(ds.h)))
}

func (ds *Dataset) Metadata(domain string) map[string]string {
	var domainC *C.char
	if len(domain) > 0 {
		domainC = C.CString(domain)
		defer C.free(unsafe.Pointer(domainC))
	}
	return parseStringList(C.GDALGetMetadata(C.GDALMajorObjectH(ds.h), domainC))
}

func (ds *Dataset) band(i int) C.GDALRasterBandH {
	if i < 1 || i > ds.BandCount() {
		return nil
	}
	return C.GDALGetRasterBand(ds.h, C.int(i))
}

func (ds *Dataset) BandDescription(i int) string {
	b := ds.band(i)
	if b == nil {
		return ""
	}
	return C.GoString(C.GDALGetDescription(C.GDALMajorObjectH(b)))
}

func (ds *Dataset) BandMetadata(i int) map[string]string {
	b := ds.band(i)
	if b == nil {
		return map[string]string{}
	}
	md := parseStringList(C.GDALGetMetadata(C.GDALMajorObjectH(b), nil))
	var hasNoData C.int
	nodata := C.GDALGetRasterNoDataValue(b, &hasNoData)
	if _, ok := md["_FillValue"]; !ok && hasNoData != 0 {
		md["_FillValue"] = fmt.Sprintf("%v", float64(nodata))
	}
	return md
}

func (ds *Dataset) ReadWindow(i int, w raster.Window) ([]float32, error) {
	b := ds.band(i)
	if b == nil {
		return nil, fmt.Errorf("%s has no band %d", ds.path, i)
	}
	width, height := ds.Size()
	if w.ColStart < 0 || w.RowStart < 0 || w.ColStop >= width || w.RowStop >= height || w.Width() <= 0 || w.Height() <= 0 {
		return nil, fmt.Errorf("window %d:%d x %d:%d outside %s (%dx%d)", w.ColStart, w.ColStop, w.RowStart, w.RowStop, ds.path, width, height)
	}
	buf := make([]float32, w.Width()*w.Height())
	C.CPLErrorReset()
	if C.read_window(b, C.int(w.ColStart), C.int(w.RowStart), C.int(w.Width()), C.int(w.Height()), (*C.float)(unsafe.Pointer(&buf[0]))) != C.CE_None {
		return nil, gdalError("GDALRasterIO() failed on %s band %d", ds.path, i)
	}
	return buf, nil
}

func (ds *Dataset) Close() error {
	if ds.h != nil {
		C.GDALClose(ds.h)
		ds.h = nil
	}
	if ds.vrt != nil {
		ds.vrt.Close()
		ds.vrt = nil
	}
	return nil
}

// parseStringList turns a GDAL NAME=VALUE list into a map.
func parseStringList(list **C.char) map[string]string {
	md := make(map[string]string)
	if list == nil {
		return md
	}
	n := int(C.CSLCount(list))
	for _, item := range unsafe.Slice(list, n) {
		kv := strings.SplitN(C.GoString(item), "=", 2)
		if len(kv) == 2 {
			md[kv[0]] = kv[1]
		}
	}
	return md
}

// authorityCode returns "EPSG:<code>" for a WKT definition with an
// EPSG authority and the WKT otherwise.
func authorityCode(wkt string) string {
	if len(wkt) == 0 {
		return ""
	}
	wktC := C.CString(wkt)
	defer C.free(unsafe.Pointer(wktC))
	hSRS := C.OSRNewSpatialReference(wktC)
	if hSRS == nil {
		return wkt
	}
	defer C.OSRDestroySpatialReference(hSRS)

	if C.OSRGetAuthorityCode(hSRS, nil) == nil {
		C.OSRAutoIdentifyEPSG(hSRS)
	}
	name := C.OSRGetAuthorityName(hSRS, nil)
	code := C.OSRGetAuthorityCode(hSRS, nil)
	if name != nil && code != nil && C.GoString(name) == "EPSG" {
		return "EPSG:" + C.GoString(code)
	}
	return wkt
}

// srsDefinition expands a user CRS such as "EPSG:32631" into WKT.
func srsDefinition(srs string) string {
	hSRS, err := newSRS(srs)
	if err != nil {
		return srs
	}
	defer C.OSRDestroySpatialReference(hSRS)
	var wktC *C.char
	if C.OSRExportToWkt(hSRS, &wktC) != C.OGRERR_NONE {
		return srs
	}
	defer C.VSIFree(unsafe.Pointer(wktC))
	return C.GoString(wktC)
}
