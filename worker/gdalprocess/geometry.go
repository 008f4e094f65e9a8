package gdalprocess

/*
#include <stdlib.h>
#include "gdal.h"
#include "ogr_api.h"
#include "ogr_srs_api.h"
#include "cpl_conv.h"
#cgo pkg-config: gdal

static void traditional_axis_order(OGRSpatialReferenceH hSRS) {
#if GDAL_VERSION_MAJOR >= 3
	OSRSetAxisMappingStrategy(hSRS, OAMS_TRADITIONAL_GIS_ORDER);
#endif
}
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/nci/gcube/raster"
	"github.com/nci/gcube/region"
)

// bufferSegments is the number of segments per quarter circle used
// when buffering geometries.
const bufferSegments = 30

// Engine implements region.Engine with OGR and OSR.
type Engine struct{}

func newSRS(srs string) (C.OGRSpatialReferenceH, error) {
	srsC := C.CString(srs)
	defer C.free(unsafe.Pointer(srsC))

	hSRS := C.OSRNewSpatialReference(nil)
	if C.OSRSetFromUserInput(hSRS, srsC) != C.OGRERR_NONE {
		C.OSRDestroySpatialReference(hSRS)
		return nil, fmt.Errorf("invalid spatial reference %q", srs)
	}
	C.traditional_axis_order(hSRS)
	return hSRS, nil
}

func parseGeometry(d *region.Descriptor) (C.OGRGeometryH, error) {
	geomC := C.CString(d.Geometry)
	defer C.free(unsafe.Pointer(geomC))

	var hGeom C.OGRGeometryH
	switch d.Encoding {
	case region.EncodingGeoJSON:
		hGeom = C.OGR_G_CreateGeometryFromJson(geomC)
	default:
		cursor := geomC
		if C.OGR_G_CreateFromWkt(&cursor, nil, &hGeom) != C.OGRERR_NONE {
			hGeom = nil
		}
	}
	if hGeom == nil {
		return nil, raster.InputErrorf("cannot parse %s geometry", d.Encoding)
	}
	return hGeom, nil
}

func exportWKT(hGeom C.OGRGeometryH) (string, error) {
	var wktC *C.char
	if C.OGR_G_ExportToWkt(hGeom, &wktC) != C.OGRERR_NONE {
		return "", fmt.Errorf("cannot export geometry to WKT")
	}
	defer C.VSIFree(unsafe.Pointer(wktC))
	return C.GoString(wktC), nil
}

func (Engine) Transform(d *region.Descriptor, dstSRS string) (string, raster.BBox, error) {
	var env raster.BBox
	hGeom, err := parseGeometry(d)
	if err != nil {
		return "", env, err
	}
	defer func() { C.OGR_G_DestroyGeometry(hGeom) }()

	if d.Buffer > 0 {
		buffered := C.OGR_G_Buffer(hGeom, C.double(d.Buffer), C.int(bufferSegments))
		if buffered == nil {
			return "", env, fmt.Errorf("cannot buffer geometry by %v", d.Buffer)
		}
		C.OGR_G_DestroyGeometry(hGeom)
		hGeom = buffered
	}

	src, err := newSRS(region.NormalizeSRS(d.SRS))
	if err != nil {
		return "", env, err
	}
	defer C.OSRDestroySpatialReference(src)
	dst, err := newSRS(dstSRS)
	if err != nil {
		return "", env, err
	}
	defer C.OSRDestroySpatialReference(dst)

	if C.OSRIsSame(src, dst) == 0 {
		C.OGR_G_AssignSpatialReference(hGeom, src)
		if C.OGR_G_TransformTo(hGeom, dst) != C.OGRERR_NONE {
			return "", env, fmt.Errorf("OGR_G_TransformTo() failed")
		}
	}

	var e C.OGREnvelope
	C.OGR_G_GetEnvelope(hGeom, &e)
	env = raster.BBox{MinX: float64(e.MinX), MinY: float64(e.MinY), MaxX: float64(e.MaxX), MaxY: float64(e.MaxY)}
	wkt, err := exportWKT(hGeom)
	return wkt, env, err
}

// ReadVector returns the first feature of the first layer of a vector
// dataset such as a shapefile or a GeoPackage.
func (Engine) ReadVector(path string) (string, string, error) {
	pathC := C.CString(path)
	defer C.free(unsafe.Pointer(pathC))

	C.CPLErrorReset()
	hDS := C.GDALOpenEx(pathC, C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY|C.GDAL_OF_VERBOSE_ERROR, nil, nil, nil)
	if hDS == nil {
		return "", "", raster.InputErrorf("%v", gdalError("cannot open vector file %s", path))
	}
	defer C.GDALClose(hDS)

	if C.GDALDatasetGetLayerCount(hDS) == 0 {
		return "", "", raster.InputErrorf("vector file %s has no layer", path)
	}
	hLayer := C.GDALDatasetGetLayer(hDS, 0)
	C.OGR_L_ResetReading(hLayer)
	hFeat := C.OGR_L_GetNextFeature(hLayer)
	if hFeat == nil {
		return "", "", raster.InputErrorf("vector file %s has no feature", path)
	}
	defer C.OGR_F_Destroy(hFeat)

	hGeom := C.OGR_F_GetGeometryRef(hFeat)
	if hGeom == nil {
		return "", "", raster.InputErrorf("first feature of %s has no geometry", path)
	}
	wkt, err := exportWKT(hGeom)
	if err != nil {
		return "", "", err
	}

	srs := region.DefaultSRS
	if hSRS := C.OGR_L_GetSpatialRef(hLayer); hSRS != nil {
		var srsC *C.char
		if C.OSRExportToWkt(hSRS, &srsC) == C.OGRERR_NONE {
			srs = authorityCode(C.GoString(srsC))
			C.VSIFree(unsafe.Pointer(srsC))
		}
	}
	return wkt, srs, nil
}
