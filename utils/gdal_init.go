package utils

// #include "gdal.h"
// #include "gdal_frmts.h"
// #cgo pkg-config: gdal
import "C"

import (
	"os"
	"path/filepath"
)

// gdalEnv holds defaults that apply unless already set in the
// environment.  Product archives are read through /vsizip/ and
// /vsitar/, so sibling listing is pointless on open.
var gdalEnv = [][2]string{
	{"GDAL_NETCDF_VERIFY_DIMS", "NO"},
	{"GDAL_PAM_ENABLED", "NO"},
	{"GDAL_DISABLE_READDIR_ON_OPEN", "EMPTY_DIR"},
	{"GDAL_MAX_DATASET_POOL_SIZE", "10"},
}

// preferredDrivers are registered ahead of the others since drivers
// are interrogated in order on open: GeoTIFF for THEIA and Landsat
// band files, JPEG2000 for Sentinel-2 granules, netCDF for GRS and
// C2RCC, HDF4 for Landsat surface reflectance.
var preferredDrivers = []struct {
	name     string
	register func()
}{
	{"GTiff", func() { C.GDALRegister_GTiff() }},
	{"JP2OpenJPEG", func() { C.GDALRegister_JP2OpenJPEG() }},
	{"netCDF", func() { C.GDALRegister_netCDF() }},
	{"HDF4", func() { C.GDALRegister_HDF4() }},
	{"HDF5", func() { C.GDALRegister_HDF5() }},
}

func InitGdal() {
	for _, kv := range gdalEnv {
		setDefaultEnv(kv[0], kv[1])
	}
	if exe, err := os.Executable(); err == nil {
		setDefaultEnv("GDAL_DRIVER_PATH", filepath.Dir(exe))
	}

	registerGDALDrivers()
}

func setDefaultEnv(envVar string, defaultVal string) {
	if _, ok := os.LookupEnv(envVar); !ok {
		os.Setenv(envVar, defaultVal)
	}
}

func registerGDALDrivers() {
	// The only portable way to learn which drivers the shared library
	// was built with is to register them all and look.
	C.GDALAllRegister()
	present := make(map[string]bool)
	for i := 0; i < int(C.GDALGetDriverCount()); i++ {
		present[C.GoString(C.GDALGetDriverShortName(C.GDALGetDriver(C.int(i))))] = true
	}

	for C.GDALGetDriverCount() > 0 {
		C.GDALDeregisterDriver(C.GDALGetDriver(0))
	}

	for _, d := range preferredDrivers {
		if present[d.name] {
			d.register()
		}
	}
	C.GDALAllRegister()
}
