package gdalprocess

/*
#include <stdlib.h>
#include <string.h>
#include "gdal.h"
#include "cpl_vsi.h"
#cgo pkg-config: gdal

VSILFILE *wrap_VSIFileFromMemBuffer(char *filename, char *data, unsigned long dataLength) {
  return VSIFileFromMemBuffer(filename, (GByte *)data, dataLength, 0);
}
*/
import "C"

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"
	"unsafe"

	"github.com/edisonguo/jet"
	"github.com/google/uuid"

	"github.com/nci/gcube/raster"
)

// VRTSpec describes a VRT restating the georeferencing of a source
// whose own is missing or wrong, band for band.
type VRTSpec struct {
	Width, Height int
	SRS           string
	GeoTransform  raster.GeoTransform
	Bands         []VRTBand
}

type VRTBand struct {
	Source      string
	SourceBand  int
	DataType    string
	Description string
	HasNoData   bool
	NoData      float64
}

const vrtTemplate = `<VRTDataset rasterXSize="{{ .Width }}" rasterYSize="{{ .Height }}">
  <SRS>{{ .SRS }}</SRS>
  <GeoTransform>{{ .GeoTransform }}</GeoTransform>
{{ range i, b := .Bands }}
  <VRTRasterBand dataType="{{ b.DataType }}" band="{{ i + 1 }}">
    <Description>{{ b.Description }}</Description>
{{ if b.HasNoData }}
    <NoDataValue>{{ b.NoData }}</NoDataValue>
{{ end }}
    <SimpleSource>
      <SourceFilename relativeToVRT="0">{{ b.Source }}</SourceFilename>
      <SourceBand>{{ b.SourceBand }}</SourceBand>
    </SimpleSource>
  </VRTRasterBand>
{{ end }}
</VRTDataset>
`

var (
	vrtOnce sync.Once
	vrtTmpl *jet.Template
	vrtErr  error
)

func loadVRTTemplate() (*jet.Template, error) {
	vrtOnce.Do(func() {
		view := jet.NewSet(jet.SafeWriter(func(w io.Writer, b []byte) {
			xml.EscapeText(w, b)
		}), ".", "/")
		vrtTmpl, vrtErr = view.LoadTemplate("georeferenced.vrt", vrtTemplate)
	})
	return vrtTmpl, vrtErr
}

// vrtView is what the template sees: numbers preformatted so the
// output does not depend on the template engine's float rendering.
type vrtView struct {
	Width, Height int
	SRS           string
	GeoTransform  string
	Bands         []vrtBandView
}

type vrtBandView struct {
	Source      string
	SourceBand  int
	DataType    string
	Description string
	HasNoData   bool
	NoData      string
}

// RenderVRT renders the VRT document of spec.
func RenderVRT(spec *VRTSpec) ([]byte, error) {
	tmpl, err := loadVRTTemplate()
	if err != nil {
		return nil, fmt.Errorf("VRT template: %v", err)
	}

	var terms []string
	for _, v := range spec.GeoTransform {
		terms = append(terms, fmt.Sprintf("%.10g", v))
	}
	view := &vrtView{Width: spec.Width, Height: spec.Height, SRS: spec.SRS, GeoTransform: strings.Join(terms, ", ")}
	for _, b := range spec.Bands {
		view.Bands = append(view.Bands, vrtBandView{
			Source:      b.Source,
			SourceBand:  b.SourceBand,
			DataType:    b.DataType,
			Description: b.Description,
			HasNoData:   b.HasNoData,
			NoData:      fmt.Sprintf("%.10g", b.NoData),
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, make(jet.VarMap), view); err != nil {
		return nil, fmt.Errorf("VRT rendering error: %v", err)
	}
	return buf.Bytes(), nil
}

// VRTManager holds a rendered VRT in /vsimem/ for the lifetime of the
// dataset opened over it.
type VRTManager struct {
	DSFileName string
	vrtC       *C.char
}

func NewVRTManager(spec *VRTSpec) (*VRTManager, error) {
	if spec.Width <= 0 || spec.Height <= 0 || len(spec.Bands) == 0 {
		return nil, fmt.Errorf("cannot build a VRT over an empty raster")
	}
	vrt, err := RenderVRT(spec)
	if err != nil {
		return nil, err
	}

	mgr := &VRTManager{DSFileName: fmt.Sprintf("/vsimem/gcube_%s.vrt", uuid.New().String())}
	mgr.vrtC = C.CString(string(vrt))
	fileC := C.CString(mgr.DSFileName)
	defer C.free(unsafe.Pointer(fileC))

	fh := C.wrap_VSIFileFromMemBuffer(fileC, mgr.vrtC, C.ulong(C.strlen(mgr.vrtC)))
	if fh == nil {
		C.free(unsafe.Pointer(mgr.vrtC))
		return nil, fmt.Errorf("cannot create %s", mgr.DSFileName)
	}
	C.VSIFCloseL(fh)
	return mgr, nil
}

func (mgr *VRTManager) Close() {
	if len(mgr.DSFileName) > 0 {
		fileC := C.CString(mgr.DSFileName)
		C.VSIUnlink(fileC)
		C.free(unsafe.Pointer(fileC))
		mgr.DSFileName = ""
	}
	if mgr.vrtC != nil {
		C.free(unsafe.Pointer(mgr.vrtC))
		mgr.vrtC = nil
	}
}
