package extractor

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"
	"unsafe"

	goeval "github.com/edisonguo/govaluate"
)

func GetPosixInfo(filePath string, fStat os.FileInfo) *PosixInfo {
	stat := fStat.Sys().(*syscall.Stat_t)
	fileSignature := fmt.Sprintf("%s%d%d%d%d", filePath, stat.Ino, stat.Size, stat.Mtim.Sec, stat.Mtim.Nsec)
	return &PosixInfo{
		FilePath: filePath,
		INode:    stat.Ino,
		Size:     stat.Size,
		MTime:    time.Unix(int64(stat.Mtim.Sec), int64(stat.Mtim.Nsec)).UTC(),
		CTime:    time.Unix(int64(stat.Ctim.Sec), int64(stat.Ctim.Nsec)).UTC(),
		ID:       fmt.Sprintf("%x", md5.Sum([]byte(fileSignature))),
	}
}

var filterVariables = map[string]struct{}{"path": {}, "name": {}, "type": {}, "product_type": {}}

// ParseFilter compiles a crawl filter such as
// "product_type == 'S2_THEIA' || type == 'd'".  Entries for which it
// is false are neither descended into nor emitted.
func ParseFilter(filter string) (*goeval.EvaluableExpression, error) {
	if len(strings.TrimSpace(filter)) == 0 {
		return nil, nil
	}

	expr, err := goeval.NewEvaluableExpression(filter)
	if err != nil {
		return nil, err
	}

	for _, token := range expr.Tokens() {
		if token.Kind == goeval.VARIABLE {
			varName, ok := token.Value.(string)
			if !ok {
				return nil, fmt.Errorf("variable token '%v' failed to cast string", token.Value)
			}
			if _, found := filterVariables[varName]; !found {
				return nil, fmt.Errorf("variable %v is not supported. Valid variables are path, name, type and product_type", varName)
			}
		}
	}
	return expr, nil
}

const DefaultMaxPosixErrors = 1000

// PosixCrawler walks directory trees looking for products.  Product
// directories (.SAFE, THEIA or Landsat folders) are emitted as a whole
// and not descended into.
type PosixCrawler struct {
	Rules         []*NameRule
	Filter        *goeval.EvaluableExpression
	FollowSymlink bool
	OutputFormat  string
	NameSpace     string
	// Footprinter, when set, opens each product to fill its CRS and
	// footprint.
	Footprinter *Footprinter
	Output      io.Writer
	Verbose     bool

	outputs    chan *ProductRecord
	errs       chan error
	wg         sync.WaitGroup
	concLimit  chan struct{}
	outputDone chan struct{}
}

type DirEntInfo struct {
	Name string
	Mode uint8
}

func NewPosixCrawler(conc int, filter *goeval.EvaluableExpression, followSymlink bool, outputFormat string) *PosixCrawler {
	if conc < 1 {
		conc = 1
	}
	return &PosixCrawler{
		Rules:         DefaultRules,
		Filter:        filter,
		FollowSymlink: followSymlink,
		OutputFormat:  outputFormat,
		Output:        os.Stdout,
		concLimit:     make(chan struct{}, conc),
	}
}

// Crawl walks rootDir and writes one record per product found.  Calls
// must not overlap.
func (pc *PosixCrawler) Crawl(rootDir string) error {
	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return err
	}
	pc.outputs = make(chan *ProductRecord, 4096)
	pc.errs = make(chan error, 100)
	pc.outputDone = make(chan struct{}, 1)

	go pc.outputResult()

	pc.wg.Add(1)
	pc.concLimit <- struct{}{}
	pc.crawlDir(absRootDir, false)
	pc.wg.Wait()

	close(pc.outputs)
	<-pc.outputDone

	close(pc.errs)
	var errors []string
	for err := range pc.errs {
		errors = append(errors, err.Error())
		if len(errors) >= DefaultMaxPosixErrors {
			errors = append(errors, " ... too many errors")
			break
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("%s", strings.Join(errors, "\n"))
	}
	return nil
}

func (pc *PosixCrawler) reportError(err error) {
	select {
	case pc.errs <- err:
	default:
	}
}

func (pc *PosixCrawler) crawlDir(currPath string, serialised bool) {
	defer pc.wg.Done()
	if !serialised {
		defer func() { <-pc.concLimit }()
	}
	files, err := readDir(currPath)
	if err != nil {
		pc.reportError(err)
		return
	}

	for _, fi := range files {
		fileName := fi.Name
		filePath := path.Join(currPath, fileName)
		fileMode := fi.Mode

		var fStat os.FileInfo
		if fileMode == syscall.DT_LNK {
			if !pc.FollowSymlink {
				continue
			}
			fStat, err = os.Stat(filePath)
			if err != nil {
				pc.reportError(err)
				continue
			}

			fMode := fStat.Mode()
			if fMode.IsDir() {
				fileMode = syscall.DT_DIR
			} else if fMode.IsRegular() {
				fileMode = syscall.DT_REG
			}
		}

		if fileMode != syscall.DT_DIR && fileMode != syscall.DT_REG {
			continue
		}

		match, err := Identify(pc.Rules, fileName)
		if err != nil {
			pc.reportError(err)
			continue
		}

		if pc.Filter != nil {
			ok, err := pc.evaluateFilter(filePath, fileName, fileMode, match)
			if err != nil {
				pc.reportError(err)
				continue
			}
			if !ok {
				continue
			}
		}

		if match == nil {
			if fileMode != syscall.DT_DIR {
				continue
			}
			pc.wg.Add(1)
			select {
			case pc.concLimit <- struct{}{}:
				go func(p string) {
					pc.crawlDir(p, false)
				}(filePath)
			default:
				pc.crawlDir(filePath, true)
			}
			continue
		}

		if fStat == nil {
			fStat, err = os.Lstat(filePath)
			if err != nil {
				pc.reportError(err)
				continue
			}
		}

		rec := &ProductRecord{
			Path:        filePath,
			ProductType: match.ProductType,
			NameSpace:   pc.NameSpace,
			Satellite:   match.Satellite,
			Tile:        match.Tile,
			CodeImage:   match.CodeImage,
			Acquired:    match.Acquired,
			Posix:       GetPosixInfo(filePath, fStat),
		}
		rec.ID = rec.Posix.ID

		if pc.Footprinter != nil {
			if err := pc.Footprinter.Fill(rec); err != nil {
				pc.reportError(fmt.Errorf("%s: %v", filePath, err))
				continue
			}
		}
		pc.outputs <- rec
	}
}

func readDir(currDir string) ([]DirEntInfo, error) {
	parentDir := filepath.Dir(currDir)

	dhParent, err := os.Open(parentDir)
	if err != nil {
		return nil, fmt.Errorf("Could not open dir: %s", err.Error())
	}
	defer dhParent.Close()
	dirFd := int(dhParent.Fd())

	file := filepath.Base(currDir)

	dh, err := syscall.Openat(dirFd, file, syscall.O_RDONLY, 0777)
	if err != nil {
		return nil, fmt.Errorf("Could not open %s: %s", currDir, err.Error())
	}
	defer syscall.Close(dh)

	origBuf := make([]byte, 4096)
	var entries []DirEntInfo
	for {
		n, errno := syscall.ReadDirent(dh, origBuf)
		if errno != nil {
			return nil, fmt.Errorf("Could not read dirent: %v", errno)
		}
		if n <= 0 {
			break
		}

		buf := origBuf[0:n]
		for len(buf) > 0 {
			dirent := (*syscall.Dirent)(unsafe.Pointer(&buf[0]))
			buf = buf[dirent.Reclen:]
			if dirent.Ino == 0 {
				continue
			}
			ii := 0
			for ; ii < len(dirent.Name); ii++ {
				if dirent.Name[ii] == 0 {
					break
				}
			}
			bytes := (*[256]byte)(unsafe.Pointer(&dirent.Name[0]))
			name := string(bytes[:][:ii])
			if name == "." || name == ".." {
				continue
			}

			if dirent.Type == syscall.DT_UNKNOWN {
				st, err := os.Lstat(path.Join(currDir, name))
				if err != nil {
					return nil, err
				}
				mode := st.Mode()
				if mode.IsDir() {
					dirent.Type = syscall.DT_DIR
				} else if mode.IsRegular() {
					dirent.Type = syscall.DT_REG
				} else if mode&os.ModeSymlink == os.ModeSymlink {
					dirent.Type = syscall.DT_LNK
				}
			}

			entries = append(entries, DirEntInfo{Name: name, Mode: dirent.Type})
		}
	}
	return entries, nil
}

func (pc *PosixCrawler) evaluateFilter(filePath, fileName string, fileMode uint8, match *Match) (bool, error) {
	fileType := "f"
	if fileMode == syscall.DT_DIR {
		fileType = "d"
	}
	productType := ""
	if match != nil {
		productType = match.ProductType
	}

	parameters := map[string]interface{}{"type": fileType, "path": filePath, "name": fileName, "product_type": productType}
	result, err := pc.Filter.Evaluate(parameters)
	if err != nil {
		return false, fmt.Errorf("filter expression: %v", err)
	}

	val, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("filter expression: result '%v' is not boolean", result)
	}
	return val, nil
}

func (pc *PosixCrawler) outputResult() {
	for rec := range pc.outputs {
		out, err := json.Marshal(rec)
		if err != nil {
			log.Printf("crawl: %s: %v", rec.Path, err)
			continue
		}
		line := string(out)
		if pc.OutputFormat == "tsv" {
			line = fmt.Sprintf("%s\t%s\t%s", rec.Path, rec.ProductType, line)
		}
		if _, err := fmt.Fprintln(pc.Output, line); err != nil {
			log.Printf("crawl: %v", err)
		}
		if pc.Verbose {
			log.Printf("crawl: %s %s %s", rec.ProductType, rec.CodeImage, rec.Path)
		}
	}
	pc.outputDone <- struct{}{}
}
