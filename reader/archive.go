package reader

import (
	"archive/tar"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// container gives uniform access to the members of a product shipped
// as a directory, a zip archive or a (gzipped) tarball.  Member names
// are slash separated and relative to the container root.
type container interface {
	// Find returns the members whose base name matches pattern,
	// shallowest first.  A non-empty dir restricts the search to
	// members whose parent directory is named dir.
	Find(dir, pattern string) []string
	ReadFile(member string) ([]byte, error)
	// GDALPath is the path GDAL opens the member with.
	GDALPath(member string) string
	Close() error
}

func openContainer(p string) (container, error) {
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("cannot access product: %v", err)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return nil, err
	}
	lower := strings.ToLower(p)
	switch {
	case info.IsDir():
		return newDirContainer(abs)
	case strings.HasSuffix(lower, ".zip"):
		return newZipContainer(abs)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar"):
		return newTarContainer(abs)
	}
	return nil, fmt.Errorf("%s is neither a directory nor a zip or tar archive", p)
}

func findMembers(members []string, dir, pattern string) []string {
	var found []string
	for _, m := range members {
		if ok, _ := path.Match(pattern, path.Base(m)); !ok {
			continue
		}
		if dir != "" && path.Base(path.Dir(m)) != dir {
			continue
		}
		found = append(found, m)
	}
	sort.SliceStable(found, func(i, j int) bool {
		di, dj := strings.Count(found[i], "/"), strings.Count(found[j], "/")
		if di != dj {
			return di < dj
		}
		return found[i] < found[j]
	})
	return found
}

type dirContainer struct {
	root    string
	members []string
}

func newDirContainer(root string) (*dirContainer, error) {
	c := &dirContainer{root: root}
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		c.members = append(c.members, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %v", root, err)
	}
	return c, nil
}

func (c *dirContainer) Find(dir, pattern string) []string {
	return findMembers(c.members, dir, pattern)
}

func (c *dirContainer) ReadFile(member string) ([]byte, error) {
	return ioutil.ReadFile(c.GDALPath(member))
}

func (c *dirContainer) GDALPath(member string) string {
	return filepath.Join(c.root, filepath.FromSlash(member))
}

func (c *dirContainer) Close() error { return nil }

type zipContainer struct {
	file    string
	rc      *zip.ReadCloser
	members []string
}

func newZipContainer(file string) (*zipContainer, error) {
	rc, err := zip.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("cannot open zip archive %s: %v", file, err)
	}
	c := &zipContainer{file: file, rc: rc}
	for _, f := range rc.File {
		if !strings.HasSuffix(f.Name, "/") {
			c.members = append(c.members, f.Name)
		}
	}
	return c, nil
}

func (c *zipContainer) Find(dir, pattern string) []string {
	return findMembers(c.members, dir, pattern)
}

func (c *zipContainer) ReadFile(member string) ([]byte, error) {
	for _, f := range c.rc.File {
		if f.Name != member {
			continue
		}
		r, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return ioutil.ReadAll(r)
	}
	return nil, fmt.Errorf("%s not found in %s", member, c.file)
}

func (c *zipContainer) GDALPath(member string) string {
	return "/vsizip/" + c.file + "/" + member
}

func (c *zipContainer) Close() error { return c.rc.Close() }

type tarContainer struct {
	file    string
	gzipped bool
	members []string
}

func newTarContainer(file string) (*tarContainer, error) {
	c := &tarContainer{file: file, gzipped: !strings.HasSuffix(strings.ToLower(file), ".tar")}
	err := c.walk(func(hdr *tar.Header, r io.Reader) (bool, error) {
		if hdr.Typeflag == tar.TypeReg {
			c.members = append(c.members, strings.TrimPrefix(hdr.Name, "./"))
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// walk calls fn for each tar entry until fn returns true.
func (c *tarContainer) walk(fn func(*tar.Header, io.Reader) (bool, error)) error {
	f, err := os.Open(c.file)
	if err != nil {
		return fmt.Errorf("cannot open tar archive: %v", err)
	}
	defer f.Close()

	var r io.Reader = f
	if c.gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("cannot decompress %s: %v", c.file, err)
		}
		defer gz.Close()
		r = gz
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading %s: %v", c.file, err)
		}
		done, err := fn(hdr, tr)
		if err != nil || done {
			return err
		}
	}
}

func (c *tarContainer) Find(dir, pattern string) []string {
	return findMembers(c.members, dir, pattern)
}

func (c *tarContainer) ReadFile(member string) ([]byte, error) {
	var data []byte
	found := false
	err := c.walk(func(hdr *tar.Header, r io.Reader) (bool, error) {
		if strings.TrimPrefix(hdr.Name, "./") != member {
			return false, nil
		}
		found = true
		var err error
		data, err = ioutil.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s not found in %s", member, c.file)
	}
	return data, nil
}

func (c *tarContainer) GDALPath(member string) string {
	return "/vsitar/" + c.file + "/" + member
}

func (c *tarContainer) Close() error { return nil }
