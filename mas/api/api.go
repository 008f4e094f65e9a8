// Product catalogue API
package main

import (
	"bufio"
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/nci/gomemcache/memcache"
	"golang.org/x/crypto/ssh/terminal"

	extr "github.com/nci/gcube/crawl/extractor"
)

var (
	dbName      = flag.String("database", "mas", "database name")
	dbUser      = flag.String("user", "api", "database user name")
	dbHost      = flag.String("host", "/var/run/postgresql", "database host or socket directory")
	dbPool      = flag.Int("pool", 8, "database pool size")
	dbLimit     = flag.Int("limit", 64, "database concurrent requests")
	askPassword = flag.Bool("password", false, "prompt for the database password")
	initSchema  = flag.Bool("init", false, "create the catalogue tables if missing")
	httpPort    = flag.Int("port", 8080, "http port")
	mcURI       = flag.String("memcache", "", "memcache uri host:port")
	verbose     = flag.Bool("v", false, "verbose")
)

const isoDate = "2006-01-02"

// Spit out a simple JSON-formatted error message for Content-Type: application/json
func httpJSONError(response http.ResponseWriter, err error, status int) {
	http.Error(response, fmt.Sprintf(`{ "error": %q }`, err.Error()), status)
}

type server struct {
	cat catalogue
	mc  *memcache.Client
}

const generationKey = "gcube_catalogue_generation"

// cacheKey hashes the request together with the catalogue generation,
// which every ingest bumps.
func (s *server) cacheKey(request *http.Request) string {
	gen := "0"
	if it, err := s.mc.Get(generationKey); err == nil {
		gen = string(it.Value)
	}
	buff := md5.Sum([]byte(gen + " " + request.URL.RequestURI() + " " + request.Form.Encode()))
	return hex.EncodeToString(buff[:])
}

func (s *server) bumpGeneration() {
	if _, err := s.mc.Increment(generationKey, 1); err == memcache.ErrCacheMiss {
		s.mc.Set(&memcache.Item{Key: generationKey, Value: []byte("1")})
	}
}

func (s *server) handler(response http.ResponseWriter, request *http.Request) {
	response.Header().Set("Content-Type", "application/json")

	query := request.URL.Query()

	// ingest reads the raw body, which ParseForm would consume
	if _, ok := query["ingest"]; ok {
		s.ingest(response, request)
		return
	}

	if _, ok := query["intersects"]; ok {
		if err := request.ParseForm(); err != nil {
			httpJSONError(response, err, 400)
			return
		}
		var hash string
		if s.mc != nil {
			hash = s.cacheKey(request)
			if cached, err := s.mc.Get(hash); err == nil {
				response.Write(cached.Value)
				return
			}
		}

		q, err := parseQuery(request)
		if err != nil {
			httpJSONError(response, err, 400)
			return
		}
		payload, err := s.cat.Intersects(request.Context(), q)
		if err != nil {
			httpJSONError(response, err, 400)
			return
		}
		response.Write(payload)

		if s.mc != nil {
			// don't care about errors; memcache may not necessarily retain this anyway
			s.mc.Set(&memcache.Item{Key: hash, Value: payload})
		}
		return
	}

	httpJSONError(response, errors.New("unknown operation; currently supported: ?intersects, ?ingest"), 400)
}

func (s *server) ingest(response http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		httpJSONError(response, errors.New("ingest requires POST"), 405)
		return
	}
	recs, err := parseRecords(request.Body)
	if err != nil {
		httpJSONError(response, err, 400)
		return
	}
	n, err := s.cat.Ingest(request.Context(), recs)
	if err != nil {
		httpJSONError(response, err, 500)
		return
	}
	if s.mc != nil {
		s.bumpGeneration()
	}
	if *verbose {
		log.Printf("ingested %d products", n)
	}
	fmt.Fprintf(response, `{ "ingested": %d }`, n)
}

// parseQuery reads wkt, srs, time, until, product_type, namespace and
// limit from the query string or form.
func parseQuery(request *http.Request) (*catalogueQuery, error) {
	q := &catalogueQuery{
		WKT:       strings.TrimSpace(request.FormValue("wkt")),
		SRID:      4326,
		NameSpace: request.FormValue("namespace"),
	}

	if srs := request.FormValue("srs"); len(srs) > 0 {
		code := strings.TrimPrefix(strings.ToUpper(srs), "EPSG:")
		srid, err := strconv.Atoi(code)
		if err != nil || srid <= 0 {
			return nil, fmt.Errorf("srs must be an EPSG code, got %q", srs)
		}
		q.SRID = srid
	}

	var err error
	if q.Start, err = parseTime(request.FormValue("time")); err != nil {
		return nil, err
	}
	if q.End, err = parseTime(request.FormValue("until")); err != nil {
		return nil, err
	}
	if !q.Start.IsZero() && !q.End.IsZero() && q.End.Before(q.Start) {
		return nil, fmt.Errorf("until %v is before time %v", q.End, q.Start)
	}

	for _, pt := range strings.Split(request.FormValue("product_type"), ",") {
		if pt = strings.TrimSpace(pt); len(pt) > 0 {
			q.ProductTypes = append(q.ProductTypes, pt)
		}
	}

	if limit := request.FormValue("limit"); len(limit) > 0 {
		q.Limit, err = strconv.Atoi(limit)
		if err != nil || q.Limit < 0 {
			return nil, fmt.Errorf("invalid limit %q", limit)
		}
	}
	return q, nil
}

func parseTime(s string) (time.Time, error) {
	if len(s) == 0 {
		return time.Time{}, nil
	}
	for _, layout := range []string{time.RFC3339Nano, isoDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, expected RFC 3339 or YYYY-MM-DD", s)
}

// parseRecords reads crawl output, one record per line, in either the
// json or the tsv format.
func parseRecords(r io.Reader) ([]*extr.ProductRecord, error) {
	var recs []*extr.ProductRecord
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 {
			continue
		}
		if fields := strings.SplitN(line, "\t", 3); len(fields) == 3 {
			line = fields[2]
		}
		rec := new(extr.ProductRecord)
		if err := json.Unmarshal([]byte(line), rec); err != nil {
			return nil, fmt.Errorf("line %d: %v", n, err)
		}
		if len(rec.ID) == 0 || len(rec.Path) == 0 || len(rec.ProductType) == 0 || rec.Acquired.IsZero() {
			return nil, fmt.Errorf("line %d: id, path, product_type and acquired are required", n)
		}
		recs = append(recs, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return recs, nil
}

func main() {
	flag.Parse()

	log.Printf("dbUser %s dbName %s dbPool %d httpPort %d", *dbUser, *dbName, *dbPool, *httpPort)

	dbinfo := fmt.Sprintf("user=%s host=%s dbname=%s sslmode=disable", *dbUser, *dbHost, *dbName)
	if *askPassword {
		fmt.Fprint(os.Stderr, "Database password: ")
		pw, err := terminal.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			log.Fatalf("cannot read password: %v", err)
		}
		dbinfo += fmt.Sprintf(" password='%s'", strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(string(pw)))
	}

	db, err := sql.Open("postgres", dbinfo)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	db.SetMaxIdleConns(*dbPool)
	db.SetMaxOpenConns(*dbLimit)

	cat := &pgCatalogue{db: db}
	if *initSchema {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := cat.initSchema(ctx)
		cancel()
		if err != nil {
			log.Fatalf("cannot create the catalogue tables: %v", err)
		}
	}

	s := &server{cat: cat}
	if *mcURI != "" {
		// lazy connection; errors returned in .Get
		s.mc = memcache.New(*mcURI)
	}

	http.HandleFunc("/", s.handler)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", *httpPort), nil))
}
