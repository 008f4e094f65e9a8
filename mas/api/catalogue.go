package main

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	extr "github.com/nci/gcube/crawl/extractor"
)

//go:embed schema.sql
var schema string

// catalogueQuery selects products intersecting a region within a time
// range.  Zero values leave the matching criterion out.
type catalogueQuery struct {
	WKT          string
	SRID         int
	Start        time.Time
	End          time.Time
	ProductTypes []string
	NameSpace    string
	Limit        int
}

type catalogue interface {
	// Intersects returns the matching records as a JSON document.
	Intersects(ctx context.Context, q *catalogueQuery) ([]byte, error)
	Ingest(ctx context.Context, recs []*extr.ProductRecord) (int, error)
}

type pgCatalogue struct {
	db *sql.DB
}

func (c *pgCatalogue) initSchema(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// The nullif() noise is to coerce Go's zero values for missing
// parameters into proper null arguments.
const intersectsQuery = `select json_build_object('products', coalesce(json_agg(p.record order by p.acquired, p.path), '[]'::json))::text
from (
	select record, acquired, path from products
	where (nullif($1, '') is null or st_intersects(polygon, st_transform(st_geomfromtext($1, $2::integer), 4326)))
	and (nullif($3, '') is null or acquired >= $3::timestamptz)
	and (nullif($4, '') is null or acquired <= $4::timestamptz)
	and (nullif($5, '') is null or product_type = any(string_to_array($5, ',')))
	and (nullif($6, '') is null or namespace = $6)
	order by acquired, path
	limit nullif($7, 0)
) p`

func (c *pgCatalogue) Intersects(ctx context.Context, q *catalogueQuery) ([]byte, error) {
	var start, end string
	if !q.Start.IsZero() {
		start = q.Start.Format(time.RFC3339Nano)
	}
	if !q.End.IsZero() {
		end = q.End.Format(time.RFC3339Nano)
	}

	var payload string
	err := c.db.QueryRowContext(ctx, intersectsQuery,
		q.WKT, q.SRID, start, end, strings.Join(q.ProductTypes, ","), q.NameSpace, q.Limit,
	).Scan(&payload)
	if err != nil {
		return nil, err
	}
	return []byte(payload), nil
}

const upsertProduct = `insert into products (id, path, product_type, namespace, satellite, tile, code_image, acquired, crs, polygon, record)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9, case when $10 = '' then null else st_geomfromtext($10, 4326) end, $11)
on conflict (id) do update set
	path = excluded.path, product_type = excluded.product_type, namespace = excluded.namespace,
	satellite = excluded.satellite, tile = excluded.tile, code_image = excluded.code_image,
	acquired = excluded.acquired, crs = excluded.crs, polygon = excluded.polygon, record = excluded.record`

// Ingest upserts records in a single transaction.
func (c *pgCatalogue) Ingest(ctx context.Context, recs []*extr.ProductRecord) (int, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertProduct)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, rec := range recs {
		doc, err := json.Marshal(rec)
		if err != nil {
			return 0, err
		}
		_, err = stmt.ExecContext(ctx, rec.ID, rec.Path, rec.ProductType, rec.NameSpace, rec.Satellite,
			rec.Tile, rec.CodeImage, rec.Acquired, rec.CRS, rec.Polygon, string(doc))
		if err != nil {
			return 0, fmt.Errorf("%s: %v", rec.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(recs), nil
}
