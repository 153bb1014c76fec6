package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tcgvault/backend/internal/domain"
)

// Identifier lists are chunked so no single query carries an unbounded
// parameter set.
const queryChunkSize = 100

// CatalogRepository persists and serves catalog data: categories, groups,
// products, and extended data. It backs both the matching core's reads and
// the HTTP API's catalog endpoints.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository creates a repository on the given database.
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{pool: db.Pool()}
}

func chunkStrings(items []string, size int) [][]string {
	var chunks [][]string
	for len(items) > size {
		chunks = append(chunks, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		chunks = append(chunks, items)
	}
	return chunks
}

// timePtr maps the zero time to SQL NULL.
func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// ProductsByNumber fetches every product whose printed code matches one of
// the given numbers, case-insensitively. Queries are chunked; the result is
// the concatenation of all chunks.
func (r *CatalogRepository) ProductsByNumber(ctx context.Context, numbers []string) ([]domain.CatalogProduct, error) {
	var products []domain.CatalogProduct

	upper := make([]string, 0, len(numbers))
	for _, n := range numbers {
		if n = strings.TrimSpace(n); n != "" {
			upper = append(upper, strings.ToUpper(n))
		}
	}

	for _, chunk := range chunkStrings(upper, queryChunkSize) {
		rows, err := r.pool.Query(ctx,
			`SELECT product_id, category_id, group_id, name, COALESCE(clean_name, ''),
			        COALESCE(number, ''), COALESCE(rarity, ''), COALESCE(image_url, ''),
			        COALESCE(url, ''), modified_on, COALESCE(raw, '')
			 FROM products WHERE UPPER(number) = ANY($1)`,
			chunk,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query products by number: %w", err)
		}

		for rows.Next() {
			var p domain.CatalogProduct
			var modifiedOn *time.Time
			if err := rows.Scan(&p.ProductID, &p.CategoryID, &p.GroupID, &p.Name, &p.CleanName,
				&p.Number, &p.Rarity, &p.ImageURL, &p.URL, &modifiedOn, &p.Raw); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan product: %w", err)
			}
			p.ModifiedOn = timeValue(modifiedOn)
			if p.Rarity == "" {
				p.Rarity = rarityFromExtendedData(p.Raw)
			}
			products = append(products, p)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read products by number: %w", err)
		}
	}

	return products, nil
}

// GroupsByName fetches groups whose name contains any of the given names,
// case-insensitively. The containment match deliberately over-fetches: the
// matcher resolves abbreviation prefixes and bare names in memory, so the
// index needs every group a hint could plausibly refer to.
func (r *CatalogRepository) GroupsByName(ctx context.Context, names []string) ([]domain.CatalogGroup, error) {
	var groups []domain.CatalogGroup
	seen := make(map[int64]struct{})

	patterns := make([]string, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			patterns = append(patterns, "%"+n+"%")
		}
	}

	for _, chunk := range chunkStrings(patterns, queryChunkSize) {
		rows, err := r.pool.Query(ctx,
			`SELECT group_id, category_id, name, COALESCE(abbreviation, ''),
			        COALESCE(is_supplemental, false), published_on, modified_on
			 FROM groups WHERE name ILIKE ANY($1)`,
			chunk,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query groups by name: %w", err)
		}

		for rows.Next() {
			var g domain.CatalogGroup
			var publishedOn, modifiedOn *time.Time
			if err := rows.Scan(&g.GroupID, &g.CategoryID, &g.Name, &g.Abbreviation,
				&g.IsSupplemental, &publishedOn, &modifiedOn); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan group: %w", err)
			}
			g.PublishedOn = timeValue(publishedOn)
			g.ModifiedOn = timeValue(modifiedOn)
			if _, ok := seen[g.GroupID]; !ok {
				seen[g.GroupID] = struct{}{}
				groups = append(groups, g)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read groups by name: %w", err)
		}
	}

	return groups, nil
}

// rarityFromExtendedData digs the rarity out of a product's raw feed JSON
// for rows written before rarity became its own column.
func rarityFromExtendedData(raw string) string {
	if raw == "" {
		return ""
	}
	var row struct {
		ExtendedData []struct {
			Name        string `json:"name"`
			DisplayName string `json:"displayName"`
			Value       string `json:"value"`
		} `json:"extendedData"`
	}
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return ""
	}
	for _, entry := range row.ExtendedData {
		name := strings.ToLower(strings.TrimSpace(entry.Name))
		display := strings.ToLower(strings.TrimSpace(entry.DisplayName))
		if name == "rarity" || display == "rarity" {
			return strings.TrimSpace(entry.Value)
		}
	}
	return ""
}

// UpsertCategories writes categories keyed by their feed id.
func (r *CatalogRepository) UpsertCategories(ctx context.Context, categories []domain.Category) error {
	if len(categories) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, c := range categories {
		batch.Queue(
			`INSERT INTO categories (category_id, name, modified_on, raw)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (category_id) DO UPDATE SET name = $2, modified_on = $3, raw = $4`,
			c.CategoryID, c.Name, timePtr(c.ModifiedOn), c.Raw,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert categories: %w", err)
	}
	return nil
}

// UpsertGroups writes groups keyed by their feed id, skipping rows whose
// modified-on stamp matches what is already stored.
func (r *CatalogRepository) UpsertGroups(ctx context.Context, groups []domain.CatalogGroup) error {
	if len(groups) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.GroupID)
	}
	existing, err := r.existingStamps(ctx, "groups", "group_id", ids)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	skipped := 0
	for _, g := range groups {
		if unchangedSince(existing, g.GroupID, g.ModifiedOn) {
			skipped++
			continue
		}
		batch.Queue(
			`INSERT INTO groups (group_id, category_id, name, abbreviation, is_supplemental, published_on, modified_on, raw)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (group_id) DO UPDATE SET
			   category_id = $2, name = $3, abbreviation = $4, is_supplemental = $5,
			   published_on = $6, modified_on = $7, raw = $8`,
			g.GroupID, g.CategoryID, g.Name, g.Abbreviation, g.IsSupplemental,
			timePtr(g.PublishedOn), timePtr(g.ModifiedOn), g.Raw,
		)
	}
	if skipped > 0 {
		log.Printf("[DB] Skipped %d unchanged groups", skipped)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert groups: %w", err)
	}
	return nil
}

// UpsertProducts writes products keyed by their feed id, skipping rows
// whose modified-on stamp matches what is already stored.
func (r *CatalogRepository) UpsertProducts(ctx context.Context, products []domain.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ProductID)
	}
	existing, err := r.existingStamps(ctx, "products", "product_id", ids)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	skipped := 0
	for _, p := range products {
		if unchangedSince(existing, p.ProductID, p.ModifiedOn) {
			skipped++
			continue
		}
		batch.Queue(
			`INSERT INTO products (product_id, category_id, group_id, name, clean_name, number, rarity, image_url, url, modified_on, raw)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (product_id) DO UPDATE SET
			   category_id = $2, group_id = $3, name = $4, clean_name = $5, number = $6,
			   rarity = $7, image_url = $8, url = $9, modified_on = $10, raw = $11`,
			p.ProductID, p.CategoryID, p.GroupID, p.Name, p.CleanName, p.Number,
			p.Rarity, p.ImageURL, p.URL, timePtr(p.ModifiedOn), p.Raw,
		)
	}
	if skipped > 0 {
		log.Printf("[DB] Skipped %d unchanged products", skipped)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert products: %w", err)
	}
	return nil
}

// UpsertExtendedData writes extended-data entries keyed (product_id, key).
func (r *CatalogRepository) UpsertExtendedData(ctx context.Context, entries []domain.ExtendedDataEntry) error {
	if len(entries) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(
			`INSERT INTO product_extended_data (product_id, key, value)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (product_id, key) DO UPDATE SET value = $3`,
			e.ProductID, e.Key, e.Value,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert extended data: %w", err)
	}
	return nil
}

// ListExtendedData returns a page of extended-data entries, optionally
// filtered by product, plus the unpaginated total. Pages are ordered by
// the (product_id, key) composite key.
func (r *CatalogRepository) ListExtendedData(ctx context.Context, productID *int64, offset, limit int) ([]domain.ExtendedDataEntry, int64, error) {
	where := ""
	args := []any{}
	if productID != nil {
		where = " WHERE product_id = $1"
		args = append(args, *productID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM product_extended_data`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count extended data: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT product_id, key, COALESCE(value, '')
		 FROM product_extended_data%s ORDER BY product_id, key OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list extended data: %w", err)
	}
	defer rows.Close()

	var entries []domain.ExtendedDataEntry
	for rows.Next() {
		var e domain.ExtendedDataEntry
		if err := rows.Scan(&e.ProductID, &e.Key, &e.Value); err != nil {
			return nil, 0, fmt.Errorf("failed to scan extended data entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// existingStamps loads the stored modified-on values for the given ids.
func (r *CatalogRepository) existingStamps(ctx context.Context, table, idColumn string, ids []int64) (map[int64]time.Time, error) {
	stamps := make(map[int64]time.Time, len(ids))

	for start := 0; start < len(ids); start += queryChunkSize {
		end := start + queryChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		rows, err := r.pool.Query(ctx,
			fmt.Sprintf(`SELECT %s, modified_on FROM %s WHERE %s = ANY($1)`, idColumn, table, idColumn),
			ids[start:end],
		)
		if err != nil {
			return nil, fmt.Errorf("failed to query existing %s stamps: %w", table, err)
		}
		for rows.Next() {
			var id int64
			var modifiedOn *time.Time
			if err := rows.Scan(&id, &modifiedOn); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s stamp: %w", table, err)
			}
			if modifiedOn != nil {
				stamps[id] = *modifiedOn
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read existing %s stamps: %w", table, err)
		}
	}

	return stamps, nil
}

// unchangedSince reports whether a row can be skipped: both sides must carry
// a stamp and the stamps must match.
func unchangedSince(existing map[int64]time.Time, id int64, modifiedOn time.Time) bool {
	stored, ok := existing[id]
	if !ok || modifiedOn.IsZero() {
		return false
	}
	return stored.Equal(modifiedOn)
}

// ListCategories returns all categories ordered by name.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT category_id, name, modified_on FROM categories ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		var modifiedOn *time.Time
		if err := rows.Scan(&c.CategoryID, &c.Name, &modifiedOn); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		c.ModifiedOn = timeValue(modifiedOn)
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// ListGroups returns a page of groups, optionally filtered by category,
// plus the unpaginated total.
func (r *CatalogRepository) ListGroups(ctx context.Context, categoryID *int64, offset, limit int) ([]domain.CatalogGroup, int64, error) {
	where := ""
	args := []any{}
	if categoryID != nil {
		where = " WHERE category_id = $1"
		args = append(args, *categoryID)
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM groups`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT group_id, category_id, name, COALESCE(abbreviation, ''),
		        COALESCE(is_supplemental, false), published_on, modified_on
		 FROM groups%s ORDER BY name OFFSET $%d LIMIT $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, offset, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []domain.CatalogGroup
	for rows.Next() {
		var g domain.CatalogGroup
		var publishedOn, modifiedOn *time.Time
		if err := rows.Scan(&g.GroupID, &g.CategoryID, &g.Name, &g.Abbreviation,
			&g.IsSupplemental, &publishedOn, &modifiedOn); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		g.PublishedOn = timeValue(publishedOn)
		g.ModifiedOn = timeValue(modifiedOn)
		groups = append(groups, g)
	}
	return groups, total, rows.Err()
}

// ListProducts returns a page of products matching the filter, plus the
// unpaginated total.
func (r *CatalogRepository) ListProducts(ctx context.Context, filter domain.ProductFilter, offset, limit int) ([]domain.CatalogProduct, int64, error) {
	where := " WHERE 1=1"
	args := []any{}
	argNum := 1

	if filter.CategoryID != nil {
		where += fmt.Sprintf(" AND category_id = $%d", argNum)
		args = append(args, *filter.CategoryID)
		argNum++
	}
	if filter.GroupID != nil {
		where += fmt.Sprintf(" AND group_id = $%d", argNum)
		args = append(args, *filter.GroupID)
		argNum++
	}
	if filter.Number != "" {
		where += fmt.Sprintf(" AND UPPER(number) = $%d", argNum)
		args = append(args, strings.ToUpper(filter.Number))
		argNum++
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", argNum)
		args = append(args, "%"+filter.Search+"%")
		argNum++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT product_id, category_id, group_id, name, COALESCE(clean_name, ''),
		        COALESCE(number, ''), COALESCE(rarity, ''), COALESCE(image_url, ''),
		        COALESCE(url, ''), modified_on
		 FROM products%s ORDER BY name, product_id OFFSET $%d LIMIT $%d`,
		where, argNum, argNum+1,
	)
	args = append(args, offset, limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []domain.CatalogProduct
	for rows.Next() {
		var p domain.CatalogProduct
		var modifiedOn *time.Time
		if err := rows.Scan(&p.ProductID, &p.CategoryID, &p.GroupID, &p.Name, &p.CleanName,
			&p.Number, &p.Rarity, &p.ImageURL, &p.URL, &modifiedOn); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		p.ModifiedOn = timeValue(modifiedOn)
		products = append(products, p)
	}
	return products, total, rows.Err()
}

// GetProduct returns one product by id, or domain.ErrNotFound.
func (r *CatalogRepository) GetProduct(ctx context.Context, productID int64) (*domain.CatalogProduct, error) {
	var p domain.CatalogProduct
	var modifiedOn *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT product_id, category_id, group_id, name, COALESCE(clean_name, ''),
		        COALESCE(number, ''), COALESCE(rarity, ''), COALESCE(image_url, ''),
		        COALESCE(url, ''), modified_on
		 FROM products WHERE product_id = $1`,
		productID,
	).Scan(&p.ProductID, &p.CategoryID, &p.GroupID, &p.Name, &p.CleanName,
		&p.Number, &p.Rarity, &p.ImageURL, &p.URL, &modifiedOn)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", productID, err)
	}
	p.ModifiedOn = timeValue(modifiedOn)
	return &p, nil
}
