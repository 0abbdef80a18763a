// Copyright 2026 fanjia1024
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package resource

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"metadata-platform/pkg/errors"
	"metadata-platform/pkg/metrics"
)

// pgStore PostgreSQL 实现：聚合根 + 子表，保存在单事务内整体重写
type pgStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore 创建基于 PostgreSQL 的 Store；dsn 为连接串，poolSize <=0 时使用 pgx 默认
func NewPostgresStore(ctx context.Context, dsn string, poolSize int) (Store, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if poolSize > 0 {
		config.MaxConns = int32(poolSize)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	s := &pgStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ensure schema")
	}
	return s, nil
}

// ensureSchema 幂等建表（CREATE TABLE IF NOT EXISTS）
func (s *pgStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, Schema)
	return err
}

// Close 关闭连接池
func (s *pgStore) Close() error {
	s.pool.Close()
	return nil
}

// Create 创建资源聚合（单事务）
func (s *pgStore) Create(ctx context.Context, res *Resource) error {
	start := time.Now()
	defer func() {
		metrics.ResourceSaveDuration.WithLabelValues("create").Observe(time.Since(start).Seconds())
	}()

	now := time.Now().Unix()
	res.CreatedAt = now
	res.UpdatedAt = now

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO resources (id, doi, publisher, publication_year, version, language, resource_type, date_created, date_embargo, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		res.ID, res.DOI, res.Publisher, res.PublicationYear, res.Version, res.Language,
		res.ResourceType, res.DateCreated, res.DateEmbargo, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.Wrapf(errors.ErrConflict, "resource %s", res.ID)
		}
		return err
	}

	if err := insertChildren(ctx, tx, res); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update 更新聚合根并整体重写子表（单事务，无孤儿子记录）
func (s *pgStore) Update(ctx context.Context, res *Resource) error {
	start := time.Now()
	defer func() {
		metrics.ResourceSaveDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())
	}()

	res.UpdatedAt = time.Now().Unix()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE resources SET doi = $2, publisher = $3, publication_year = $4, version = $5, language = $6,
			resource_type = $7, date_created = $8, date_embargo = $9,
			updated_at = GREATEST($10, updated_at + 1)
		WHERE id = $1`,
		res.ID, res.DOI, res.Publisher, res.PublicationYear, res.Version, res.Language,
		res.ResourceType, res.DateCreated, res.DateEmbargo, res.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errors.ErrNotFound, "resource %s", res.ID)
	}

	// 子表整体重写；authors/contributors 的孙表由 ON DELETE CASCADE 带走
	for _, table := range []string{
		"resource_titles", "resource_licenses", "resource_descriptions",
		"resource_authors", "resource_contributors", "contact_persons",
		"laboratories", "resource_keywords", "coverages", "related_works",
		"funding_references",
	} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE resource_id = $1`, table), res.ID); err != nil {
			return err
		}
	}
	if err := insertChildren(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	// 读回推进后的 updated_at，保持与存储一致（导出缓存键依赖）
	return s.pool.QueryRow(ctx, `SELECT updated_at FROM resources WHERE id = $1`, res.ID).Scan(&res.UpdatedAt)
}

// Delete 删除资源；子表由外键级联
func (s *pgStore) Delete(ctx context.Context, id string) error {
	start := time.Now()
	defer func() {
		metrics.ResourceSaveDuration.WithLabelValues("delete").Observe(time.Since(start).Seconds())
	}()

	tag, err := s.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(errors.ErrNotFound, "resource %s", id)
	}
	return nil
}

// Get 读取完整聚合
func (s *pgStore) Get(ctx context.Context, id string) (*Resource, error) {
	res := &Resource{ID: id}
	err := s.pool.QueryRow(ctx, `
		SELECT doi, publisher, publication_year, version, language, resource_type, date_created, date_embargo, created_at, updated_at
		FROM resources WHERE id = $1`, id).
		Scan(&res.DOI, &res.Publisher, &res.PublicationYear, &res.Version, &res.Language,
			&res.ResourceType, &res.DateCreated, &res.DateEmbargo, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, errors.Wrapf(errors.ErrNotFound, "resource %s", id)
		}
		return nil, err
	}
	if err := s.loadChildren(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// List 列出资源（仅聚合根 + 主标题），按 created_at 降序
func (s *pgStore) List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Resource, error) {
	where, args := buildFilter(filter)
	limit, offset := 1000, 0
	if pagination != nil {
		if pagination.Limit > 0 {
			limit = pagination.Limit
		}
		if pagination.Offset > 0 {
			offset = pagination.Offset
		}
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT r.id, r.doi, r.publisher, r.publication_year, r.version, r.language, r.resource_type,
			r.date_created, r.date_embargo, r.created_at, r.updated_at
		FROM resources r %s
		ORDER BY r.created_at DESC, r.id
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*Resource
	for rows.Next() {
		res := &Resource{}
		if err := rows.Scan(&res.ID, &res.DOI, &res.Publisher, &res.PublicationYear, &res.Version,
			&res.Language, &res.ResourceType, &res.DateCreated, &res.DateEmbargo,
			&res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 列表视图带主标题，避免前端再逐个 Get
	for _, res := range results {
		rows, err := s.pool.Query(ctx,
			`SELECT text, type FROM resource_titles WHERE resource_id = $1 ORDER BY position`, res.ID)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var t Title
			if err := rows.Scan(&t.Text, &t.Type); err != nil {
				rows.Close()
				return nil, err
			}
			res.Titles = append(res.Titles, t)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// Count 统计资源数量
func (s *pgStore) Count(ctx context.Context, filter *Filter) (int64, error) {
	where, args := buildFilter(filter)
	var n int64
	err := s.pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM resources r %s`, where), args...).Scan(&n)
	return n, err
}

// buildFilter 构造 WHERE 子句；search 对 doi/标题/作者姓氏模糊匹配
func buildFilter(filter *Filter) (string, []interface{}) {
	if filter == nil {
		return "", nil
	}
	var conds []string
	var args []interface{}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		conds = append(conds, fmt.Sprintf("r.publication_year = $%d", len(args)))
	}
	if filter.ResourceType != "" {
		args = append(args, filter.ResourceType)
		conds = append(conds, fmt.Sprintf("r.resource_type = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(`(r.doi ILIKE $%d
			OR EXISTS (SELECT 1 FROM resource_titles t WHERE t.resource_id = r.id AND t.text ILIKE $%d)
			OR EXISTS (SELECT 1 FROM resource_authors a WHERE a.resource_id = r.id AND a.family_name ILIKE $%d))`, n, n, n))
	}
	if len(conds) == 0 {
		return "", nil
	}
	where := "WHERE " + conds[0]
	for _, c := range conds[1:] {
		where += " AND " + c
	}
	return where, args
}

// insertChildren 插入全部子记录，slice 顺序写入 position
func insertChildren(ctx context.Context, tx pgx.Tx, res *Resource) error {
	for i, t := range res.Titles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_titles (resource_id, position, text, type) VALUES ($1, $2, $3, $4)`,
			res.ID, i, t.Text, t.Type); err != nil {
			return errors.Wrap(err, "insert title")
		}
	}
	for i, l := range res.Licenses {
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_licenses (resource_id, position, identifier, name, uri) VALUES ($1, $2, $3, $4, $5)`,
			res.ID, i, l.Identifier, l.Name, l.URI); err != nil {
			return errors.Wrap(err, "insert license")
		}
	}
	for i, d := range res.Descriptions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_descriptions (resource_id, position, type, text) VALUES ($1, $2, $3, $4)`,
			res.ID, i, d.Type, d.Text); err != nil {
			return errors.Wrap(err, "insert description")
		}
	}
	for i, a := range res.Authors {
		var authorID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO resource_authors (resource_id, position, family_name, given_name, orcid)
			 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			res.ID, i, a.FamilyName, a.GivenName, a.ORCID).Scan(&authorID)
		if err != nil {
			return errors.Wrap(err, "insert author")
		}
		for j, aff := range a.Affiliations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO author_affiliations (author_id, position, name, ror_id) VALUES ($1, $2, $3, $4)`,
				authorID, j, aff.Name, aff.RORID); err != nil {
				return errors.Wrap(err, "insert author affiliation")
			}
		}
	}
	for i, c := range res.Contributors {
		var contribID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO resource_contributors (resource_id, position, kind, family_name, given_name, orcid, institution_name)
			 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			res.ID, i, c.Kind, c.FamilyName, c.GivenName, c.ORCID, c.InstitutionName).Scan(&contribID)
		if err != nil {
			return errors.Wrap(err, "insert contributor")
		}
		for j, role := range c.Roles {
			if _, err := tx.Exec(ctx,
				`INSERT INTO contributor_roles (contributor_id, position, role) VALUES ($1, $2, $3)`,
				contribID, j, role); err != nil {
				return errors.Wrap(err, "insert contributor role")
			}
		}
		for j, aff := range c.Affiliations {
			if _, err := tx.Exec(ctx,
				`INSERT INTO contributor_affiliations (contributor_id, position, name, ror_id) VALUES ($1, $2, $3, $4)`,
				contribID, j, aff.Name, aff.RORID); err != nil {
				return errors.Wrap(err, "insert contributor affiliation")
			}
		}
	}
	for i, cp := range res.ContactPersons {
		if _, err := tx.Exec(ctx,
			`INSERT INTO contact_persons (resource_id, position, family_name, given_name, email, website, organization)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			res.ID, i, cp.FamilyName, cp.GivenName, cp.Email, cp.Website, cp.Organization); err != nil {
			return errors.Wrap(err, "insert contact person")
		}
	}
	for i, lab := range res.Laboratories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO laboratories (resource_id, position, name, lab_id, affiliation) VALUES ($1, $2, $3, $4, $5)`,
			res.ID, i, lab.Name, lab.LabID, lab.Affiliation); err != nil {
			return errors.Wrap(err, "insert laboratory")
		}
	}
	for i, k := range res.Keywords {
		if _, err := tx.Exec(ctx,
			`INSERT INTO resource_keywords (resource_id, position, kind, text, path, scheme, scheme_uri, value_uri)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			res.ID, i, k.Kind, k.Text, k.Path, k.Scheme, k.SchemeURI, k.ValueURI); err != nil {
			return errors.Wrap(err, "insert keyword")
		}
	}
	for i, cov := range res.Coverages {
		if _, err := tx.Exec(ctx,
			`INSERT INTO coverages (resource_id, position, lat_min, lat_max, lon_min, lon_max, description, start_date, end_date, start_time, end_time, timezone)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			res.ID, i, cov.LatMin, cov.LatMax, cov.LonMin, cov.LonMax, cov.Description,
			cov.StartDate, cov.EndDate, cov.StartTime, cov.EndTime, cov.Timezone); err != nil {
			return errors.Wrap(err, "insert coverage")
		}
	}
	for i, rw := range res.RelatedWorks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO related_works (resource_id, position, identifier, identifier_type, relation_type) VALUES ($1, $2, $3, $4, $5)`,
			res.ID, i, rw.Identifier, rw.IdentifierType, rw.RelationType); err != nil {
			return errors.Wrap(err, "insert related work")
		}
	}
	for i, fr := range res.FundingReferences {
		if _, err := tx.Exec(ctx,
			`INSERT INTO funding_references (resource_id, position, funder, funder_id, funder_id_type, award_number, award_title)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			res.ID, i, fr.Funder, fr.FunderID, fr.FunderIDType, fr.AwardNumber, fr.AwardTitle); err != nil {
			return errors.Wrap(err, "insert funding reference")
		}
	}
	return nil
}

// loadChildren 按 position 顺序装载全部子记录
func (s *pgStore) loadChildren(ctx context.Context, res *Resource) error {
	rows, err := s.pool.Query(ctx,
		`SELECT text, type FROM resource_titles WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var t Title
		if err := rows.Scan(&t.Text, &t.Type); err != nil {
			rows.Close()
			return err
		}
		res.Titles = append(res.Titles, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT identifier, name, uri FROM resource_licenses WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var l License
		if err := rows.Scan(&l.Identifier, &l.Name, &l.URI); err != nil {
			rows.Close()
			return err
		}
		res.Licenses = append(res.Licenses, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT type, text FROM resource_descriptions WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var d Description
		if err := rows.Scan(&d.Type, &d.Text); err != nil {
			rows.Close()
			return err
		}
		res.Descriptions = append(res.Descriptions, d)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	// 作者与其隶属（两次查询后在内存拼接，避免笛卡尔积）
	var authorIDs []int64
	rows, err = s.pool.Query(ctx,
		`SELECT id, family_name, given_name, orcid FROM resource_authors WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var a Author
		if err := rows.Scan(&id, &a.FamilyName, &a.GivenName, &a.ORCID); err != nil {
			rows.Close()
			return err
		}
		authorIDs = append(authorIDs, id)
		res.Authors = append(res.Authors, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i, id := range authorIDs {
		rows, err = s.pool.Query(ctx,
			`SELECT name, ror_id FROM author_affiliations WHERE author_id = $1 ORDER BY position`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var aff Affiliation
			if err := rows.Scan(&aff.Name, &aff.RORID); err != nil {
				rows.Close()
				return err
			}
			res.Authors[i].Affiliations = append(res.Authors[i].Affiliations, aff)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	var contribIDs []int64
	rows, err = s.pool.Query(ctx,
		`SELECT id, kind, family_name, given_name, orcid, institution_name FROM resource_contributors WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var c Contributor
		if err := rows.Scan(&id, &c.Kind, &c.FamilyName, &c.GivenName, &c.ORCID, &c.InstitutionName); err != nil {
			rows.Close()
			return err
		}
		contribIDs = append(contribIDs, id)
		res.Contributors = append(res.Contributors, c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}
	for i, id := range contribIDs {
		rows, err = s.pool.Query(ctx,
			`SELECT role FROM contributor_roles WHERE contributor_id = $1 ORDER BY position`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var role string
			if err := rows.Scan(&role); err != nil {
				rows.Close()
				return err
			}
			res.Contributors[i].Roles = append(res.Contributors[i].Roles, role)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		rows, err = s.pool.Query(ctx,
			`SELECT name, ror_id FROM contributor_affiliations WHERE contributor_id = $1 ORDER BY position`, id)
		if err != nil {
			return err
		}
		for rows.Next() {
			var aff Affiliation
			if err := rows.Scan(&aff.Name, &aff.RORID); err != nil {
				rows.Close()
				return err
			}
			res.Contributors[i].Affiliations = append(res.Contributors[i].Affiliations, aff)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
	}

	rows, err = s.pool.Query(ctx,
		`SELECT family_name, given_name, email, website, organization FROM contact_persons WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cp ContactPerson
		if err := rows.Scan(&cp.FamilyName, &cp.GivenName, &cp.Email, &cp.Website, &cp.Organization); err != nil {
			rows.Close()
			return err
		}
		res.ContactPersons = append(res.ContactPersons, cp)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT name, lab_id, affiliation FROM laboratories WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var lab Laboratory
		if err := rows.Scan(&lab.Name, &lab.LabID, &lab.Affiliation); err != nil {
			rows.Close()
			return err
		}
		res.Laboratories = append(res.Laboratories, lab)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT kind, text, path, scheme, scheme_uri, value_uri FROM resource_keywords WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var k Keyword
		if err := rows.Scan(&k.Kind, &k.Text, &k.Path, &k.Scheme, &k.SchemeURI, &k.ValueURI); err != nil {
			rows.Close()
			return err
		}
		res.Keywords = append(res.Keywords, k)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT lat_min, lat_max, lon_min, lon_max, description, start_date, end_date, start_time, end_time, timezone
		 FROM coverages WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cov Coverage
		if err := rows.Scan(&cov.LatMin, &cov.LatMax, &cov.LonMin, &cov.LonMax, &cov.Description,
			&cov.StartDate, &cov.EndDate, &cov.StartTime, &cov.EndTime, &cov.Timezone); err != nil {
			rows.Close()
			return err
		}
		res.Coverages = append(res.Coverages, cov)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT identifier, identifier_type, relation_type FROM related_works WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var rw RelatedWork
		if err := rows.Scan(&rw.Identifier, &rw.IdentifierType, &rw.RelationType); err != nil {
			rows.Close()
			return err
		}
		res.RelatedWorks = append(res.RelatedWorks, rw)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	rows, err = s.pool.Query(ctx,
		`SELECT funder, funder_id, funder_id_type, award_number, award_title FROM funding_references WHERE resource_id = $1 ORDER BY position`, res.ID)
	if err != nil {
		return err
	}
	for rows.Next() {
		var fr FundingReference
		if err := rows.Scan(&fr.Funder, &fr.FunderID, &fr.FunderIDType, &fr.AwardNumber, &fr.AwardTitle); err != nil {
			rows.Close()
			return err
		}
		res.FundingReferences = append(res.FundingReferences, fr)
	}
	rows.Close()
	return rows.Err()
}

// isUniqueViolation 判断是否 Postgres 唯一约束冲突（SQLSTATE 23505）
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if stderrors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ Store = (*pgStore)(nil)
