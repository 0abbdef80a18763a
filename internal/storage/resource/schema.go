package resource

// Schema Postgres 建表语句（与 pgStore 的读写一致；EnsureSchema 幂等执行）
const Schema = `
CREATE TABLE IF NOT EXISTS resources (
	id               TEXT PRIMARY KEY,
	doi              TEXT NOT NULL DEFAULT '',
	publisher        TEXT NOT NULL DEFAULT '',
	publication_year INT NOT NULL DEFAULT 0,
	version          TEXT NOT NULL DEFAULT '',
	language         TEXT NOT NULL DEFAULT '',
	resource_type    TEXT NOT NULL DEFAULT '',
	date_created     TEXT NOT NULL DEFAULT '',
	date_embargo     TEXT NOT NULL DEFAULT '',
	created_at       BIGINT NOT NULL,
	updated_at       BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS resource_titles (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	text        TEXT NOT NULL,
	type        TEXT NOT NULL DEFAULT 'main',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS resource_licenses (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	identifier  TEXT NOT NULL DEFAULT '',
	name        TEXT NOT NULL DEFAULT '',
	uri         TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS resource_descriptions (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	type        TEXT NOT NULL,
	text        TEXT NOT NULL,
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS resource_authors (
	id          BIGSERIAL PRIMARY KEY,
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	family_name TEXT NOT NULL,
	given_name  TEXT NOT NULL DEFAULT '',
	orcid       TEXT NOT NULL DEFAULT '',
	UNIQUE (resource_id, position)
);

CREATE TABLE IF NOT EXISTS author_affiliations (
	author_id BIGINT NOT NULL REFERENCES resource_authors(id) ON DELETE CASCADE,
	position  INT NOT NULL,
	name      TEXT NOT NULL,
	ror_id    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (author_id, position)
);

CREATE TABLE IF NOT EXISTS resource_contributors (
	id               BIGSERIAL PRIMARY KEY,
	resource_id      TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position         INT NOT NULL,
	kind             TEXT NOT NULL,
	family_name      TEXT NOT NULL DEFAULT '',
	given_name       TEXT NOT NULL DEFAULT '',
	orcid            TEXT NOT NULL DEFAULT '',
	institution_name TEXT NOT NULL DEFAULT '',
	UNIQUE (resource_id, position)
);

CREATE TABLE IF NOT EXISTS contributor_roles (
	contributor_id BIGINT NOT NULL REFERENCES resource_contributors(id) ON DELETE CASCADE,
	position       INT NOT NULL,
	role           TEXT NOT NULL,
	PRIMARY KEY (contributor_id, position)
);

CREATE TABLE IF NOT EXISTS contributor_affiliations (
	contributor_id BIGINT NOT NULL REFERENCES resource_contributors(id) ON DELETE CASCADE,
	position       INT NOT NULL,
	name           TEXT NOT NULL,
	ror_id         TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (contributor_id, position)
);

CREATE TABLE IF NOT EXISTS contact_persons (
	resource_id  TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position     INT NOT NULL,
	family_name  TEXT NOT NULL,
	given_name   TEXT NOT NULL DEFAULT '',
	email        TEXT NOT NULL DEFAULT '',
	website      TEXT NOT NULL DEFAULT '',
	organization TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS laboratories (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	name        TEXT NOT NULL,
	lab_id      TEXT NOT NULL DEFAULT '',
	affiliation TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS resource_keywords (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	kind        TEXT NOT NULL,
	text        TEXT NOT NULL,
	path        TEXT NOT NULL DEFAULT '',
	scheme      TEXT NOT NULL DEFAULT '',
	scheme_uri  TEXT NOT NULL DEFAULT '',
	value_uri   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS coverages (
	resource_id TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position    INT NOT NULL,
	lat_min     DOUBLE PRECISION,
	lat_max     DOUBLE PRECISION,
	lon_min     DOUBLE PRECISION,
	lon_max     DOUBLE PRECISION,
	description TEXT NOT NULL DEFAULT '',
	start_date  TEXT NOT NULL DEFAULT '',
	end_date    TEXT NOT NULL DEFAULT '',
	start_time  TEXT NOT NULL DEFAULT '',
	end_time    TEXT NOT NULL DEFAULT '',
	timezone    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS related_works (
	resource_id     TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position        INT NOT NULL,
	identifier      TEXT NOT NULL,
	identifier_type TEXT NOT NULL,
	relation_type   TEXT NOT NULL,
	PRIMARY KEY (resource_id, position)
);

CREATE TABLE IF NOT EXISTS funding_references (
	resource_id    TEXT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
	position       INT NOT NULL,
	funder         TEXT NOT NULL,
	funder_id      TEXT NOT NULL DEFAULT '',
	funder_id_type TEXT NOT NULL DEFAULT '',
	award_number   TEXT NOT NULL DEFAULT '',
	award_title    TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (resource_id, position)
);

CREATE INDEX IF NOT EXISTS idx_resources_year ON resources(publication_year);
CREATE INDEX IF NOT EXISTS idx_resources_type ON resources(resource_type);
CREATE INDEX IF NOT EXISTS idx_resources_doi ON resources(doi);
`
