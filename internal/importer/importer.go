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

// Package importer 把上传的 XML 文件解析回可编辑的记录结构。
// 只支持 DataCite（编辑器自己的保存格式）；ISO 与 DIF 仅识别后拒绝。
package importer

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"metadata-platform/internal/export"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	pkgerrors "metadata-platform/pkg/errors"
	"metadata-platform/pkg/metrics"
	"metadata-platform/pkg/tracing"
)

// Importer 解析上传文件并保留原件
type Importer struct {
	objects object.Store
}

// NewImporter 创建 Importer；objects 为 nil 时不保留原件
func NewImporter(objects object.Store) *Importer {
	return &Importer{objects: objects}
}

// Import 识别格式、解析为记录，并把原件存入 imports/<uuid>.xml
func (im *Importer) Import(ctx context.Context, filename string, data []byte) (*resource.Resource, error) {
	ctx, span := tracing.StartImportSpan(ctx, filename)
	defer span.End()

	scheme, err := SniffScheme(data)
	if err != nil {
		metrics.ImportTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if scheme != export.SchemeDataCite {
		metrics.ImportTotal.WithLabelValues("rejected").Inc()
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg,
			"import of %s files is not supported, upload a DataCite export", scheme)
	}

	res, err := ParseDataCite(data)
	if err != nil {
		metrics.ImportTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if im.objects != nil {
		path := fmt.Sprintf("imports/%s.xml", uuid.NewString())
		meta := map[string]string{"filename": filename, "scheme": string(scheme)}
		if err := im.objects.Put(ctx, path, bytes.NewReader(data), int64(len(data)), meta); err != nil {
			metrics.ImportTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("failed to retain uploaded file: %w", err)
		}
	}

	metrics.ImportTotal.WithLabelValues("success").Inc()
	return res, nil
}

// SniffScheme 通过根元素判断标准
func SniffScheme(data []byte) (export.Scheme, error) {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return "", pkgerrors.Wrap(pkgerrors.ErrInvalidArg, "file contains no XML root element")
		}
		if err != nil {
			return "", pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "malformed XML: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "resource":
			return export.SchemeDataCite, nil
		case "MD_Metadata":
			return export.SchemeISO, nil
		case "DIF":
			return export.SchemeDIF, nil
		default:
			return "", pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "unrecognized root element <%s>", start.Name.Local)
		}
	}
}

// dataciteTitleKinds DataCite titleType 回映射；无属性即 main
var dataciteTitleKinds = map[string]string{
	"":                 "main",
	"AlternativeTitle": "alternative",
	"TranslatedTitle":  "translated",
	"Subtitle":         "subtitle",
}

// ParseDataCite 把 DataCite XML 映射回领域记录
func ParseDataCite(data []byte) (*resource.Resource, error) {
	var doc export.DataCiteResource
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "failed to parse DataCite XML: %v", err)
	}

	res := &resource.Resource{
		DOI:          doc.Identifier.Value,
		Publisher:    doc.Publisher,
		Version:      doc.Version,
		Language:     doc.Language,
		ResourceType: doc.ResourceType.General,
	}
	if doc.PublicationYear != "" {
		year, err := strconv.Atoi(strings.TrimSpace(doc.PublicationYear))
		if err != nil {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrInvalidArg, "invalid publicationYear %q", doc.PublicationYear)
		}
		res.PublicationYear = year
	}

	for _, t := range doc.Titles.Titles {
		kind, ok := dataciteTitleKinds[t.Type]
		if !ok {
			kind = "alternative"
		}
		res.Titles = append(res.Titles, resource.Title{Text: strings.TrimSpace(t.Value), Type: kind})
	}
	for _, c := range doc.Creators.Creators {
		res.Authors = append(res.Authors, parseCreator(c))
	}
	if doc.Contributors != nil {
		res.Contributors = parseContributors(doc.Contributors.Contributors)
	}
	if doc.Subjects != nil {
		for _, s := range doc.Subjects.Subjects {
			res.Keywords = append(res.Keywords, parseSubject(s))
		}
	}
	if doc.Dates != nil {
		for _, d := range doc.Dates.Dates {
			switch d.Type {
			case "Created":
				res.DateCreated = strings.TrimSpace(d.Value)
			case "Available":
				res.DateEmbargo = strings.TrimSpace(d.Value)
			}
		}
	}
	if doc.RelatedIdentifiers != nil {
		for _, rel := range doc.RelatedIdentifiers.Identifiers {
			res.RelatedWorks = append(res.RelatedWorks, resource.RelatedWork{
				Identifier:     strings.TrimSpace(rel.Value),
				IdentifierType: rel.Type,
				RelationType:   rel.RelationType,
			})
		}
	}
	if doc.RightsList != nil {
		for _, r := range doc.RightsList.Rights {
			res.Licenses = append(res.Licenses, resource.License{
				Identifier: r.Identifier,
				Name:       strings.TrimSpace(r.Value),
				URI:        r.URI,
			})
		}
	}
	if doc.Descriptions != nil {
		for _, d := range doc.Descriptions.Descriptions {
			res.Descriptions = append(res.Descriptions, resource.Description{
				Type: d.Type,
				Text: strings.TrimSpace(d.Value),
			})
		}
	}
	if doc.GeoLocations != nil {
		for _, loc := range doc.GeoLocations.Locations {
			cov, ok := parseGeoLocation(loc)
			if ok {
				res.Coverages = append(res.Coverages, cov)
			}
		}
	}
	if doc.FundingReferences != nil {
		for _, f := range doc.FundingReferences.References {
			ref := resource.FundingReference{
				Funder:      strings.TrimSpace(f.FunderName),
				AwardNumber: f.AwardNumber,
				AwardTitle:  f.AwardTitle,
			}
			if f.FunderIdentifier != nil {
				ref.FunderID = strings.TrimSpace(f.FunderIdentifier.Value)
				ref.FunderIDType = f.FunderIdentifier.Type
			}
			res.FundingReferences = append(res.FundingReferences, ref)
		}
	}

	return res, nil
}

func parseCreator(c export.DCCreator) resource.Author {
	a := resource.Author{
		FamilyName: strings.TrimSpace(c.FamilyName),
		GivenName:  strings.TrimSpace(c.GivenName),
	}
	if a.FamilyName == "" {
		a.FamilyName, a.GivenName = splitName(c.Name.Value)
	}
	if c.NameIdentifier != nil && c.NameIdentifier.Scheme == "ORCID" {
		a.ORCID = strings.TrimSpace(c.NameIdentifier.Value)
	}
	for _, aff := range c.Affiliations {
		a.Affiliations = append(a.Affiliations, parseAffiliation(aff))
	}
	return a
}

func parseAffiliation(aff export.DCAffiliation) resource.Affiliation {
	out := resource.Affiliation{Name: strings.TrimSpace(aff.Value)}
	if aff.IdentifierScheme == "ROR" {
		out.RORID = strings.TrimPrefix(strings.TrimSpace(aff.Identifier), "https://ror.org/")
	}
	return out
}

// parseContributors 合并同名条目：导出时每个角色一条记录，导入时折叠回多角色
func parseContributors(contributors []export.DCContributor) []resource.Contributor {
	var out []resource.Contributor
	index := make(map[string]int)
	for _, c := range contributors {
		key := c.Name.NameType + "|" + c.Name.Value
		if i, seen := index[key]; seen {
			out[i].Roles = append(out[i].Roles, c.Type)
			continue
		}

		contributor := resource.Contributor{Roles: []string{c.Type}}
		if c.Name.NameType == "Organizational" {
			contributor.Kind = resource.ContributorInstitution
			contributor.InstitutionName = strings.TrimSpace(c.Name.Value)
		} else {
			contributor.Kind = resource.ContributorPerson
			contributor.FamilyName = strings.TrimSpace(c.FamilyName)
			contributor.GivenName = strings.TrimSpace(c.GivenName)
			if contributor.FamilyName == "" {
				contributor.FamilyName, contributor.GivenName = splitName(c.Name.Value)
			}
			if c.NameIdentifier != nil && c.NameIdentifier.Scheme == "ORCID" {
				contributor.ORCID = strings.TrimSpace(c.NameIdentifier.Value)
			}
		}
		for _, aff := range c.Affiliations {
			contributor.Affiliations = append(contributor.Affiliations, parseAffiliation(aff))
		}
		index[key] = len(out)
		out = append(out, contributor)
	}
	return out
}

func parseSubject(s export.DCSubject) resource.Keyword {
	if s.Scheme != "" {
		return resource.Keyword{
			Kind:      resource.KeywordGCMD,
			Path:      strings.TrimSpace(s.Value),
			Scheme:    s.Scheme,
			SchemeURI: s.SchemeURI,
			ValueURI:  s.ValueURI,
		}
	}
	return resource.Keyword{Kind: resource.KeywordFree, Text: strings.TrimSpace(s.Value)}
}

func parseGeoLocation(loc export.DCGeoLocation) (resource.Coverage, bool) {
	cov := resource.Coverage{Description: strings.TrimSpace(loc.Place)}
	switch {
	case loc.Box != nil:
		latMin, ok1 := parseCoord(loc.Box.SouthLatitude)
		latMax, ok2 := parseCoord(loc.Box.NorthLatitude)
		lonMin, ok3 := parseCoord(loc.Box.WestLongitude)
		lonMax, ok4 := parseCoord(loc.Box.EastLongitude)
		if ok1 && ok2 && ok3 && ok4 {
			cov.LatMin, cov.LatMax = &latMin, &latMax
			cov.LonMin, cov.LonMax = &lonMin, &lonMax
		}
	case loc.Point != nil:
		lat, ok1 := parseCoord(loc.Point.Latitude)
		lon, ok2 := parseCoord(loc.Point.Longitude)
		if ok1 && ok2 {
			cov.LatMin, cov.LonMin = &lat, &lon
		}
	}
	if cov.Description == "" && cov.LatMin == nil {
		return cov, false
	}
	return cov, true
}

func parseCoord(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return v, err == nil
}

// splitName 按 "Family, Given" 拆分姓名
func splitName(full string) (family, given string) {
	parts := strings.SplitN(full, ",", 2)
	family = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		given = strings.TrimSpace(parts[1])
	}
	return family, given
}
