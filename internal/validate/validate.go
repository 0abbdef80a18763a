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

// Package validate 提供保存与导出前的无状态字段校验。
// 整条记录的校验一次性返回全部违规字段，字段路径形如 authors[2].orcid。
package validate

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"

	"metadata-platform/internal/storage/resource"
	"metadata-platform/internal/vocab"
	pkgerrors "metadata-platform/pkg/errors"
)

var (
	orcidPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
	rorPattern   = regexp.MustCompile(`^0[a-z0-9]{6}[0-9]{2}$`)
	doiPattern   = regexp.MustCompile(`^10\.\d{4,9}/.+$`)
)

const dateLayout = "2006-01-02"

// NormalizeORCID 去掉 URL 前缀并统一大写校验位
func NormalizeORCID(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://orcid.org/")
	s = strings.TrimPrefix(s, "http://orcid.org/")
	return strings.ToUpper(s)
}

// ValidORCID 校验 ORCID 格式与 ISO 7064 11-2 校验位
func ValidORCID(s string) bool {
	s = NormalizeORCID(s)
	if !orcidPattern.MatchString(s) {
		return false
	}
	digits := strings.ReplaceAll(s, "-", "")
	total := 0
	for _, c := range digits[:15] {
		total = (total + int(c-'0')) * 2
	}
	remainder := total % 11
	result := (12 - remainder) % 11
	check := byte('0' + result)
	if result == 10 {
		check = 'X'
	}
	return digits[15] == check
}

// NormalizeROR 去掉 URL 前缀
func NormalizeROR(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://ror.org/")
	s = strings.TrimPrefix(s, "http://ror.org/")
	return s
}

// ValidROR 校验 ROR ID 格式
func ValidROR(s string) bool {
	return rorPattern.MatchString(NormalizeROR(s))
}

// NormalizeDOI 去掉解析器前缀
func NormalizeDOI(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "https://doi.org/")
	s = strings.TrimPrefix(s, "http://doi.org/")
	s = strings.TrimPrefix(s, "doi:")
	return s
}

// ValidDOI 校验 DOI 格式
func ValidDOI(s string) bool {
	return doiPattern.MatchString(NormalizeDOI(s))
}

// ValidEmail 语法校验
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

// ValidURL 要求绝对 http/https 地址
func ValidURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Resource 校验整条记录，返回 nil 或 pkg/errors.ValidationErrors
func Resource(r *resource.Resource) error {
	var errs pkgerrors.ValidationErrors

	add := func(field, format string, args ...interface{}) {
		errs = append(errs, pkgerrors.Invalid(field, format, args...))
	}

	if r.PublicationYear < 1000 || r.PublicationYear > 9999 {
		add("publication_year", "must be a four digit year, got %d", r.PublicationYear)
	}
	if r.DOI != "" && !ValidDOI(r.DOI) {
		add("doi", "invalid DOI %q", r.DOI)
	}
	if r.ResourceType == "" {
		add("resource_type", "is required")
	} else if !vocab.Contains(vocab.ListResourceTypes, r.ResourceType) {
		add("resource_type", "unknown resource type %q", r.ResourceType)
	}

	validateTitles(r.Titles, add)
	validateAuthors(r.Authors, add)
	validateContributors(r.Contributors, add)
	validateContactPersons(r.ContactPersons, add)
	validateLaboratories(r.Laboratories, add)
	validateDescriptions(r.Descriptions, add)
	validateKeywords(r.Keywords, add)
	validateCoverages(r.Coverages, add)
	validateRelatedWorks(r.RelatedWorks, add)
	validateFundingReferences(r.FundingReferences, add)
	validateDates(r.DateCreated, r.DateEmbargo, add)

	return errs.OrNil()
}

type addFunc func(field, format string, args ...interface{})

func validateTitles(titles []resource.Title, add addFunc) {
	if len(titles) == 0 {
		add("titles", "at least one title is required")
		return
	}
	mains := 0
	for i, t := range titles {
		field := fmt.Sprintf("titles[%d]", i)
		if strings.TrimSpace(t.Text) == "" {
			add(field+".text", "must not be empty")
		}
		if !vocab.Contains(vocab.ListTitleTypes, t.Type) {
			add(field+".type", "unknown title type %q", t.Type)
		}
		if t.Type == "main" {
			mains++
		}
	}
	if mains != 1 {
		add("titles", "exactly one main title is required, got %d", mains)
	}
}

func validateAuthors(authors []resource.Author, add addFunc) {
	if len(authors) == 0 {
		add("authors", "at least one author is required")
		return
	}
	for i, a := range authors {
		field := fmt.Sprintf("authors[%d]", i)
		if strings.TrimSpace(a.FamilyName) == "" {
			add(field+".family_name", "must not be empty")
		}
		if a.ORCID != "" && !ValidORCID(a.ORCID) {
			add(field+".orcid", "invalid ORCID %q", a.ORCID)
		}
		validateAffiliations(field, a.Affiliations, add)
	}
}

func validateAffiliations(parent string, affs []resource.Affiliation, add addFunc) {
	for i, aff := range affs {
		field := fmt.Sprintf("%s.affiliations[%d]", parent, i)
		if strings.TrimSpace(aff.Name) == "" {
			add(field+".name", "must not be empty")
		}
		if aff.RORID != "" && !ValidROR(aff.RORID) {
			add(field+".ror_id", "invalid ROR ID %q", aff.RORID)
		}
	}
}

func validateContributors(contributors []resource.Contributor, add addFunc) {
	for i, c := range contributors {
		field := fmt.Sprintf("contributors[%d]", i)
		switch c.Kind {
		case resource.ContributorPerson:
			if strings.TrimSpace(c.FamilyName) == "" {
				add(field+".family_name", "must not be empty")
			}
			if c.ORCID != "" && !ValidORCID(c.ORCID) {
				add(field+".orcid", "invalid ORCID %q", c.ORCID)
			}
			checkRoles(field, c.Roles, vocab.ListPersonRoles, add)
		case resource.ContributorInstitution:
			if strings.TrimSpace(c.InstitutionName) == "" {
				add(field+".institution_name", "must not be empty")
			}
			checkRoles(field, c.Roles, vocab.ListInstitutionRoles, add)
		default:
			add(field+".kind", "must be person or institution, got %q", c.Kind)
		}
		validateAffiliations(field, c.Affiliations, add)
	}
}

func checkRoles(parent string, roles []string, list string, add addFunc) {
	if len(roles) == 0 {
		add(parent+".roles", "at least one role is required")
		return
	}
	for i, role := range roles {
		if !vocab.Contains(list, role) {
			add(fmt.Sprintf("%s.roles[%d]", parent, i), "unknown role %q", role)
		}
	}
}

func validateContactPersons(persons []resource.ContactPerson, add addFunc) {
	for i, p := range persons {
		field := fmt.Sprintf("contact_persons[%d]", i)
		if strings.TrimSpace(p.FamilyName) == "" {
			add(field+".family_name", "must not be empty")
		}
		if p.Email == "" {
			add(field+".email", "is required")
		} else if !ValidEmail(p.Email) {
			add(field+".email", "invalid email %q", p.Email)
		}
		if p.Website != "" && !ValidURL(p.Website) {
			add(field+".website", "invalid URL %q", p.Website)
		}
	}
}

func validateLaboratories(labs []resource.Laboratory, add addFunc) {
	for i, l := range labs {
		if strings.TrimSpace(l.Name) == "" {
			add(fmt.Sprintf("laboratories[%d].name", i), "must not be empty")
		}
	}
}

func validateDescriptions(descriptions []resource.Description, add addFunc) {
	for i, d := range descriptions {
		field := fmt.Sprintf("descriptions[%d]", i)
		if strings.TrimSpace(d.Text) == "" {
			add(field+".text", "must not be empty")
		}
		if !vocab.Contains(vocab.ListDescriptionTypes, d.Type) {
			add(field+".type", "unknown description type %q", d.Type)
		}
	}
}

func validateKeywords(keywords []resource.Keyword, add addFunc) {
	for i, k := range keywords {
		field := fmt.Sprintf("keywords[%d]", i)
		switch k.Kind {
		case resource.KeywordFree:
			if strings.TrimSpace(k.Text) == "" {
				add(field+".text", "must not be empty")
			}
		case resource.KeywordGCMD:
			if strings.TrimSpace(k.Path) == "" {
				add(field+".path", "must not be empty")
			}
		default:
			add(field+".kind", "must be free or gcmd, got %q", k.Kind)
		}
	}
}

func validateCoverages(coverages []resource.Coverage, add addFunc) {
	for i, c := range coverages {
		field := fmt.Sprintf("coverages[%d]", i)

		checkLat := func(name string, v *float64) {
			if v != nil && (*v < -90 || *v > 90) {
				add(field+"."+name, "latitude must be in [-90, 90], got %g", *v)
			}
		}
		checkLon := func(name string, v *float64) {
			if v != nil && (*v < -180 || *v > 180) {
				add(field+"."+name, "longitude must be in [-180, 180], got %g", *v)
			}
		}
		checkLat("lat_min", c.LatMin)
		checkLat("lat_max", c.LatMax)
		checkLon("lon_min", c.LonMin)
		checkLon("lon_max", c.LonMax)
		if c.LatMin != nil && c.LatMax != nil && *c.LatMin > *c.LatMax {
			add(field+".lat_min", "must not exceed lat_max")
		}
		if c.LonMin != nil && c.LonMax != nil && *c.LonMin > *c.LonMax {
			add(field+".lon_min", "must not exceed lon_max")
		}

		start := checkDate(field+".start_date", c.StartDate, add)
		end := checkDate(field+".end_date", c.EndDate, add)
		if start != nil && end != nil && end.Before(*start) {
			add(field+".end_date", "must not be before start_date")
		}
		if c.Timezone != "" {
			if _, err := time.LoadLocation(c.Timezone); err != nil {
				add(field+".timezone", "unknown timezone %q", c.Timezone)
			}
		}
	}
}

// checkDate 解析 YYYY-MM-DD，空值返回 nil 且不报错
func checkDate(field, value string, add addFunc) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		add(field, "must be YYYY-MM-DD, got %q", value)
		return nil
	}
	return &t
}

func validateRelatedWorks(works []resource.RelatedWork, add addFunc) {
	for i, w := range works {
		field := fmt.Sprintf("related_works[%d]", i)
		if strings.TrimSpace(w.Identifier) == "" {
			add(field+".identifier", "must not be empty")
		}
		if !vocab.Contains(vocab.ListIdentifierTypes, w.IdentifierType) {
			add(field+".identifier_type", "unknown identifier type %q", w.IdentifierType)
		}
		if !vocab.Contains(vocab.ListRelationTypes, w.RelationType) {
			add(field+".relation_type", "unknown relation type %q", w.RelationType)
		}
		if w.IdentifierType == "DOI" && !ValidDOI(w.Identifier) {
			add(field+".identifier", "invalid DOI %q", w.Identifier)
		}
		if w.IdentifierType == "URL" && !ValidURL(w.Identifier) {
			add(field+".identifier", "invalid URL %q", w.Identifier)
		}
	}
}

func validateFundingReferences(refs []resource.FundingReference, add addFunc) {
	for i, f := range refs {
		field := fmt.Sprintf("funding_references[%d]", i)
		if strings.TrimSpace(f.Funder) == "" {
			add(field+".funder", "must not be empty")
		}
		if f.FunderIDType == "ROR" && f.FunderID != "" && !ValidROR(f.FunderID) {
			add(field+".funder_id", "invalid ROR ID %q", f.FunderID)
		}
	}
}

func validateDates(created, embargo string, add addFunc) {
	c := checkDate("date_created", created, add)
	e := checkDate("date_embargo", embargo, add)
	if c != nil && e != nil && e.Before(*c) {
		add("date_embargo", "must not be before date_created")
	}
}
