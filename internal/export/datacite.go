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

package export

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"metadata-platform/internal/storage/resource"
	"metadata-platform/internal/validate"
	pkgerrors "metadata-platform/pkg/errors"
)

// DataCite kernel-4 命名空间与 schemaLocation
const (
	dataciteNamespace = "http://datacite.org/schema/kernel-4"
	dataciteSchemaLoc = "http://datacite.org/schema/kernel-4 http://schema.datacite.org/meta/kernel-4.5/metadata.xsd"
	xsiNamespace      = "http://www.w3.org/2001/XMLSchema-instance"

	gcmdScheme    = "NASA/GCMD Earth Science Keywords"
	gcmdSchemeURI = "https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords"
)

// DataCiteResource DataCite 4.5 根元素，同一套结构也用于导入时反序列化
type DataCiteResource struct {
	XMLName   xml.Name `xml:"resource"`
	Xmlns     string   `xml:"xmlns,attr,omitempty"`
	XmlnsXSI  string   `xml:"xmlns:xsi,attr,omitempty"`
	SchemaLoc string   `xml:"xsi:schemaLocation,attr,omitempty"`

	Identifier         DCIdentifier          `xml:"identifier"`
	Creators           DCCreators            `xml:"creators"`
	Titles             DCTitles              `xml:"titles"`
	Publisher          string                `xml:"publisher"`
	PublicationYear    string                `xml:"publicationYear"`
	ResourceType       DCResourceType        `xml:"resourceType"`
	Subjects           *DCSubjects           `xml:"subjects,omitempty"`
	Contributors       *DCContributors       `xml:"contributors,omitempty"`
	Dates              *DCDates              `xml:"dates,omitempty"`
	Language           string                `xml:"language,omitempty"`
	RelatedIdentifiers *DCRelatedIdentifiers `xml:"relatedIdentifiers,omitempty"`
	Version            string                `xml:"version,omitempty"`
	RightsList         *DCRightsList         `xml:"rightsList,omitempty"`
	Descriptions       *DCDescriptions       `xml:"descriptions,omitempty"`
	GeoLocations       *DCGeoLocations       `xml:"geoLocations,omitempty"`
	FundingReferences  *DCFundingReferences  `xml:"fundingReferences,omitempty"`
}

type DCIdentifier struct {
	Type  string `xml:"identifierType,attr"`
	Value string `xml:",chardata"`
}

type DCCreators struct {
	Creators []DCCreator `xml:"creator"`
}

type DCCreator struct {
	Name           DCName          `xml:"creatorName"`
	GivenName      string          `xml:"givenName,omitempty"`
	FamilyName     string          `xml:"familyName,omitempty"`
	NameIdentifier *DCNameID       `xml:"nameIdentifier,omitempty"`
	Affiliations   []DCAffiliation `xml:"affiliation,omitempty"`
}

type DCName struct {
	NameType string `xml:"nameType,attr,omitempty"` // Personal | Organizational
	Value    string `xml:",chardata"`
}

type DCNameID struct {
	Scheme    string `xml:"nameIdentifierScheme,attr"`
	SchemeURI string `xml:"schemeURI,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type DCAffiliation struct {
	Identifier       string `xml:"affiliationIdentifier,attr,omitempty"`
	IdentifierScheme string `xml:"affiliationIdentifierScheme,attr,omitempty"`
	Value            string `xml:",chardata"`
}

type DCTitles struct {
	Titles []DCTitle `xml:"title"`
}

type DCTitle struct {
	Type  string `xml:"titleType,attr,omitempty"`
	Value string `xml:",chardata"`
}

type DCResourceType struct {
	General string `xml:"resourceTypeGeneral,attr"`
	Value   string `xml:",chardata"`
}

type DCSubjects struct {
	Subjects []DCSubject `xml:"subject"`
}

type DCSubject struct {
	Scheme    string `xml:"subjectScheme,attr,omitempty"`
	SchemeURI string `xml:"schemeURI,attr,omitempty"`
	ValueURI  string `xml:"valueURI,attr,omitempty"`
	Value     string `xml:",chardata"`
}

type DCContributors struct {
	Contributors []DCContributor `xml:"contributor"`
}

type DCContributor struct {
	Type           string          `xml:"contributorType,attr"`
	Name           DCName          `xml:"contributorName"`
	GivenName      string          `xml:"givenName,omitempty"`
	FamilyName     string          `xml:"familyName,omitempty"`
	NameIdentifier *DCNameID       `xml:"nameIdentifier,omitempty"`
	Affiliations   []DCAffiliation `xml:"affiliation,omitempty"`
}

type DCDates struct {
	Dates []DCDate `xml:"date"`
}

type DCDate struct {
	Type  string `xml:"dateType,attr"`
	Value string `xml:",chardata"`
}

type DCRelatedIdentifiers struct {
	Identifiers []DCRelatedIdentifier `xml:"relatedIdentifier"`
}

type DCRelatedIdentifier struct {
	Type         string `xml:"relatedIdentifierType,attr"`
	RelationType string `xml:"relationType,attr"`
	Value        string `xml:",chardata"`
}

type DCRightsList struct {
	Rights []DCRights `xml:"rights"`
}

type DCRights struct {
	URI              string `xml:"rightsURI,attr,omitempty"`
	Identifier       string `xml:"rightsIdentifier,attr,omitempty"`
	IdentifierScheme string `xml:"rightsIdentifierScheme,attr,omitempty"`
	Value            string `xml:",chardata"`
}

type DCDescriptions struct {
	Descriptions []DCDescription `xml:"description"`
}

type DCDescription struct {
	Type  string `xml:"descriptionType,attr"`
	Value string `xml:",chardata"`
}

type DCGeoLocations struct {
	Locations []DCGeoLocation `xml:"geoLocation"`
}

type DCGeoLocation struct {
	Place string      `xml:"geoLocationPlace,omitempty"`
	Point *DCGeoPoint `xml:"geoLocationPoint,omitempty"`
	Box   *DCGeoBox   `xml:"geoLocationBox,omitempty"`
}

type DCGeoPoint struct {
	Latitude  string `xml:"pointLatitude"`
	Longitude string `xml:"pointLongitude"`
}

type DCGeoBox struct {
	WestLongitude string `xml:"westBoundLongitude"`
	EastLongitude string `xml:"eastBoundLongitude"`
	SouthLatitude string `xml:"southBoundLatitude"`
	NorthLatitude string `xml:"northBoundLatitude"`
}

type DCFundingReferences struct {
	References []DCFundingReference `xml:"fundingReference"`
}

type DCFundingReference struct {
	FunderName       string              `xml:"funderName"`
	FunderIdentifier *DCFunderIdentifier `xml:"funderIdentifier,omitempty"`
	AwardNumber      string              `xml:"awardNumber,omitempty"`
	AwardTitle       string              `xml:"awardTitle,omitempty"`
}

type DCFunderIdentifier struct {
	Type  string `xml:"funderIdentifierType,attr"`
	Value string `xml:",chardata"`
}

// dataciteTitleTypes 内部标题类型到 DataCite titleType 的映射；main 不带属性
var dataciteTitleTypes = map[string]string{
	"alternative": "AlternativeTitle",
	"translated":  "TranslatedTitle",
	"subtitle":    "Subtitle",
}

// BuildDataCite 把领域记录映射为 DataCite 4.5 结构树
func BuildDataCite(r *resource.Resource) (*DataCiteResource, error) {
	if r.MainTitle() == "" {
		return nil, pkgerrors.Invalid("titles", "a main title is required for DataCite export")
	}
	if len(r.Authors) == 0 {
		return nil, pkgerrors.Invalid("authors", "at least one creator is required for DataCite export")
	}

	doc := &DataCiteResource{
		Xmlns:     dataciteNamespace,
		XmlnsXSI:  xsiNamespace,
		SchemaLoc: dataciteSchemaLoc,
		Identifier: DCIdentifier{
			Type:  "DOI",
			Value: validate.NormalizeDOI(r.DOI),
		},
		Publisher:       r.Publisher,
		PublicationYear: strconv.Itoa(r.PublicationYear),
		ResourceType: DCResourceType{
			General: r.ResourceType,
			Value:   r.ResourceType,
		},
		Language: r.Language,
		Version:  r.Version,
	}

	for _, a := range r.Authors {
		doc.Creators.Creators = append(doc.Creators.Creators, buildCreator(a))
	}
	for _, t := range r.Titles {
		doc.Titles.Titles = append(doc.Titles.Titles, DCTitle{
			Type:  dataciteTitleTypes[t.Type],
			Value: t.Text,
		})
	}

	if subjects := buildSubjects(r.Keywords); len(subjects) > 0 {
		doc.Subjects = &DCSubjects{Subjects: subjects}
	}
	contributors := buildContributors(r.Contributors)
	contributors = append(contributors, buildLaboratoryContributors(r.Laboratories)...)
	if len(contributors) > 0 {
		doc.Contributors = &DCContributors{Contributors: contributors}
	}
	if dates := buildDates(r); len(dates) > 0 {
		doc.Dates = &DCDates{Dates: dates}
	}
	if related := buildRelatedIdentifiers(r.RelatedWorks); len(related) > 0 {
		doc.RelatedIdentifiers = &DCRelatedIdentifiers{Identifiers: related}
	}
	if rights := buildRights(r.Licenses); len(rights) > 0 {
		doc.RightsList = &DCRightsList{Rights: rights}
	}
	if descs := buildDescriptions(r.Descriptions); len(descs) > 0 {
		doc.Descriptions = &DCDescriptions{Descriptions: descs}
	}
	if locs := buildGeoLocations(r.Coverages); len(locs) > 0 {
		doc.GeoLocations = &DCGeoLocations{Locations: locs}
	}
	if refs := buildFundingReferences(r.FundingReferences); len(refs) > 0 {
		doc.FundingReferences = &DCFundingReferences{References: refs}
	}

	return doc, nil
}

func buildCreator(a resource.Author) DCCreator {
	c := DCCreator{
		Name: DCName{
			NameType: "Personal",
			Value:    personName(a.FamilyName, a.GivenName),
		},
		GivenName:  a.GivenName,
		FamilyName: a.FamilyName,
	}
	if a.ORCID != "" {
		c.NameIdentifier = &DCNameID{
			Scheme:    "ORCID",
			SchemeURI: "https://orcid.org",
			Value:     validate.NormalizeORCID(a.ORCID),
		}
	}
	for _, aff := range a.Affiliations {
		c.Affiliations = append(c.Affiliations, buildAffiliation(aff))
	}
	return c
}

func buildAffiliation(aff resource.Affiliation) DCAffiliation {
	out := DCAffiliation{Value: aff.Name}
	if aff.RORID != "" {
		out.Identifier = "https://ror.org/" + validate.NormalizeROR(aff.RORID)
		out.IdentifierScheme = "ROR"
	}
	return out
}

func buildSubjects(keywords []resource.Keyword) []DCSubject {
	var subjects []DCSubject
	for _, k := range keywords {
		switch k.Kind {
		case resource.KeywordFree:
			subjects = append(subjects, DCSubject{Value: k.Text})
		case resource.KeywordGCMD:
			scheme := k.Scheme
			if scheme == "" {
				scheme = gcmdScheme
			}
			schemeURI := k.SchemeURI
			if schemeURI == "" {
				schemeURI = gcmdSchemeURI
			}
			subjects = append(subjects, DCSubject{
				Scheme:    scheme,
				SchemeURI: schemeURI,
				ValueURI:  k.ValueURI,
				Value:     k.Path,
			})
		}
	}
	return subjects
}

func buildContributors(contributors []resource.Contributor) []DCContributor {
	var out []DCContributor
	for _, c := range contributors {
		// 每个角色生成一条 contributor 记录，DataCite 的 contributorType 是单值属性
		for _, role := range c.Roles {
			dc := DCContributor{Type: role}
			if c.Kind == resource.ContributorInstitution {
				dc.Name = DCName{NameType: "Organizational", Value: c.InstitutionName}
			} else {
				dc.Name = DCName{NameType: "Personal", Value: personName(c.FamilyName, c.GivenName)}
				dc.GivenName = c.GivenName
				dc.FamilyName = c.FamilyName
				if c.ORCID != "" {
					dc.NameIdentifier = &DCNameID{
						Scheme:    "ORCID",
						SchemeURI: "https://orcid.org",
						Value:     validate.NormalizeORCID(c.ORCID),
					}
				}
			}
			for _, aff := range c.Affiliations {
				dc.Affiliations = append(dc.Affiliations, buildAffiliation(aff))
			}
			out = append(out, dc)
		}
	}
	return out
}

// buildLaboratoryContributors 产出实验室导出为 HostingInstitution 贡献者
func buildLaboratoryContributors(labs []resource.Laboratory) []DCContributor {
	var out []DCContributor
	for _, lab := range labs {
		dc := DCContributor{
			Type: "HostingInstitution",
			Name: DCName{NameType: "Organizational", Value: lab.Name},
		}
		if lab.LabID != "" {
			dc.NameIdentifier = &DCNameID{
				Scheme: "labid",
				Value:  lab.LabID,
			}
		}
		if lab.Affiliation != "" {
			dc.Affiliations = append(dc.Affiliations, DCAffiliation{Value: lab.Affiliation})
		}
		out = append(out, dc)
	}
	return out
}

func buildDates(r *resource.Resource) []DCDate {
	var dates []DCDate
	if r.DateCreated != "" {
		dates = append(dates, DCDate{Type: "Created", Value: r.DateCreated})
	}
	if r.DateEmbargo != "" {
		dates = append(dates, DCDate{Type: "Available", Value: r.DateEmbargo})
	}
	return dates
}

func buildRelatedIdentifiers(works []resource.RelatedWork) []DCRelatedIdentifier {
	var out []DCRelatedIdentifier
	for _, w := range works {
		out = append(out, DCRelatedIdentifier{
			Type:         w.IdentifierType,
			RelationType: w.RelationType,
			Value:        w.Identifier,
		})
	}
	return out
}

func buildRights(licenses []resource.License) []DCRights {
	var out []DCRights
	for _, l := range licenses {
		r := DCRights{URI: l.URI, Value: l.Name}
		if l.Identifier != "" {
			r.Identifier = l.Identifier
			r.IdentifierScheme = "SPDX"
		}
		out = append(out, r)
	}
	return out
}

func buildDescriptions(descriptions []resource.Description) []DCDescription {
	var out []DCDescription
	for _, d := range descriptions {
		out = append(out, DCDescription{Type: d.Type, Value: d.Text})
	}
	return out
}

func buildGeoLocations(coverages []resource.Coverage) []DCGeoLocation {
	var out []DCGeoLocation
	for _, c := range coverages {
		loc := DCGeoLocation{Place: c.Description}
		switch {
		case c.IsBox():
			loc.Box = &DCGeoBox{
				WestLongitude: formatCoord(c.LonMin),
				EastLongitude: formatCoord(c.LonMax),
				SouthLatitude: formatCoord(c.LatMin),
				NorthLatitude: formatCoord(c.LatMax),
			}
		case c.IsPoint():
			loc.Point = &DCGeoPoint{
				Latitude:  formatCoord(c.LatMin),
				Longitude: formatCoord(c.LonMin),
			}
		}
		if loc.Place == "" && loc.Point == nil && loc.Box == nil {
			continue
		}
		out = append(out, loc)
	}
	return out
}

func buildFundingReferences(refs []resource.FundingReference) []DCFundingReference {
	var out []DCFundingReference
	for _, f := range refs {
		ref := DCFundingReference{
			FunderName:  f.Funder,
			AwardNumber: f.AwardNumber,
			AwardTitle:  f.AwardTitle,
		}
		if f.FunderID != "" {
			idType := f.FunderIDType
			if idType == "" {
				idType = "Other"
			}
			ref.FunderIdentifier = &DCFunderIdentifier{Type: idType, Value: f.FunderID}
		}
		out = append(out, ref)
	}
	return out
}

func personName(family, given string) string {
	if given == "" {
		return family
	}
	return fmt.Sprintf("%s, %s", family, given)
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
