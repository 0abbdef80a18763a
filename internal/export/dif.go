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
	"strconv"
	"strings"

	"metadata-platform/internal/storage/resource"
	"metadata-platform/internal/validate"
	pkgerrors "metadata-platform/pkg/errors"
)

// DIF 10.2 命名空间与 schemaLocation
const (
	difNamespace = "https://gcmd.earthdata.nasa.gov/Aboutus/xml/dif/"
	difSchemaLoc = "https://gcmd.earthdata.nasa.gov/Aboutus/xml/dif/ https://gcmd.earthdata.nasa.gov/Aboutus/xml/dif/dif_v10.2.xsd"
)

// DIFRecord DIF 10.2 根元素
type DIFRecord struct {
	XMLName   xml.Name `xml:"DIF"`
	Xmlns     string   `xml:"xmlns,attr"`
	XmlnsXSI  string   `xml:"xmlns:xsi,attr"`
	SchemaLoc string   `xml:"xsi:schemaLocation,attr"`

	EntryID           difEntryID            `xml:"Entry_ID"`
	EntryTitle        string                `xml:"Entry_Title"`
	DatasetCitation   difDatasetCitation    `xml:"Dataset_Citation"`
	Personnel         []difPersonnel        `xml:"Personnel,omitempty"`
	ScienceKeywords   []difScienceKeywords  `xml:"Science_Keywords,omitempty"`
	AncillaryKeyword  []string              `xml:"Ancillary_Keyword,omitempty"`
	TemporalCoverage  []difTemporalCoverage `xml:"Temporal_Coverage,omitempty"`
	SpatialCoverage   []difSpatialCoverage  `xml:"Spatial_Coverage,omitempty"`
	OriginatingCenter string                `xml:"Originating_Center,omitempty"`
	Organization      *difOrganization      `xml:"Organization,omitempty"`
	Summary           *difSummary           `xml:"Summary,omitempty"`
	RelatedURLs       []difRelatedURL       `xml:"Related_URL,omitempty"`
	MetadataName      string                `xml:"Metadata_Name"`
	MetadataVersion   string                `xml:"Metadata_Version"`
	MetadataDates     *difMetadataDates     `xml:"Metadata_Dates,omitempty"`
}

type difEntryID struct {
	ShortName string `xml:"Short_Name"`
	Version   string `xml:"Version"`
}

type difDatasetCitation struct {
	Creator              string                   `xml:"Dataset_Creator,omitempty"`
	Title                string                   `xml:"Dataset_Title"`
	ReleaseDate          string                   `xml:"Dataset_Release_Date,omitempty"`
	Publisher            string                   `xml:"Dataset_Publisher,omitempty"`
	Version              string                   `xml:"Version,omitempty"`
	PersistentIdentifier *difPersistentIdentifier `xml:"Persistent_Identifier,omitempty"`
}

type difPersistentIdentifier struct {
	Type       string `xml:"Type"`
	Identifier string `xml:"Identifier"`
}

type difPersonnel struct {
	Role          string            `xml:"Role"`
	ContactPerson *difContactPerson `xml:"Contact_Person,omitempty"`
	ContactGroup  *difContactGroup  `xml:"Contact_Group,omitempty"`
}

type difContactPerson struct {
	FirstName string   `xml:"First_Name,omitempty"`
	LastName  string   `xml:"Last_Name"`
	Email     []string `xml:"Email,omitempty"`
}

type difContactGroup struct {
	Name string `xml:"Name"`
}

// difScienceKeywords GCMD 层级路径按 " > " 拆分后的固定槽位
type difScienceKeywords struct {
	Category         string `xml:"Category"`
	Topic            string `xml:"Topic,omitempty"`
	Term             string `xml:"Term,omitempty"`
	VariableLevel1   string `xml:"Variable_Level_1,omitempty"`
	VariableLevel2   string `xml:"Variable_Level_2,omitempty"`
	VariableLevel3   string `xml:"Variable_Level_3,omitempty"`
	DetailedVariable string `xml:"Detailed_Variable,omitempty"`
}

type difTemporalCoverage struct {
	RangeDateTime difRangeDateTime `xml:"Range_DateTime"`
}

type difRangeDateTime struct {
	BeginningDateTime string `xml:"Beginning_Date_Time"`
	EndingDateTime    string `xml:"Ending_Date_Time,omitempty"`
}

type difSpatialCoverage struct {
	Geometry difGeometry `xml:"Geometry"`
}

type difGeometry struct {
	CoordinateSystem  string               `xml:"Coordinate_System"`
	BoundingRectangle difBoundingRectangle `xml:"Bounding_Rectangle"`
}

type difBoundingRectangle struct {
	SouthernmostLatitude string `xml:"Southernmost_Latitude"`
	NorthernmostLatitude string `xml:"Northernmost_Latitude"`
	WesternmostLongitude string `xml:"Westernmost_Longitude"`
	EasternmostLongitude string `xml:"Easternmost_Longitude"`
}

type difOrganization struct {
	Type      string         `xml:"Organization_Type"`
	Name      difShortName   `xml:"Organization_Name"`
	Personnel []difPersonnel `xml:"Personnel,omitempty"`
}

type difShortName struct {
	ShortName string `xml:"Short_Name"`
}

type difSummary struct {
	Abstract string `xml:"Abstract"`
}

type difRelatedURL struct {
	ContentType difURLContentType `xml:"URL_Content_Type"`
	URL         string            `xml:"URL"`
}

type difURLContentType struct {
	Type string `xml:"Type"`
}

type difMetadataDates struct {
	MetadataCreation string `xml:"Metadata_Creation,omitempty"`
	DataCreation     string `xml:"Data_Creation,omitempty"`
}

// BuildDIF 把领域记录映射为 DIF 10.2 结构树
func BuildDIF(r *resource.Resource) (*DIFRecord, error) {
	if r.MainTitle() == "" {
		return nil, pkgerrors.Invalid("titles", "a main title is required for DIF export")
	}

	doc := &DIFRecord{
		Xmlns:     difNamespace,
		XmlnsXSI:  xsiNamespace,
		SchemaLoc: difSchemaLoc,
		EntryID: difEntryID{
			ShortName: entryShortName(r),
			Version:   difVersion(r),
		},
		EntryTitle:      r.MainTitle(),
		MetadataName:    "CEOS IDN DIF",
		MetadataVersion: "VERSION 10.2",
	}

	doc.DatasetCitation = difDatasetCitation{
		Creator:     joinCreators(r.Authors),
		Title:       r.MainTitle(),
		ReleaseDate: strconv.Itoa(r.PublicationYear),
		Publisher:   r.Publisher,
		Version:     r.Version,
	}
	if r.DOI != "" {
		doc.DatasetCitation.PersistentIdentifier = &difPersistentIdentifier{
			Type:       "DOI",
			Identifier: validate.NormalizeDOI(r.DOI),
		}
	}

	doc.Personnel = buildDIFPersonnel(r)
	doc.ScienceKeywords, doc.AncillaryKeyword = buildDIFKeywords(r.Keywords)
	doc.TemporalCoverage, doc.SpatialCoverage = buildDIFCoverage(r.Coverages)

	if len(r.Laboratories) > 0 {
		names := make([]string, 0, len(r.Laboratories))
		for _, lab := range r.Laboratories {
			names = append(names, lab.Name)
		}
		doc.OriginatingCenter = strings.Join(names, ", ")
	}
	if r.Publisher != "" {
		doc.Organization = &difOrganization{
			Type: "DISTRIBUTOR",
			Name: difShortName{ShortName: r.Publisher},
		}
	}
	if abstract := r.Abstract(); abstract != "" {
		doc.Summary = &difSummary{Abstract: abstract}
	}
	doc.RelatedURLs = buildDIFRelatedURLs(r)
	if r.DateCreated != "" {
		doc.MetadataDates = &difMetadataDates{
			MetadataCreation: r.DateCreated,
			DataCreation:     r.DateCreated,
		}
	}

	return doc, nil
}

func entryShortName(r *resource.Resource) string {
	if r.DOI != "" {
		return validate.NormalizeDOI(r.DOI)
	}
	return r.ID
}

func difVersion(r *resource.Resource) string {
	if r.Version != "" {
		return r.Version
	}
	return "1"
}

// joinCreators 作者列表合并为引用串，姓在前
func joinCreators(authors []resource.Author) string {
	parts := make([]string, 0, len(authors))
	for _, a := range authors {
		parts = append(parts, personName(a.FamilyName, a.GivenName))
	}
	return strings.Join(parts, "; ")
}

// buildDIFPersonnel 第一作者为 Investigator，联系人为 Technical Contact
func buildDIFPersonnel(r *resource.Resource) []difPersonnel {
	var out []difPersonnel
	if len(r.Authors) > 0 {
		a := r.Authors[0]
		out = append(out, difPersonnel{
			Role: "Investigator",
			ContactPerson: &difContactPerson{
				FirstName: a.GivenName,
				LastName:  a.FamilyName,
			},
		})
	}
	for _, p := range r.ContactPersons {
		person := &difContactPerson{
			FirstName: p.GivenName,
			LastName:  p.FamilyName,
		}
		if p.Email != "" {
			person.Email = []string{p.Email}
		}
		out = append(out, difPersonnel{Role: "Technical Contact", ContactPerson: person})
	}
	return out
}

// buildDIFKeywords GCMD 路径拆入 Science_Keywords 槽位，自由词进 Ancillary_Keyword
func buildDIFKeywords(keywords []resource.Keyword) ([]difScienceKeywords, []string) {
	var science []difScienceKeywords
	var ancillary []string
	for _, k := range keywords {
		switch k.Kind {
		case resource.KeywordFree:
			ancillary = append(ancillary, k.Text)
		case resource.KeywordGCMD:
			science = append(science, splitScienceKeyword(k.Path))
		}
	}
	return science, ancillary
}

// splitScienceKeyword 按 " > " 拆分层级路径，最多七级，多余部分并入末级
func splitScienceKeyword(path string) difScienceKeywords {
	levels := strings.Split(path, " > ")
	for i := range levels {
		levels[i] = strings.TrimSpace(levels[i])
	}
	if len(levels) > 7 {
		levels[6] = strings.Join(levels[6:], " > ")
		levels = levels[:7]
	}
	var sk difScienceKeywords
	slots := []*string{
		&sk.Category, &sk.Topic, &sk.Term,
		&sk.VariableLevel1, &sk.VariableLevel2, &sk.VariableLevel3,
		&sk.DetailedVariable,
	}
	for i, level := range levels {
		*slots[i] = level
	}
	return sk
}

func buildDIFCoverage(coverages []resource.Coverage) ([]difTemporalCoverage, []difSpatialCoverage) {
	var temporal []difTemporalCoverage
	var spatial []difSpatialCoverage
	for _, c := range coverages {
		if c.StartDate != "" {
			temporal = append(temporal, difTemporalCoverage{
				RangeDateTime: difRangeDateTime{
					BeginningDateTime: temporalPosition(c.StartDate, c.StartTime),
					EndingDateTime:    temporalPosition(c.EndDate, c.EndTime),
				},
			})
		}
		if c.IsBox() || c.IsPoint() {
			south, north := formatCoord(c.LatMin), formatCoord(c.LatMin)
			west, east := formatCoord(c.LonMin), formatCoord(c.LonMin)
			if c.IsBox() {
				north = formatCoord(c.LatMax)
				east = formatCoord(c.LonMax)
			}
			spatial = append(spatial, difSpatialCoverage{
				Geometry: difGeometry{
					CoordinateSystem: "CARTESIAN",
					BoundingRectangle: difBoundingRectangle{
						SouthernmostLatitude: south,
						NorthernmostLatitude: north,
						WesternmostLongitude: west,
						EasternmostLongitude: east,
					},
				},
			})
		}
	}
	return temporal, spatial
}

func buildDIFRelatedURLs(r *resource.Resource) []difRelatedURL {
	var out []difRelatedURL
	if r.DOI != "" {
		out = append(out, difRelatedURL{
			ContentType: difURLContentType{Type: "DATA SET LANDING PAGE"},
			URL:         "https://doi.org/" + validate.NormalizeDOI(r.DOI),
		})
	}
	for _, w := range r.RelatedWorks {
		if w.IdentifierType != "URL" {
			continue
		}
		out = append(out, difRelatedURL{
			ContentType: difURLContentType{Type: "VIEW RELATED INFORMATION"},
			URL:         w.Identifier,
		})
	}
	return out
}
