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

	"metadata-platform/internal/storage/resource"
	"metadata-platform/internal/validate"
	pkgerrors "metadata-platform/pkg/errors"
)

// ISO 19139 命名空间与 schemaLocation
const (
	gmdNamespace    = "http://www.isotc211.org/2005/gmd"
	gcoNamespace    = "http://www.isotc211.org/2005/gco"
	gmlNamespace    = "http://www.opengis.net/gml/3.2"
	isoSchemaLoc    = "http://www.isotc211.org/2005/gmd http://schemas.opengis.net/iso/19139/20070417/gmd/gmd.xsd"
	scopeCodeList   = "http://standards.iso.org/iso/19139/resources/gmxCodelists.xml#MD_ScopeCode"
	roleCodeList    = "http://standards.iso.org/iso/19139/resources/gmxCodelists.xml#CI_RoleCode"
	dateTypeList    = "http://standards.iso.org/iso/19139/resources/gmxCodelists.xml#CI_DateTypeCode"
	assocTypeList   = "http://standards.iso.org/iso/19139/resources/gmxCodelists.xml#DS_AssociationTypeCode"
	restrictionList = "http://standards.iso.org/iso/19139/resources/gmxCodelists.xml#MD_RestrictionCode"
)

// ISOMetadata ISO 19139 gmd:MD_Metadata 根元素
type ISOMetadata struct {
	XMLName   xml.Name `xml:"gmd:MD_Metadata"`
	XmlnsGMD  string   `xml:"xmlns:gmd,attr"`
	XmlnsGCO  string   `xml:"xmlns:gco,attr"`
	XmlnsGML  string   `xml:"xmlns:gml,attr"`
	XmlnsXSI  string   `xml:"xmlns:xsi,attr"`
	SchemaLoc string   `xml:"xsi:schemaLocation,attr"`

	FileIdentifier     isoCharString     `xml:"gmd:fileIdentifier"`
	Language           *isoCharString    `xml:"gmd:language,omitempty"`
	HierarchyLevel     isoScopeCode      `xml:"gmd:hierarchyLevel"`
	Contacts           []isoResponsible  `xml:"gmd:contact"`
	DateStamp          isoDate           `xml:"gmd:dateStamp"`
	IdentificationInfo isoIdentification `xml:"gmd:identificationInfo"`
	DistributionInfo   *isoDistribution  `xml:"gmd:distributionInfo,omitempty"`
}

type isoCharString struct {
	Value string `xml:"gco:CharacterString"`
}

type isoDate struct {
	Value string `xml:"gco:Date"`
}

type isoDecimal struct {
	Value string `xml:"gco:Decimal"`
}

type isoScopeCode struct {
	Code isoCodeValue `xml:"gmd:MD_ScopeCode"`
}

type isoCodeValue struct {
	CodeList      string `xml:"codeList,attr"`
	CodeListValue string `xml:"codeListValue,attr"`
	Value         string `xml:",chardata"`
}

// isoResponsible gmd:CI_ResponsibleParty 的包装元素
type isoResponsible struct {
	Party isoResponsibleParty `xml:"gmd:CI_ResponsibleParty"`
}

type isoResponsibleParty struct {
	IndividualName   *isoCharString  `xml:"gmd:individualName,omitempty"`
	OrganisationName *isoCharString  `xml:"gmd:organisationName,omitempty"`
	ContactInfo      *isoContactInfo `xml:"gmd:contactInfo,omitempty"`
	Role             isoRoleCode     `xml:"gmd:role"`
}

type isoRoleCode struct {
	Code isoCodeValue `xml:"gmd:CI_RoleCode"`
}

type isoContactInfo struct {
	Contact isoCIContact `xml:"gmd:CI_Contact"`
}

type isoCIContact struct {
	Address        *isoAddress        `xml:"gmd:address,omitempty"`
	OnlineResource *isoOnlineResource `xml:"gmd:onlineResource,omitempty"`
}

type isoAddress struct {
	CIAddress isoCIAddress `xml:"gmd:CI_Address"`
}

type isoCIAddress struct {
	Email *isoCharString `xml:"gmd:electronicMailAddress,omitempty"`
}

type isoOnlineResource struct {
	Resource isoCIOnline `xml:"gmd:CI_OnlineResource"`
}

type isoCIOnline struct {
	Linkage isoLinkage `xml:"gmd:linkage"`
}

type isoLinkage struct {
	URL string `xml:"gmd:URL"`
}

type isoIdentification struct {
	DataIdentification isoDataIdentification `xml:"gmd:MD_DataIdentification"`
}

type isoDataIdentification struct {
	Citation            isoCitationWrap   `xml:"gmd:citation"`
	Abstract            isoCharString     `xml:"gmd:abstract"`
	PointOfContacts     []isoResponsible  `xml:"gmd:pointOfContact,omitempty"`
	DescriptiveKeywords []isoKeywordsWrap `xml:"gmd:descriptiveKeywords,omitempty"`
	ResourceConstraints []isoConstraints  `xml:"gmd:resourceConstraints,omitempty"`
	AggregationInfo     []isoAggregation  `xml:"gmd:aggregationInfo,omitempty"`
	Language            *isoCharString    `xml:"gmd:language,omitempty"`
	Extents             []isoExtentWrap   `xml:"gmd:extent,omitempty"`
}

type isoCitationWrap struct {
	Citation isoCitation `xml:"gmd:CI_Citation"`
}

type isoCitation struct {
	Title            isoCharString    `xml:"gmd:title"`
	Dates            []isoCIDateWrap  `xml:"gmd:date"`
	Identifiers      []isoIdentWrap   `xml:"gmd:identifier,omitempty"`
	CitedResponsible []isoResponsible `xml:"gmd:citedResponsibleParty,omitempty"`
}

type isoCIDateWrap struct {
	Date isoCIDate `xml:"gmd:CI_Date"`
}

type isoCIDate struct {
	Date isoDate     `xml:"gmd:date"`
	Type isoDateType `xml:"gmd:dateType"`
}

type isoDateType struct {
	Code isoCodeValue `xml:"gmd:CI_DateTypeCode"`
}

type isoIdentWrap struct {
	Identifier isoMDIdentifier `xml:"gmd:MD_Identifier"`
}

type isoMDIdentifier struct {
	Code isoCharString `xml:"gmd:code"`
}

type isoKeywordsWrap struct {
	Keywords isoMDKeywords `xml:"gmd:MD_Keywords"`
}

type isoMDKeywords struct {
	Keywords      []isoCharString  `xml:"gmd:keyword"`
	ThesaurusName *isoCitationWrap `xml:"gmd:thesaurusName,omitempty"`
}

type isoConstraints struct {
	Legal isoLegalConstraints `xml:"gmd:MD_LegalConstraints"`
}

type isoLegalConstraints struct {
	UseLimitations   []isoCharString  `xml:"gmd:useLimitation,omitempty"`
	UseConstraints   []isoRestriction `xml:"gmd:useConstraints,omitempty"`
	OtherConstraints []isoCharString  `xml:"gmd:otherConstraints,omitempty"`
}

type isoRestriction struct {
	Code isoCodeValue `xml:"gmd:MD_RestrictionCode"`
}

type isoAggregation struct {
	Aggregate isoAggregateInfo `xml:"gmd:MD_AggregateInformation"`
}

type isoAggregateInfo struct {
	AggregateDataSetIdentifier isoIdentWrap `xml:"gmd:aggregateDataSetIdentifier"`
	AssociationType            isoAssocType `xml:"gmd:associationType"`
}

type isoAssocType struct {
	Code isoCodeValue `xml:"gmd:DS_AssociationTypeCode"`
}

type isoExtentWrap struct {
	Extent isoEXExtent `xml:"gmd:EX_Extent"`
}

type isoEXExtent struct {
	Description        *isoCharString   `xml:"gmd:description,omitempty"`
	GeographicElements []isoGeoElement  `xml:"gmd:geographicElement,omitempty"`
	TemporalElements   []isoTempElement `xml:"gmd:temporalElement,omitempty"`
}

type isoGeoElement struct {
	BoundingBox isoBoundingBox `xml:"gmd:EX_GeographicBoundingBox"`
}

type isoBoundingBox struct {
	West  isoDecimal `xml:"gmd:westBoundLongitude"`
	East  isoDecimal `xml:"gmd:eastBoundLongitude"`
	South isoDecimal `xml:"gmd:southBoundLatitude"`
	North isoDecimal `xml:"gmd:northBoundLatitude"`
}

type isoTempElement struct {
	TemporalExtent isoTemporalExtent `xml:"gmd:EX_TemporalExtent"`
}

type isoTemporalExtent struct {
	Extent isoTimeExtent `xml:"gmd:extent"`
}

type isoTimeExtent struct {
	TimePeriod isoTimePeriod `xml:"gml:TimePeriod"`
}

type isoTimePeriod struct {
	ID            string `xml:"gml:id,attr"`
	BeginPosition string `xml:"gml:beginPosition"`
	EndPosition   string `xml:"gml:endPosition"`
}

type isoDistribution struct {
	Distribution isoMDDistribution `xml:"gmd:MD_Distribution"`
}

type isoMDDistribution struct {
	TransferOptions isoTransferOptions `xml:"gmd:transferOptions"`
}

type isoTransferOptions struct {
	Options isoDigitalTransfer `xml:"gmd:MD_DigitalTransferOptions"`
}

type isoDigitalTransfer struct {
	OnLine []isoOnlineResource `xml:"gmd:onLine"`
}

// BuildISO 把领域记录映射为 ISO 19139 结构树。
// 联系人进入 gmd:contact 与 pointOfContact；作者进入 citedResponsibleParty。
func BuildISO(r *resource.Resource) (*ISOMetadata, error) {
	if r.MainTitle() == "" {
		return nil, pkgerrors.Invalid("titles", "a main title is required for ISO export")
	}

	doc := &ISOMetadata{
		XmlnsGMD:       gmdNamespace,
		XmlnsGCO:       gcoNamespace,
		XmlnsGML:       gmlNamespace,
		XmlnsXSI:       xsiNamespace,
		SchemaLoc:      isoSchemaLoc,
		FileIdentifier: isoCharString{Value: r.ID},
		HierarchyLevel: isoScopeCode{
			Code: isoCodeValue{CodeList: scopeCodeList, CodeListValue: "dataset", Value: "dataset"},
		},
		DateStamp: isoDate{Value: dateStamp(r)},
	}
	if r.Language != "" {
		doc.Language = &isoCharString{Value: r.Language}
	}

	for _, p := range r.ContactPersons {
		doc.Contacts = append(doc.Contacts, buildPointOfContact(p))
	}
	if len(doc.Contacts) == 0 && r.Publisher != "" {
		// 没有联系人时退回出版机构，gmd:contact 是必填元素
		doc.Contacts = append(doc.Contacts, isoResponsible{
			Party: isoResponsibleParty{
				OrganisationName: &isoCharString{Value: r.Publisher},
				Role:             roleCode("pointOfContact"),
			},
		})
	}

	ident := isoDataIdentification{
		Citation: buildCitation(r),
		Abstract: isoCharString{Value: r.Abstract()},
	}
	if r.Language != "" {
		ident.Language = &isoCharString{Value: r.Language}
	}
	for _, p := range r.ContactPersons {
		ident.PointOfContacts = append(ident.PointOfContacts, buildPointOfContact(p))
	}
	ident.DescriptiveKeywords = buildISOKeywords(r.Keywords)
	ident.ResourceConstraints = buildISOConstraints(r.Licenses)
	ident.AggregationInfo = buildISOAggregations(r.RelatedWorks)
	ident.Extents = buildISOExtents(r.Coverages)

	doc.IdentificationInfo = isoIdentification{DataIdentification: ident}

	if r.DOI != "" {
		doc.DistributionInfo = &isoDistribution{
			Distribution: isoMDDistribution{
				TransferOptions: isoTransferOptions{
					Options: isoDigitalTransfer{
						OnLine: []isoOnlineResource{{
							Resource: isoCIOnline{
								Linkage: isoLinkage{URL: "https://doi.org/" + validate.NormalizeDOI(r.DOI)},
							},
						}},
					},
				},
			},
		}
	}

	return doc, nil
}

func dateStamp(r *resource.Resource) string {
	if r.DateCreated != "" {
		return r.DateCreated
	}
	return fmt.Sprintf("%d-01-01", r.PublicationYear)
}

func roleCode(value string) isoRoleCode {
	return isoRoleCode{Code: isoCodeValue{CodeList: roleCodeList, CodeListValue: value, Value: value}}
}

func buildPointOfContact(p resource.ContactPerson) isoResponsible {
	party := isoResponsibleParty{
		IndividualName: &isoCharString{Value: personName(p.FamilyName, p.GivenName)},
		Role:           roleCode("pointOfContact"),
	}
	if p.Organization != "" {
		party.OrganisationName = &isoCharString{Value: p.Organization}
	}
	contact := isoCIContact{}
	hasContact := false
	if p.Email != "" {
		contact.Address = &isoAddress{CIAddress: isoCIAddress{Email: &isoCharString{Value: p.Email}}}
		hasContact = true
	}
	if p.Website != "" {
		contact.OnlineResource = &isoOnlineResource{Resource: isoCIOnline{Linkage: isoLinkage{URL: p.Website}}}
		hasContact = true
	}
	if hasContact {
		party.ContactInfo = &isoContactInfo{Contact: contact}
	}
	return isoResponsible{Party: party}
}

func buildCitation(r *resource.Resource) isoCitationWrap {
	citation := isoCitation{
		Title: isoCharString{Value: r.MainTitle()},
		Dates: []isoCIDateWrap{{
			Date: isoCIDate{
				Date: isoDate{Value: dateStamp(r)},
				Type: isoDateType{Code: isoCodeValue{CodeList: dateTypeList, CodeListValue: "publication", Value: "publication"}},
			},
		}},
	}
	if r.DOI != "" {
		citation.Identifiers = append(citation.Identifiers, isoIdentWrap{
			Identifier: isoMDIdentifier{Code: isoCharString{Value: validate.NormalizeDOI(r.DOI)}},
		})
	}
	for _, a := range r.Authors {
		citation.CitedResponsible = append(citation.CitedResponsible, isoResponsible{
			Party: isoResponsibleParty{
				IndividualName: &isoCharString{Value: personName(a.FamilyName, a.GivenName)},
				Role:           roleCode("author"),
			},
		})
	}
	return isoCitationWrap{Citation: citation}
}

// buildISOKeywords 自由词合并为一组，GCMD 词单独成组并挂词表引用
func buildISOKeywords(keywords []resource.Keyword) []isoKeywordsWrap {
	var free []isoCharString
	var gcmd []isoCharString
	for _, k := range keywords {
		switch k.Kind {
		case resource.KeywordFree:
			free = append(free, isoCharString{Value: k.Text})
		case resource.KeywordGCMD:
			gcmd = append(gcmd, isoCharString{Value: k.Path})
		}
	}

	var out []isoKeywordsWrap
	if len(free) > 0 {
		out = append(out, isoKeywordsWrap{Keywords: isoMDKeywords{Keywords: free}})
	}
	if len(gcmd) > 0 {
		out = append(out, isoKeywordsWrap{
			Keywords: isoMDKeywords{
				Keywords: gcmd,
				ThesaurusName: &isoCitationWrap{
					Citation: isoCitation{
						Title: isoCharString{Value: gcmdScheme},
						Dates: []isoCIDateWrap{{
							Date: isoCIDate{
								Date: isoDate{Value: "2020-01-01"},
								Type: isoDateType{Code: isoCodeValue{CodeList: dateTypeList, CodeListValue: "revision", Value: "revision"}},
							},
						}},
					},
				},
			},
		})
	}
	return out
}

func buildISOConstraints(licenses []resource.License) []isoConstraints {
	var out []isoConstraints
	for _, l := range licenses {
		legal := isoLegalConstraints{
			UseConstraints: []isoRestriction{{
				Code: isoCodeValue{CodeList: restrictionList, CodeListValue: "license", Value: "license"},
			}},
		}
		text := l.Name
		if text == "" {
			text = l.Identifier
		}
		if l.URI != "" {
			text = fmt.Sprintf("%s (%s)", text, l.URI)
		}
		legal.OtherConstraints = append(legal.OtherConstraints, isoCharString{Value: text})
		out = append(out, isoConstraints{Legal: legal})
	}
	return out
}

func buildISOAggregations(works []resource.RelatedWork) []isoAggregation {
	var out []isoAggregation
	for _, w := range works {
		out = append(out, isoAggregation{
			Aggregate: isoAggregateInfo{
				AggregateDataSetIdentifier: isoIdentWrap{
					Identifier: isoMDIdentifier{Code: isoCharString{Value: w.Identifier}},
				},
				AssociationType: isoAssocType{
					Code: isoCodeValue{CodeList: assocTypeList, CodeListValue: "crossReference", Value: w.RelationType},
				},
			},
		})
	}
	return out
}

func buildISOExtents(coverages []resource.Coverage) []isoExtentWrap {
	var out []isoExtentWrap
	for i, c := range coverages {
		extent := isoEXExtent{}
		if c.Description != "" {
			extent.Description = &isoCharString{Value: c.Description}
		}
		if c.IsBox() || c.IsPoint() {
			// 点在 ISO 里退化为四边相等的外包框
			west, east := formatCoord(c.LonMin), formatCoord(c.LonMin)
			south, north := formatCoord(c.LatMin), formatCoord(c.LatMin)
			if c.IsBox() {
				east = formatCoord(c.LonMax)
				north = formatCoord(c.LatMax)
			}
			extent.GeographicElements = append(extent.GeographicElements, isoGeoElement{
				BoundingBox: isoBoundingBox{
					West:  isoDecimal{Value: west},
					East:  isoDecimal{Value: east},
					South: isoDecimal{Value: south},
					North: isoDecimal{Value: north},
				},
			})
		}
		if c.StartDate != "" || c.EndDate != "" {
			extent.TemporalElements = append(extent.TemporalElements, isoTempElement{
				TemporalExtent: isoTemporalExtent{
					Extent: isoTimeExtent{
						TimePeriod: isoTimePeriod{
							ID:            fmt.Sprintf("tp%d", i+1),
							BeginPosition: temporalPosition(c.StartDate, c.StartTime),
							EndPosition:   temporalPosition(c.EndDate, c.EndTime),
						},
					},
				},
			})
		}
		if extent.Description == nil && len(extent.GeographicElements) == 0 && len(extent.TemporalElements) == 0 {
			continue
		}
		out = append(out, isoExtentWrap{Extent: extent})
	}
	return out
}

// temporalPosition 拼接日期与可选时间为 gml 位置串
func temporalPosition(date, clock string) string {
	if date == "" {
		return ""
	}
	if clock == "" {
		return date
	}
	return date + "T" + clock
}
