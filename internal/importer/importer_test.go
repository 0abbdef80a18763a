package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"metadata-platform/internal/export"
	"metadata-platform/internal/storage/object"
	"metadata-platform/internal/storage/resource"
	pkgerrors "metadata-platform/pkg/errors"
)

const dataciteSample = `<?xml version="1.0" encoding="UTF-8"?>
<resource xmlns="http://datacite.org/schema/kernel-4">
  <identifier identifierType="DOI">10.5880/GFZ.1.1.2020.001</identifier>
  <creators>
    <creator>
      <creatorName nameType="Personal">Mustermann, Erika</creatorName>
      <givenName>Erika</givenName>
      <familyName>Mustermann</familyName>
      <nameIdentifier nameIdentifierScheme="ORCID" schemeURI="https://orcid.org">0000-0002-1825-0097</nameIdentifier>
      <affiliation affiliationIdentifier="https://ror.org/04z8jg394" affiliationIdentifierScheme="ROR">GFZ Potsdam</affiliation>
    </creator>
    <creator>
      <creatorName nameType="Personal">Diaz, Pablo</creatorName>
    </creator>
  </creators>
  <titles>
    <title>Seismic catalogue of northern Chile</title>
    <title titleType="TranslatedTitle">Erdbebenkatalog Nordchile</title>
  </titles>
  <publisher>GFZ Data Services</publisher>
  <publicationYear>2020</publicationYear>
  <resourceType resourceTypeGeneral="Dataset">Dataset</resourceType>
  <subjects>
    <subject>seismicity</subject>
    <subject subjectScheme="NASA/GCMD Earth Science Keywords" schemeURI="https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords">EARTH SCIENCE &gt; SOLID EARTH &gt; SEISMOLOGY</subject>
  </subjects>
  <contributors>
    <contributor contributorType="HostingInstitution">
      <contributorName nameType="Organizational">GFZ Data Services</contributorName>
    </contributor>
    <contributor contributorType="Distributor">
      <contributorName nameType="Organizational">GFZ Data Services</contributorName>
    </contributor>
    <contributor contributorType="DataCurator">
      <contributorName nameType="Personal">Schmidt, Anna</contributorName>
      <givenName>Anna</givenName>
      <familyName>Schmidt</familyName>
    </contributor>
  </contributors>
  <dates>
    <date dateType="Created">2020-01-10</date>
    <date dateType="Available">2020-06-01</date>
  </dates>
  <language>en</language>
  <relatedIdentifiers>
    <relatedIdentifier relatedIdentifierType="DOI" relationType="IsSupplementTo">10.1234/related.paper</relatedIdentifier>
  </relatedIdentifiers>
  <rightsList>
    <rights rightsURI="https://creativecommons.org/licenses/by/4.0/" rightsIdentifier="CC-BY-4.0" rightsIdentifierScheme="SPDX">Creative Commons Attribution 4.0 International</rights>
  </rightsList>
  <descriptions>
    <description descriptionType="Abstract">A relocated seismicity catalogue.</description>
  </descriptions>
  <geoLocations>
    <geoLocation>
      <geoLocationPlace>Northern Chile</geoLocationPlace>
      <geoLocationBox>
        <westBoundLongitude>-75</westBoundLongitude>
        <eastBoundLongitude>-66</eastBoundLongitude>
        <southBoundLatitude>-45</southBoundLatitude>
        <northBoundLatitude>-17.5</northBoundLatitude>
      </geoLocationBox>
    </geoLocation>
  </geoLocations>
  <fundingReferences>
    <fundingReference>
      <funderName>Deutsche Forschungsgemeinschaft</funderName>
      <funderIdentifier funderIdentifierType="ROR">https://ror.org/018mejw64</funderIdentifier>
      <awardNumber>SFB 1294</awardNumber>
    </fundingReference>
  </fundingReferences>
</resource>`

func TestSniffScheme(t *testing.T) {
	cases := []struct {
		name string
		data string
		want export.Scheme
		ok   bool
	}{
		{"datacite", dataciteSample, export.SchemeDataCite, true},
		{"iso", `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd"></gmd:MD_Metadata>`, export.SchemeISO, true},
		{"dif", `<DIF xmlns="https://gcmd.earthdata.nasa.gov/Aboutus/xml/dif/"></DIF>`, export.SchemeDIF, true},
		{"unknown", `<catalog></catalog>`, "", false},
		{"empty", ``, "", false},
		{"garbage", `not xml at all`, "", false},
	}
	for _, c := range cases {
		got, err := SniffScheme([]byte(c.data))
		if c.ok && (err != nil || got != c.want) {
			t.Errorf("%s: SniffScheme = %v, %v", c.name, got, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected error", c.name)
		}
	}
}

func TestParseDataCite_FullRecord(t *testing.T) {
	res, err := ParseDataCite([]byte(dataciteSample))
	if err != nil {
		t.Fatalf("ParseDataCite: %v", err)
	}

	if res.DOI != "10.5880/GFZ.1.1.2020.001" || res.PublicationYear != 2020 {
		t.Errorf("core: doi=%s year=%d", res.DOI, res.PublicationYear)
	}
	if res.ResourceType != "Dataset" || res.Language != "en" {
		t.Errorf("type/language: %s %s", res.ResourceType, res.Language)
	}

	if len(res.Titles) != 2 || res.Titles[0].Type != "main" || res.Titles[1].Type != "translated" {
		t.Errorf("titles: %+v", res.Titles)
	}

	if len(res.Authors) != 2 {
		t.Fatalf("authors: got %d", len(res.Authors))
	}
	a := res.Authors[0]
	if a.FamilyName != "Mustermann" || a.GivenName != "Erika" || a.ORCID != "0000-0002-1825-0097" {
		t.Errorf("author: %+v", a)
	}
	if len(a.Affiliations) != 1 || a.Affiliations[0].RORID != "04z8jg394" {
		t.Errorf("affiliation: %+v", a.Affiliations)
	}

	// 同名机构两条角色记录折叠为一条
	if len(res.Contributors) != 2 {
		t.Fatalf("contributors: got %d: %+v", len(res.Contributors), res.Contributors)
	}
	inst := res.Contributors[0]
	if inst.Kind != resource.ContributorInstitution || len(inst.Roles) != 2 {
		t.Errorf("institution contributor: %+v", inst)
	}
	person := res.Contributors[1]
	if person.Kind != resource.ContributorPerson || person.FamilyName != "Schmidt" {
		t.Errorf("person contributor: %+v", person)
	}

	if len(res.Keywords) != 2 {
		t.Fatalf("keywords: got %d", len(res.Keywords))
	}
	if res.Keywords[0].Kind != resource.KeywordFree || res.Keywords[0].Text != "seismicity" {
		t.Errorf("free keyword: %+v", res.Keywords[0])
	}
	if res.Keywords[1].Kind != resource.KeywordGCMD || res.Keywords[1].Path != "EARTH SCIENCE > SOLID EARTH > SEISMOLOGY" {
		t.Errorf("gcmd keyword: %+v", res.Keywords[1])
	}

	if res.DateCreated != "2020-01-10" || res.DateEmbargo != "2020-06-01" {
		t.Errorf("dates: %s %s", res.DateCreated, res.DateEmbargo)
	}

	if len(res.Coverages) != 1 {
		t.Fatalf("coverages: got %d", len(res.Coverages))
	}
	cov := res.Coverages[0]
	if !cov.IsBox() || *cov.LatMin != -45 || *cov.LatMax != -17.5 || cov.Description != "Northern Chile" {
		t.Errorf("coverage: %+v", cov)
	}

	if len(res.RelatedWorks) != 1 || res.RelatedWorks[0].RelationType != "IsSupplementTo" {
		t.Errorf("related works: %+v", res.RelatedWorks)
	}
	if len(res.Licenses) != 1 || res.Licenses[0].Identifier != "CC-BY-4.0" {
		t.Errorf("licenses: %+v", res.Licenses)
	}
	if len(res.FundingReferences) != 1 || res.FundingReferences[0].FunderIDType != "ROR" {
		t.Errorf("funding: %+v", res.FundingReferences)
	}
}

func TestParseDataCite_ExportRoundTrip(t *testing.T) {
	res, err := ParseDataCite([]byte(dataciteSample))
	if err != nil {
		t.Fatalf("ParseDataCite: %v", err)
	}
	out, err := export.Render(res, export.SchemeDataCite)
	if err != nil {
		t.Fatalf("Render re-imported record: %v", err)
	}
	reparsed, err := ParseDataCite(out)
	if err != nil {
		t.Fatalf("ParseDataCite of rendered output: %v", err)
	}
	if reparsed.DOI != res.DOI || len(reparsed.Authors) != len(res.Authors) || len(reparsed.Keywords) != len(res.Keywords) {
		t.Errorf("round trip drift: %+v vs %+v", reparsed, res)
	}
}

func TestImporter_RejectsISOAndDIF(t *testing.T) {
	im := NewImporter(nil)
	iso := `<gmd:MD_Metadata xmlns:gmd="http://www.isotc211.org/2005/gmd"></gmd:MD_Metadata>`
	_, err := im.Import(context.Background(), "record.xml", []byte(iso))
	if !errors.Is(err, pkgerrors.ErrInvalidArg) {
		t.Errorf("ISO import: err = %v, want ErrInvalidArg", err)
	}
	if err == nil || !strings.Contains(err.Error(), "not supported") {
		t.Errorf("ISO import: err = %v, want clear rejection message", err)
	}

	dif := `<DIF xmlns="https://gcmd.earthdata.nasa.gov/Aboutus/xml/dif/"></DIF>`
	if _, err := im.Import(context.Background(), "record.xml", []byte(dif)); !errors.Is(err, pkgerrors.ErrInvalidArg) {
		t.Errorf("DIF import: err = %v, want ErrInvalidArg", err)
	}
}

func TestImporter_RetainsUpload(t *testing.T) {
	objects := object.NewMemoryStore()
	im := NewImporter(objects)

	res, err := im.Import(context.Background(), "upload.xml", []byte(dataciteSample))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if res.DOI != "10.5880/GFZ.1.1.2020.001" {
		t.Errorf("parsed DOI: %s", res.DOI)
	}

	infos, err := objects.List(context.Background(), "imports/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 1 {
		t.Fatalf("retained files: got %d", len(infos))
	}
	if infos[0].Metadata["filename"] != "upload.xml" {
		t.Errorf("retained metadata: %+v", infos[0].Metadata)
	}
}
