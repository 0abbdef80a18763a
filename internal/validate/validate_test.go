package validate

import (
	"errors"
	"strings"
	"testing"

	"metadata-platform/internal/storage/resource"
	pkgerrors "metadata-platform/pkg/errors"
)

func TestValidORCID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0000-0002-1825-0097", true}, // 公开演示用 ORCID，校验位有效
		{"0000-0001-5109-3700", true},
		{"0000-0002-1694-233X", true},
		{"https://orcid.org/0000-0002-1825-0097", true},
		{"0000-0002-1825-0098", false}, // 校验位错误
		{"0000-0002-1825-009", false},
		{"1234", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidORCID(c.in); got != c.want {
			t.Errorf("ValidORCID(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidROR(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"04z8jg394", true},
		{"https://ror.org/04z8jg394", true},
		{"14z8jg394", false}, // 必须以 0 开头
		{"04z8jg39", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidROR(c.in); got != c.want {
			t.Errorf("ValidROR(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidDOI(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"10.5880/GFZ.1.1.2020.001", true},
		{"https://doi.org/10.5880/GFZ.1.1.2020.001", true},
		{"doi:10.1234/abc", true},
		{"11.5880/nope", false},
		{"10.12/too-short-prefix", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidDOI(c.in); got != c.want {
			t.Errorf("ValidDOI(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestValidEmailAndURL(t *testing.T) {
	if !ValidEmail("curator@gfz-potsdam.de") {
		t.Error("valid email rejected")
	}
	if ValidEmail("not-an-email") {
		t.Error("invalid email accepted")
	}
	if !ValidURL("https://dataservices.example.org/landing") {
		t.Error("valid URL rejected")
	}
	if ValidURL("ftp://example.org/x") || ValidURL("relative/path") {
		t.Error("invalid URL accepted")
	}
}

func validResource() *resource.Resource {
	lat := 52.38
	lon := 13.06
	return &resource.Resource{
		ID:              "r1",
		DOI:             "10.5880/GFZ.1.1.2020.001",
		Publisher:       "GFZ Data Services",
		PublicationYear: 2020,
		ResourceType:    "Dataset",
		DateCreated:     "2020-01-10",
		DateEmbargo:     "2020-06-01",
		Titles: []resource.Title{
			{Text: "Seismic catalogue of northern Chile", Type: "main"},
		},
		Authors: []resource.Author{
			{
				FamilyName: "Mustermann",
				GivenName:  "Erika",
				ORCID:      "0000-0002-1825-0097",
				Affiliations: []resource.Affiliation{
					{Name: "GFZ Potsdam", RORID: "04z8jg394"},
				},
			},
		},
		Contributors: []resource.Contributor{
			{Kind: resource.ContributorPerson, FamilyName: "Schmidt", Roles: []string{"DataCurator"}},
			{Kind: resource.ContributorInstitution, InstitutionName: "GFZ Data Services", Roles: []string{"HostingInstitution"}},
		},
		ContactPersons: []resource.ContactPerson{
			{FamilyName: "Schmidt", GivenName: "Anna", Email: "anna.schmidt@gfz-potsdam.de"},
		},
		Keywords: []resource.Keyword{
			{Kind: resource.KeywordFree, Text: "seismology"},
			{Kind: resource.KeywordGCMD, Path: "EARTH SCIENCE > SOLID EARTH > SEISMOLOGY"},
		},
		Coverages: []resource.Coverage{
			{LatMin: &lat, LonMin: &lon, StartDate: "2019-01-01", EndDate: "2019-12-31", Timezone: "America/Santiago"},
		},
		RelatedWorks: []resource.RelatedWork{
			{Identifier: "10.1234/related", IdentifierType: "DOI", RelationType: "IsSupplementTo"},
		},
		FundingReferences: []resource.FundingReference{
			{Funder: "Deutsche Forschungsgemeinschaft", AwardNumber: "SFB 1294"},
		},
	}
}

func TestResource_Valid(t *testing.T) {
	if err := Resource(validResource()); err != nil {
		t.Fatalf("Resource: %v", err)
	}
}

func TestResource_CollectsAllViolations(t *testing.T) {
	r := validResource()
	r.PublicationYear = 275
	r.Authors[0].ORCID = "0000-0002-1825-0098"
	r.Coverages[0].Timezone = "Mars/Olympus"
	r.RelatedWorks[0].RelationType = "IsFriendOf"

	err := Resource(r)
	if err == nil {
		t.Fatal("Resource: expected error")
	}
	if !errors.Is(err, pkgerrors.ErrInvalidArg) {
		t.Errorf("err = %v, want ErrInvalidArg", err)
	}
	var verrs pkgerrors.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("err is %T, want ValidationErrors", err)
	}
	if len(verrs) != 4 {
		t.Errorf("got %d violations, want 4: %v", len(verrs), err)
	}
	fields := make(map[string]bool)
	for _, v := range verrs {
		fields[v.Field] = true
	}
	for _, want := range []string{"publication_year", "authors[0].orcid", "coverages[0].timezone", "related_works[0].relation_type"} {
		if !fields[want] {
			t.Errorf("missing violation for %s, got %v", want, fields)
		}
	}
}

func TestResource_RequiresMainTitle(t *testing.T) {
	r := validResource()
	r.Titles = []resource.Title{{Text: "Alt only", Type: "alternative"}}
	err := Resource(r)
	if err == nil || !strings.Contains(err.Error(), "exactly one main title") {
		t.Errorf("err = %v, want main title violation", err)
	}
}

func TestResource_EmbargoBeforeCreated(t *testing.T) {
	r := validResource()
	r.DateCreated = "2020-06-01"
	r.DateEmbargo = "2020-01-01"
	err := Resource(r)
	if err == nil || !strings.Contains(err.Error(), "date_embargo") {
		t.Errorf("err = %v, want date_embargo violation", err)
	}
}

func TestResource_CoverageBounds(t *testing.T) {
	r := validResource()
	bad := 123.0
	r.Coverages[0].LatMin = &bad
	err := Resource(r)
	if err == nil || !strings.Contains(err.Error(), "lat_min") {
		t.Errorf("err = %v, want lat_min violation", err)
	}
}

func TestResource_LaboratoryNameRequired(t *testing.T) {
	r := validResource()
	r.Laboratories = append(r.Laboratories, resource.Laboratory{LabID: "9e1bf2a8"})
	err := Resource(r)
	if err == nil || !strings.Contains(err.Error(), "laboratories[0].name") {
		t.Errorf("err = %v, want laboratory name violation", err)
	}
}

func TestResource_InstitutionRoleRejectedForPerson(t *testing.T) {
	r := validResource()
	r.Contributors[0].Roles = []string{"HostingInstitution"}
	err := Resource(r)
	if err == nil || !strings.Contains(err.Error(), "contributors[0].roles[0]") {
		t.Errorf("err = %v, want role violation", err)
	}
}
