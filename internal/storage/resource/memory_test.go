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
	"errors"
	"testing"

	pkgerrors "metadata-platform/pkg/errors"
)

func sampleResource(id string) *Resource {
	lat := 52.38
	lon := 13.06
	return &Resource{
		ID:              id,
		DOI:             "10.5880/TEST." + id,
		Publisher:       "Example Data Centre",
		PublicationYear: 2024,
		Language:        "en",
		ResourceType:    "Dataset",
		Titles: []Title{
			{Text: "Seismic catalogue of the test region", Type: "main"},
			{Text: "Testkatalog", Type: "translated"},
		},
		Licenses: []License{
			{Identifier: "CC-BY-4.0", Name: "Creative Commons Attribution 4.0", URI: "https://creativecommons.org/licenses/by/4.0/"},
		},
		Descriptions: []Description{
			{Type: "Abstract", Text: "A catalogue compiled for testing."},
		},
		Authors: []Author{
			{FamilyName: "Muster", GivenName: "Anna", ORCID: "0000-0002-1825-0097",
				Affiliations: []Affiliation{{Name: "Example Institute", RORID: "04z8jg394"}}},
		},
		Contributors: []Contributor{
			{Kind: ContributorPerson, FamilyName: "Beispiel", GivenName: "Ben", Roles: []string{"DataCurator"}},
		},
		ContactPersons: []ContactPerson{
			{FamilyName: "Muster", GivenName: "Anna", Email: "anna@example.org"},
		},
		Keywords: []Keyword{
			{Kind: KeywordFree, Text: "seismology"},
			{Kind: KeywordGCMD, Text: "EARTHQUAKES", Path: "EARTH SCIENCE > SOLID EARTH > SEISMOLOGY > EARTHQUAKES",
				Scheme: "NASA/GCMD Earth Science Keywords", SchemeURI: "https://gcmd.earthdata.nasa.gov/kms/concepts/concept_scheme/sciencekeywords"},
		},
		Coverages: []Coverage{
			{LatMin: &lat, LonMin: &lon, StartDate: "2020-01-01", EndDate: "2023-12-31", Timezone: "UTC"},
		},
		RelatedWorks: []RelatedWork{
			{Identifier: "10.1000/related", IdentifierType: "DOI", RelationType: "IsSupplementTo"},
		},
		FundingReferences: []FundingReference{
			{Funder: "Deutsche Forschungsgemeinschaft", FunderID: "501100001659", FunderIDType: "Crossref Funder ID", AwardNumber: "TEST 123"},
		},
	}
}

func TestMemoryStore_Create_Get(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	res := sampleResource("r1")
	if err := s.Create(ctx, res); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.DOI != res.DOI || got.CreatedAt == 0 {
		t.Errorf("Get: %+v", got)
	}
	if len(got.Titles) != 2 || got.MainTitle() != "Seismic catalogue of the test region" {
		t.Errorf("titles: %+v", got.Titles)
	}
	if len(got.Authors) != 1 || got.Authors[0].Affiliations[0].RORID != "04z8jg394" {
		t.Errorf("authors: %+v", got.Authors)
	}
	if got.Coverages[0].LatMin == nil || *got.Coverages[0].LatMin != 52.38 {
		t.Errorf("coverage: %+v", got.Coverages)
	}
}

func TestMemoryStore_Create_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, sampleResource("r1"))
	err := s.Create(ctx, sampleResource("r1"))
	if !errors.Is(err, pkgerrors.ErrConflict) {
		t.Errorf("Create duplicate: got %v, want ErrConflict", err)
	}
}

func TestMemoryStore_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.Get(ctx, "nonexistent")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Get nonexistent: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Update_RewritesChildren(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	res := sampleResource("r1")
	_ = s.Create(ctx, res)
	prevUpdated := res.UpdatedAt

	res.Titles = []Title{{Text: "New title", Type: "main"}}
	res.Authors = append(res.Authors, Author{FamilyName: "Zweite", GivenName: "Zoe"})
	if err := s.Update(ctx, res); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, _ := s.Get(ctx, "r1")
	if len(got.Titles) != 1 || got.Titles[0].Text != "New title" {
		t.Errorf("titles after update: %+v", got.Titles)
	}
	if len(got.Authors) != 2 {
		t.Errorf("authors after update: %d", len(got.Authors))
	}
	if got.UpdatedAt <= prevUpdated {
		t.Errorf("UpdatedAt should advance: %d -> %d", prevUpdated, got.UpdatedAt)
	}
}

func TestMemoryStore_Update_NotFound(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	err := s.Update(ctx, sampleResource("missing"))
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Update missing: got %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, sampleResource("r1"))
	if err := s.Delete(ctx, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "r1"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Error("Get after delete should be ErrNotFound")
	}
	if err := s.Delete(ctx, "r1"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Error("second Delete should be ErrNotFound")
	}
}

func TestMemoryStore_List_FilterAndPagination(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	a := sampleResource("a")
	b := sampleResource("b")
	b.PublicationYear = 2020
	b.Titles = []Title{{Text: "Groundwater levels", Type: "main"}}
	c := sampleResource("c")
	c.ResourceType = "Software"
	for _, res := range []*Resource{a, b, c} {
		if err := s.Create(ctx, res); err != nil {
			t.Fatalf("Create %s: %v", res.ID, err)
		}
	}

	got, err := s.List(ctx, &Filter{Year: 2020}, nil)
	if err != nil || len(got) != 1 || got[0].ID != "b" {
		t.Errorf("List year filter: %v %v", got, err)
	}

	got, _ = s.List(ctx, &Filter{ResourceType: "Software"}, nil)
	if len(got) != 1 || got[0].ID != "c" {
		t.Errorf("List type filter: %+v", got)
	}

	got, _ = s.List(ctx, &Filter{Search: "groundwater"}, nil)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("List search filter: %+v", got)
	}

	got, _ = s.List(ctx, nil, &Pagination{Offset: 0, Limit: 2})
	if len(got) != 2 {
		t.Errorf("List pagination: got %d", len(got))
	}

	n, _ := s.Count(ctx, nil)
	if n != 3 {
		t.Errorf("Count: got %d", n)
	}
}

func TestMemoryStore_Get_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.Create(ctx, sampleResource("r1"))
	got, _ := s.Get(ctx, "r1")
	got.Titles[0].Text = "mutated"
	again, _ := s.Get(ctx, "r1")
	if again.Titles[0].Text == "mutated" {
		t.Error("Get should return a deep copy")
	}
}
