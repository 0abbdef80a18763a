package vocab

import (
	"errors"
	"testing"
	"time"

	pkgerrors "metadata-platform/pkg/errors"
)

func TestLookup_CaseInsensitive(t *testing.T) {
	terms, err := Lookup("Relation_Types")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(terms) == 0 {
		t.Fatal("Lookup: empty list")
	}
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("colors")
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("Lookup unknown: err = %v, want ErrNotFound", err)
	}
}

func TestContains(t *testing.T) {
	cases := []struct {
		list string
		code string
		want bool
	}{
		{ListRelationTypes, "IsCitedBy", true},
		{ListRelationTypes, "iscitedby", true},
		{ListRelationTypes, "IsFriendOf", false},
		{ListResourceTypes, "Dataset", true},
		{ListTitleTypes, "main", true},
		{ListPersonRoles, "HostingInstitution", false},
		{ListInstitutionRoles, "HostingInstitution", true},
		{ListContributorRoles, "HostingInstitution", true},
	}
	for _, c := range cases {
		if got := Contains(c.list, c.code); got != c.want {
			t.Errorf("Contains(%s, %s) = %v, want %v", c.list, c.code, got, c.want)
		}
	}
}

func TestContributorRoles_MergedWithoutDuplicates(t *testing.T) {
	seen := make(map[string]bool)
	for _, term := range ContributorRoles {
		if seen[term.Code] {
			t.Errorf("duplicate role %s", term.Code)
		}
		seen[term.Code] = true
	}
	// Other 与 RightsHolder 在两个子集里都出现，合并后只保留一份
	if !seen["Other"] || !seen["RightsHolder"] {
		t.Error("merged roles missing shared entries")
	}
}

func TestTimezones_AllLoadable(t *testing.T) {
	for _, term := range Timezones {
		if _, err := time.LoadLocation(term.Code); err != nil {
			t.Errorf("timezone %s: %v", term.Code, err)
		}
	}
}

func TestNames_Sorted(t *testing.T) {
	names := Names()
	if len(names) != 11 {
		t.Fatalf("Names: got %d lists", len(names))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Errorf("Names not sorted: %s >= %s", names[i-1], names[i])
		}
	}
}
