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

// Package vocab 提供表单下拉框用的静态受控词表。
// 词表不从远端获取，全部内置；按名称查询，大小写不敏感。
package vocab

import (
	"sort"
	"strings"

	pkgerrors "metadata-platform/pkg/errors"
)

// Term 受控词表中的一项
type Term struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	URI   string `json:"uri,omitempty"`
}

// 词表名称常量，对应 /api/v1/vocab/:name
const (
	ListTitleTypes       = "title_types"
	ListDescriptionTypes = "description_types"
	ListContributorRoles = "contributor_roles"
	ListPersonRoles      = "person_roles"
	ListInstitutionRoles = "institution_roles"
	ListRelationTypes    = "relation_types"
	ListIdentifierTypes  = "identifier_types"
	ListResourceTypes    = "resource_types"
	ListLicenses         = "licenses"
	ListTimezones        = "timezones"
	ListGCMDCategories   = "gcmd_categories"
)

// TitleTypes 标题类型
var TitleTypes = []Term{
	{Code: "main", Label: "Main Title"},
	{Code: "alternative", Label: "Alternative Title"},
	{Code: "translated", Label: "Translated Title"},
	{Code: "subtitle", Label: "Subtitle"},
}

// DescriptionTypes DataCite descriptionType 子集
var DescriptionTypes = []Term{
	{Code: "Abstract", Label: "Abstract"},
	{Code: "Methods", Label: "Methods"},
	{Code: "TechnicalInfo", Label: "Technical Information"},
	{Code: "Other", Label: "Other"},
}

// InstitutionRoles 机构类 contributorType（DataCite 词表子集）
var InstitutionRoles = []Term{
	{Code: "Distributor", Label: "Distributor"},
	{Code: "HostingInstitution", Label: "Hosting Institution"},
	{Code: "Producer", Label: "Producer"},
	{Code: "RegistrationAgency", Label: "Registration Agency"},
	{Code: "RegistrationAuthority", Label: "Registration Authority"},
	{Code: "ResearchGroup", Label: "Research Group"},
	{Code: "RightsHolder", Label: "Rights Holder"},
	{Code: "Sponsor", Label: "Sponsor"},
	{Code: "Other", Label: "Other"},
}

// PersonRoles 个人类 contributorType
var PersonRoles = []Term{
	{Code: "ContactPerson", Label: "Contact Person"},
	{Code: "DataCollector", Label: "Data Collector"},
	{Code: "DataCurator", Label: "Data Curator"},
	{Code: "DataManager", Label: "Data Manager"},
	{Code: "Editor", Label: "Editor"},
	{Code: "ProjectLeader", Label: "Project Leader"},
	{Code: "ProjectManager", Label: "Project Manager"},
	{Code: "ProjectMember", Label: "Project Member"},
	{Code: "RelatedPerson", Label: "Related Person"},
	{Code: "Researcher", Label: "Researcher"},
	{Code: "RightsHolder", Label: "Rights Holder"},
	{Code: "Supervisor", Label: "Supervisor"},
	{Code: "WorkPackageLeader", Label: "Work Package Leader"},
	{Code: "Other", Label: "Other"},
}

// RelationTypes DataCite relationType 词表
var RelationTypes = []Term{
	{Code: "IsCitedBy", Label: "Is Cited By"},
	{Code: "Cites", Label: "Cites"},
	{Code: "IsSupplementTo", Label: "Is Supplement To"},
	{Code: "IsSupplementedBy", Label: "Is Supplemented By"},
	{Code: "IsContinuedBy", Label: "Is Continued By"},
	{Code: "Continues", Label: "Continues"},
	{Code: "IsNewVersionOf", Label: "Is New Version Of"},
	{Code: "IsPreviousVersionOf", Label: "Is Previous Version Of"},
	{Code: "IsPartOf", Label: "Is Part Of"},
	{Code: "HasPart", Label: "Has Part"},
	{Code: "IsPublishedIn", Label: "Is Published In"},
	{Code: "IsReferencedBy", Label: "Is Referenced By"},
	{Code: "References", Label: "References"},
	{Code: "IsDocumentedBy", Label: "Is Documented By"},
	{Code: "Documents", Label: "Documents"},
	{Code: "IsCompiledBy", Label: "Is Compiled By"},
	{Code: "Compiles", Label: "Compiles"},
	{Code: "IsVariantFormOf", Label: "Is Variant Form Of"},
	{Code: "IsOriginalFormOf", Label: "Is Original Form Of"},
	{Code: "IsIdenticalTo", Label: "Is Identical To"},
	{Code: "HasMetadata", Label: "Has Metadata"},
	{Code: "IsMetadataFor", Label: "Is Metadata For"},
	{Code: "Reviews", Label: "Reviews"},
	{Code: "IsReviewedBy", Label: "Is Reviewed By"},
	{Code: "IsDerivedFrom", Label: "Is Derived From"},
	{Code: "IsSourceOf", Label: "Is Source Of"},
	{Code: "Describes", Label: "Describes"},
	{Code: "IsDescribedBy", Label: "Is Described By"},
	{Code: "HasVersion", Label: "Has Version"},
	{Code: "IsVersionOf", Label: "Is Version Of"},
	{Code: "Requires", Label: "Requires"},
	{Code: "IsRequiredBy", Label: "Is Required By"},
	{Code: "Obsoletes", Label: "Obsoletes"},
	{Code: "IsObsoletedBy", Label: "Is Obsoleted By"},
}

// IdentifierTypes 相关成果标识符类型
var IdentifierTypes = []Term{
	{Code: "ARK", Label: "ARK"},
	{Code: "arXiv", Label: "arXiv"},
	{Code: "bibcode", Label: "bibcode"},
	{Code: "DOI", Label: "DOI"},
	{Code: "Handle", Label: "Handle"},
	{Code: "IGSN", Label: "IGSN"},
	{Code: "ISBN", Label: "ISBN"},
	{Code: "ISSN", Label: "ISSN"},
	{Code: "PMID", Label: "PMID"},
	{Code: "PURL", Label: "PURL"},
	{Code: "URL", Label: "URL"},
	{Code: "URN", Label: "URN"},
	{Code: "w3id", Label: "w3id"},
}

// ResourceTypes DataCite resourceTypeGeneral 词表
var ResourceTypes = []Term{
	{Code: "Audiovisual", Label: "Audiovisual"},
	{Code: "Collection", Label: "Collection"},
	{Code: "ComputationalNotebook", Label: "Computational Notebook"},
	{Code: "DataPaper", Label: "Data Paper"},
	{Code: "Dataset", Label: "Dataset"},
	{Code: "Event", Label: "Event"},
	{Code: "Image", Label: "Image"},
	{Code: "Instrument", Label: "Instrument"},
	{Code: "InteractiveResource", Label: "Interactive Resource"},
	{Code: "Model", Label: "Model"},
	{Code: "PhysicalObject", Label: "Physical Object"},
	{Code: "Software", Label: "Software"},
	{Code: "Sound", Label: "Sound"},
	{Code: "Text", Label: "Text"},
	{Code: "Workflow", Label: "Workflow"},
	{Code: "Other", Label: "Other"},
}

// Licenses 常用 SPDX 许可证子集
var Licenses = []Term{
	{Code: "CC0-1.0", Label: "Creative Commons Zero v1.0 Universal", URI: "https://creativecommons.org/publicdomain/zero/1.0/"},
	{Code: "CC-BY-4.0", Label: "Creative Commons Attribution 4.0 International", URI: "https://creativecommons.org/licenses/by/4.0/"},
	{Code: "CC-BY-SA-4.0", Label: "Creative Commons Attribution Share Alike 4.0 International", URI: "https://creativecommons.org/licenses/by-sa/4.0/"},
	{Code: "CC-BY-NC-4.0", Label: "Creative Commons Attribution Non Commercial 4.0 International", URI: "https://creativecommons.org/licenses/by-nc/4.0/"},
	{Code: "CC-BY-NC-SA-4.0", Label: "Creative Commons Attribution Non Commercial Share Alike 4.0 International", URI: "https://creativecommons.org/licenses/by-nc-sa/4.0/"},
	{Code: "CC-BY-ND-4.0", Label: "Creative Commons Attribution No Derivatives 4.0 International", URI: "https://creativecommons.org/licenses/by-nd/4.0/"},
	{Code: "MIT", Label: "MIT License", URI: "https://opensource.org/licenses/MIT"},
	{Code: "Apache-2.0", Label: "Apache License 2.0", URI: "https://www.apache.org/licenses/LICENSE-2.0"},
	{Code: "GPL-3.0-only", Label: "GNU General Public License v3.0 only", URI: "https://www.gnu.org/licenses/gpl-3.0.html"},
	{Code: "BSD-3-Clause", Label: "BSD 3-Clause License", URI: "https://opensource.org/licenses/BSD-3-Clause"},
	{Code: "ODbL-1.0", Label: "Open Data Commons Open Database License v1.0", URI: "https://opendatacommons.org/licenses/odbl/1-0/"},
	{Code: "EUPL-1.2", Label: "European Union Public License 1.2", URI: "https://joinup.ec.europa.eu/collection/eupl/eupl-text-eupl-12"},
}

// Timezones 常用 IANA 时区静态列表
var Timezones = []Term{
	{Code: "UTC", Label: "UTC"},
	{Code: "Europe/Berlin", Label: "Europe/Berlin"},
	{Code: "Europe/London", Label: "Europe/London"},
	{Code: "Europe/Paris", Label: "Europe/Paris"},
	{Code: "Europe/Moscow", Label: "Europe/Moscow"},
	{Code: "America/New_York", Label: "America/New_York"},
	{Code: "America/Chicago", Label: "America/Chicago"},
	{Code: "America/Denver", Label: "America/Denver"},
	{Code: "America/Los_Angeles", Label: "America/Los_Angeles"},
	{Code: "America/Sao_Paulo", Label: "America/Sao_Paulo"},
	{Code: "Asia/Shanghai", Label: "Asia/Shanghai"},
	{Code: "Asia/Tokyo", Label: "Asia/Tokyo"},
	{Code: "Asia/Kolkata", Label: "Asia/Kolkata"},
	{Code: "Asia/Singapore", Label: "Asia/Singapore"},
	{Code: "Australia/Sydney", Label: "Australia/Sydney"},
	{Code: "Pacific/Auckland", Label: "Pacific/Auckland"},
	{Code: "Africa/Johannesburg", Label: "Africa/Johannesburg"},
	{Code: "Antarctica/McMurdo", Label: "Antarctica/McMurdo"},
}

// GCMDCategories GCMD 科学关键词顶层类目
var GCMDCategories = []Term{
	{Code: "EARTH SCIENCE > AGRICULTURE", Label: "Agriculture"},
	{Code: "EARTH SCIENCE > ATMOSPHERE", Label: "Atmosphere"},
	{Code: "EARTH SCIENCE > BIOLOGICAL CLASSIFICATION", Label: "Biological Classification"},
	{Code: "EARTH SCIENCE > BIOSPHERE", Label: "Biosphere"},
	{Code: "EARTH SCIENCE > CLIMATE INDICATORS", Label: "Climate Indicators"},
	{Code: "EARTH SCIENCE > CRYOSPHERE", Label: "Cryosphere"},
	{Code: "EARTH SCIENCE > HUMAN DIMENSIONS", Label: "Human Dimensions"},
	{Code: "EARTH SCIENCE > LAND SURFACE", Label: "Land Surface"},
	{Code: "EARTH SCIENCE > OCEANS", Label: "Oceans"},
	{Code: "EARTH SCIENCE > PALEOCLIMATE", Label: "Paleoclimate"},
	{Code: "EARTH SCIENCE > SOLID EARTH", Label: "Solid Earth"},
	{Code: "EARTH SCIENCE > SPECTRAL/ENGINEERING", Label: "Spectral/Engineering"},
	{Code: "EARTH SCIENCE > SUN-EARTH INTERACTIONS", Label: "Sun-Earth Interactions"},
	{Code: "EARTH SCIENCE > TERRESTRIAL HYDROSPHERE", Label: "Terrestrial Hydrosphere"},
}

// ContributorRoles 个人与机构角色的并集，去重后按 code 排序
var ContributorRoles = mergeRoles()

func mergeRoles() []Term {
	seen := make(map[string]bool)
	var merged []Term
	for _, t := range append(append([]Term{}, PersonRoles...), InstitutionRoles...) {
		if seen[t.Code] {
			continue
		}
		seen[t.Code] = true
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Code < merged[j].Code })
	return merged
}

var lists = map[string][]Term{
	ListTitleTypes:       TitleTypes,
	ListDescriptionTypes: DescriptionTypes,
	ListContributorRoles: ContributorRoles,
	ListPersonRoles:      PersonRoles,
	ListInstitutionRoles: InstitutionRoles,
	ListRelationTypes:    RelationTypes,
	ListIdentifierTypes:  IdentifierTypes,
	ListResourceTypes:    ResourceTypes,
	ListLicenses:         Licenses,
	ListTimezones:        Timezones,
	ListGCMDCategories:   GCMDCategories,
}

// Lookup 按名称返回词表，名称大小写不敏感
func Lookup(name string) ([]Term, error) {
	terms, ok := lists[strings.ToLower(name)]
	if !ok {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrNotFound, "vocabulary %s", name)
	}
	return terms, nil
}

// Contains 检查 code 是否属于指定词表，code 大小写不敏感
func Contains(name, code string) bool {
	terms, err := Lookup(name)
	if err != nil {
		return false
	}
	for _, t := range terms {
		if strings.EqualFold(t.Code, code) {
			return true
		}
	}
	return false
}

// Names 返回全部词表名称，排序后稳定输出
func Names() []string {
	names := make([]string, 0, len(lists))
	for name := range lists {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
