package resource

import (
	"context"
)

// Store 数据集资源存储接口
type Store interface {
	// Create 创建资源聚合（含全部子记录）
	Create(ctx context.Context, res *Resource) error
	// Get 根据 ID 获取完整聚合
	Get(ctx context.Context, id string) (*Resource, error)
	// Update 更新资源聚合，子记录整体重写
	Update(ctx context.Context, res *Resource) error
	// Delete 根据 ID 删除资源及其子记录
	Delete(ctx context.Context, id string) error
	// List 列出资源（仅聚合根字段 + 主标题，不展开子记录）
	List(ctx context.Context, filter *Filter, pagination *Pagination) ([]*Resource, error)
	// Count 统计资源数量
	Count(ctx context.Context, filter *Filter) (int64, error)
	// Close 关闭存储连接
	Close() error
}

// Resource 数据集记录聚合根：编辑器表单对应的规范化结构
type Resource struct {
	ID                string             `json:"id"`
	DOI               string             `json:"doi"`
	Publisher         string             `json:"publisher"`
	PublicationYear   int                `json:"publication_year"`
	Version           string             `json:"version"`
	Language          string             `json:"language"`      // ISO 639-1，如 "en"
	ResourceType      string             `json:"resource_type"` // DataCite resourceTypeGeneral
	DateCreated       string             `json:"date_created"`  // YYYY-MM-DD，可空
	DateEmbargo       string             `json:"date_embargo"`  // YYYY-MM-DD，可空
	Titles            []Title            `json:"titles"`
	Licenses          []License          `json:"licenses"`
	Descriptions      []Description      `json:"descriptions"`
	Authors           []Author           `json:"authors"`
	Contributors      []Contributor      `json:"contributors"`
	ContactPersons    []ContactPerson    `json:"contact_persons"`
	Laboratories      []Laboratory       `json:"laboratories"`
	Keywords          []Keyword          `json:"keywords"`
	Coverages         []Coverage         `json:"coverages"`
	RelatedWorks      []RelatedWork      `json:"related_works"`
	FundingReferences []FundingReference `json:"funding_references"`
	CreatedAt         int64              `json:"created_at"`
	UpdatedAt         int64              `json:"updated_at"`
}

// Title 标题，Type 取 vocab.TitleTypes
type Title struct {
	Text string `json:"text"`
	Type string `json:"type"` // main | alternative | translated | subtitle
}

// License 许可条目（SPDX 风格）
type License struct {
	Identifier string `json:"identifier"` // 如 CC-BY-4.0
	Name       string `json:"name"`
	URI        string `json:"uri"`
}

// Description 描述块，Type 取 vocab.DescriptionTypes
type Description struct {
	Type string `json:"type"` // Abstract | Methods | TechnicalInfo | Other
	Text string `json:"text"`
}

// Affiliation 机构隶属，RORID 可为空或 ROR 九位标识（不含 URL 前缀）
type Affiliation struct {
	Name  string `json:"name"`
	RORID string `json:"ror_id"`
}

// Author 作者（顺序即表单顺序）
type Author struct {
	FamilyName   string        `json:"family_name"`
	GivenName    string        `json:"given_name"`
	ORCID        string        `json:"orcid"`
	Affiliations []Affiliation `json:"affiliations"`
}

// ContributorKind 贡献者类别
const (
	ContributorPerson      = "person"
	ContributorInstitution = "institution"
)

// Contributor 贡献者：person 或 institution，Roles 取 DataCite contributorType
type Contributor struct {
	Kind            string        `json:"kind"` // person | institution
	FamilyName      string        `json:"family_name"`
	GivenName       string        `json:"given_name"`
	ORCID           string        `json:"orcid"`
	InstitutionName string        `json:"institution_name"`
	Roles           []string      `json:"roles"`
	Affiliations    []Affiliation `json:"affiliations"`
}

// ContactPerson 联系人：仅进入 ISO 的 pointOfContact
type ContactPerson struct {
	FamilyName   string `json:"family_name"`
	GivenName    string `json:"given_name"`
	Email        string `json:"email"`
	Website      string `json:"website"`
	Organization string `json:"organization"`
}

// Laboratory 产出实验室
type Laboratory struct {
	Name        string `json:"name"`
	LabID       string `json:"lab_id"`
	Affiliation string `json:"affiliation"`
}

// Keyword 类别常量
const (
	KeywordFree = "free"
	KeywordGCMD = "gcmd"
)

// Keyword 关键词：free 为自由词；gcmd 为受控词（Path 为层级全路径，用 " > " 分隔）
type Keyword struct {
	Kind      string `json:"kind"` // free | gcmd
	Text      string `json:"text"`
	Path      string `json:"path"`
	Scheme    string `json:"scheme"`
	SchemeURI string `json:"scheme_uri"`
	ValueURI  string `json:"value_uri"`
}

// Coverage 时空覆盖：LatMax/LonMax 为 nil 时是点，否则是外包框
type Coverage struct {
	LatMin      *float64 `json:"lat_min"`
	LatMax      *float64 `json:"lat_max"`
	LonMin      *float64 `json:"lon_min"`
	LonMax      *float64 `json:"lon_max"`
	Description string   `json:"description"`
	StartDate   string   `json:"start_date"` // YYYY-MM-DD
	EndDate     string   `json:"end_date"`
	StartTime   string   `json:"start_time"` // HH:MM:SS，可空
	EndTime     string   `json:"end_time"`
	Timezone    string   `json:"timezone"` // IANA 名称，如 "Europe/Berlin"
}

// IsPoint 仅有最小经纬度时按点处理
func (c Coverage) IsPoint() bool {
	return c.LatMin != nil && c.LonMin != nil && (c.LatMax == nil || c.LonMax == nil)
}

// IsBox 四个边界齐全时按外包框处理
func (c Coverage) IsBox() bool {
	return c.LatMin != nil && c.LatMax != nil && c.LonMin != nil && c.LonMax != nil
}

// RelatedWork 关联成果
type RelatedWork struct {
	Identifier     string `json:"identifier"`
	IdentifierType string `json:"identifier_type"` // DOI | URL | Handle | IGSN | ...
	RelationType   string `json:"relation_type"`   // DataCite relationType
}

// FundingReference 资助信息
type FundingReference struct {
	Funder       string `json:"funder"`
	FunderID     string `json:"funder_id"`
	FunderIDType string `json:"funder_id_type"` // Crossref Funder ID | ROR | 其他
	AwardNumber  string `json:"award_number"`
	AwardTitle   string `json:"award_title"`
}

// Filter 过滤条件
type Filter struct {
	Search       string `json:"search"` // 标题/DOI/作者姓氏模糊匹配
	Year         int    `json:"year"`
	ResourceType string `json:"resource_type"`
}

// Pagination 分页参数
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// MainTitle 返回主标题文本；无 main 类型时回退到首个标题
func (r *Resource) MainTitle() string {
	for _, t := range r.Titles {
		if t.Type == "" || t.Type == "main" {
			return t.Text
		}
	}
	if len(r.Titles) > 0 {
		return r.Titles[0].Text
	}
	return ""
}

// Abstract 返回 Abstract 类型的描述文本，无则为空
func (r *Resource) Abstract() string {
	for _, d := range r.Descriptions {
		if d.Type == "Abstract" {
			return d.Text
		}
	}
	return ""
}
