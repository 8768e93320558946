package model

// ResourceParam carries optional filter criteria for a resource lookup.
// A nil field means the dimension is not filtered on. The struct does no
// validation; matching semantics belong to the repository that consumes it.
type ResourceParam struct {
	PageParam

	ResourceID   *string `json:"resourceId,omitempty"`
	ResourceName *string `json:"resourceName,omitempty"`
	ResourceType *int    `json:"resourceType,omitempty"`
	OrganID      *string `json:"organId,omitempty"`
	TagName      *string `json:"tagName,omitempty"`
	GlobalID     *string `json:"globalId,omitempty"`
	GroupList    []int64 `json:"groupList,omitempty"`
}

// IsFiltered reports whether at least one filter dimension is set.
func (p ResourceParam) IsFiltered() bool {
	return p.ResourceID != nil ||
		p.ResourceName != nil ||
		p.ResourceType != nil ||
		p.OrganID != nil ||
		p.TagName != nil ||
		p.GlobalID != nil ||
		len(p.GroupList) > 0
}

// Ptr returns a pointer to v. Handy for populating optional filter fields.
func Ptr[T any](v T) *T { return &v }
