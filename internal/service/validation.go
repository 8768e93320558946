package service

import (
	"slices"
	"strings"

	"github.com/maxviazov/fusion-resource-service/internal/model"
)

const (
	maxNameLen  = 128
	maxTagLen   = 64
	maxTags     = 32
	maxBatchLen = 500
)

// normalizeTags trims, drops empties and de-duplicates case-insensitively, keeping first spelling and order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// trimOptional trims a set filter value; a value that trims to empty becomes unset.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeResourceParam returns a copy safe to hand to a repository.
// The caller's value, including its GroupList backing array, is left untouched.
func normalizeResourceParam(p model.ResourceParam) model.ResourceParam {
	out := p
	out.PageParam = p.PageParam.Normalize()
	out.ResourceID = trimOptional(p.ResourceID)
	out.ResourceName = trimOptional(p.ResourceName)
	out.OrganID = trimOptional(p.OrganID)
	out.TagName = trimOptional(p.TagName)
	out.GlobalID = trimOptional(p.GlobalID)
	out.GroupList = slices.Clone(p.GroupList)
	return out
}

func validateResource(prefix string, r model.Resource) []FieldError {
	var ferrs []FieldError
	if r.ResourceName == "" {
		ferrs = append(ferrs, FieldError{Field: prefix + "resourceName", Message: "must not be empty"})
	} else if len([]rune(r.ResourceName)) > maxNameLen {
		ferrs = append(ferrs, FieldError{Field: prefix + "resourceName", Message: "length must be <= 128"})
	}
	if r.OrganID == "" {
		ferrs = append(ferrs, FieldError{Field: prefix + "organId", Message: "must not be empty"})
	}
	if r.ResourceType < 0 {
		ferrs = append(ferrs, FieldError{Field: prefix + "resourceType", Message: "must be >= 0"})
	}
	if r.FileRows < 0 {
		ferrs = append(ferrs, FieldError{Field: prefix + "fileRows", Message: "must be >= 0"})
	}
	if r.FileColumns < 0 {
		ferrs = append(ferrs, FieldError{Field: prefix + "fileColumns", Message: "must be >= 0"})
	}
	if len(r.Tags) > maxTags {
		ferrs = append(ferrs, FieldError{Field: prefix + "tags", Message: "at most 32 tags"})
	}
	for _, t := range r.Tags {
		if len([]rune(t)) > maxTagLen {
			ferrs = append(ferrs, FieldError{Field: prefix + "tags", Message: "each tag must be <= 64 characters"})
			break
		}
	}
	return ferrs
}

func validateResourceParam(p model.ResourceParam) []FieldError {
	var ferrs []FieldError
	for _, id := range p.GroupList {
		if id <= 0 {
			ferrs = append(ferrs, FieldError{Field: "groupList", Message: "group ids must be > 0"})
			break
		}
	}
	return ferrs
}
