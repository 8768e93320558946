// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior.
package model

import "time"

// Resource is a data resource published by an organ into the fusion registry.
type Resource struct {
	ID           int64     `json:"id"`
	ResourceID   string    `json:"resourceId"`
	ResourceName string    `json:"resourceName"`
	ResourceType int       `json:"resourceType"`
	ResourceDesc string    `json:"resourceDesc,omitempty"`
	OrganID      string    `json:"organId"`
	GlobalID     string    `json:"globalId"`
	Tags         []string  `json:"tags"`
	FileRows     int64     `json:"fileRows"`
	FileColumns  int       `json:"fileColumns"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Group is a named set of organs that share resource visibility.
type Group struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// GroupOrgan records an organ's membership in a group.
type GroupOrgan struct {
	GroupID  int64     `json:"groupId"`
	OrganID  string    `json:"organId"`
	JoinedAt time.Time `json:"joinedAt"`
}
