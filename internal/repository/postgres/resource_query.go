package postgres

import (
	"fmt"
	"strings"

	"github.com/maxviazov/fusion-resource-service/internal/model"
)

// filter accumulates AND-ed predicates with positional arguments.
type filter struct {
	conds []string
	args  []any
}

// add appends a predicate; every %d in cond is replaced by the new argument's position.
func (f *filter) add(cond string, arg any) {
	f.args = append(f.args, arg)
	n := len(f.args)
	f.conds = append(f.conds, strings.ReplaceAll(cond, "%d", fmt.Sprint(n)))
}

func (f *filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.conds, " AND ")
}

// next returns the placeholder for the argument after those already collected.
func (f *filter) next(offset int) string {
	return fmt.Sprintf("$%d", len(f.args)+offset)
}

// resourceFilter turns the set dimensions of p into a WHERE clause over resources aliased as r.
func resourceFilter(p model.ResourceParam) *filter {
	f := &filter{}
	if p.ResourceID != nil {
		f.add("r.resource_id = $%d", *p.ResourceID)
	}
	if p.ResourceName != nil {
		f.add("r.resource_name ILIKE $%d", containsPattern(*p.ResourceName))
	}
	if p.ResourceType != nil {
		f.add("r.resource_type = $%d", *p.ResourceType)
	}
	if p.OrganID != nil {
		f.add("r.organ_id = $%d", *p.OrganID)
	}
	if p.TagName != nil {
		f.add("EXISTS (SELECT 1 FROM unnest(r.tags) AS tag WHERE tag ILIKE $%d)", containsPattern(*p.TagName))
	}
	if p.GlobalID != nil {
		f.add("r.global_id = $%d", *p.GlobalID)
	}
	if len(p.GroupList) > 0 {
		f.add("r.organ_id IN (SELECT gm.organ_id FROM group_organs gm WHERE gm.group_id = ANY($%d))", p.GroupList)
	}
	return f
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s anywhere, with s's wildcards taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
