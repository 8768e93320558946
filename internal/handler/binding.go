package handler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/maxviazov/fusion-resource-service/internal/model"
	"github.com/maxviazov/fusion-resource-service/internal/service"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// pageQuery carries raw paging input. Zero means "use the default".
type pageQuery struct {
	PageNo   int `validate:"gte=0"`
	PageSize int `validate:"gte=0"`
}

var pageFields = map[string]string{"PageNo": "pageNo", "PageSize": "pageSize"}

// bindPage reads pageNo/pageSize. Absent or empty values stay zero and are defaulted later.
func bindPage(c *gin.Context) (model.PageParam, []service.FieldError) {
	var (
		q     pageQuery
		ferrs []service.FieldError
	)
	q.PageNo, ferrs = queryInt(c, "pageNo", q.PageNo, ferrs)
	q.PageSize, ferrs = queryInt(c, "pageSize", q.PageSize, ferrs)
	if len(ferrs) > 0 {
		return model.PageParam{}, ferrs
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				ferrs = append(ferrs, service.FieldError{Field: pageFields[fe.Field()], Message: "must be >= 0"})
			}
		}
		return model.PageParam{}, ferrs
	}
	return model.PageParam{PageNo: q.PageNo, PageSize: q.PageSize}, nil
}

func queryInt(c *gin.Context, key string, def int, ferrs []service.FieldError) (int, []service.FieldError) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, ferrs
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, append(ferrs, service.FieldError{Field: key, Message: "must be a valid integer"})
	}
	return n, ferrs
}

// optionalString returns a pointer only when the key is present in the query.
// A present but empty value is kept; the service decides what blank means.
func optionalString(c *gin.Context, key string) *string {
	v, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	return &v
}

// bindResourceParam maps the query string onto a ResourceParam.
// Parameters missing from the query leave their field unset.
func bindResourceParam(c *gin.Context) (model.ResourceParam, error) {
	page, ferrs := bindPage(c)

	p := model.ResourceParam{
		PageParam:    page,
		ResourceID:   optionalString(c, "resourceId"),
		ResourceName: optionalString(c, "resourceName"),
		OrganID:      optionalString(c, "organId"),
		TagName:      optionalString(c, "tagName"),
		GlobalID:     optionalString(c, "globalId"),
	}

	if raw, ok := c.GetQuery("resourceType"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			ferrs = append(ferrs, service.FieldError{Field: "resourceType", Message: "must be a valid integer"})
		} else {
			p.ResourceType = &n
		}
	}

	if values, ok := c.GetQueryArray("groupList"); ok {
		groups, err := parseGroupList(values)
		if err != nil {
			ferrs = append(ferrs, service.FieldError{Field: "groupList", Message: err.Error()})
		} else {
			p.GroupList = groups
		}
	}

	if err := service.NewInvalidInputError(ferrs); err != nil {
		return model.ResourceParam{}, err
	}
	return p, nil
}

// parseGroupList accepts repeated values and comma separated lists, in order.
// groupList=3&groupList=1,2 yields [3 1 2]. Blank items are skipped.
func parseGroupList(values []string) ([]int64, error) {
	out := make([]int64, 0, len(values))
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, errors.New("must be a list of integers")
			}
			out = append(out, id)
		}
	}
	return out, nil
}

func pathInt64(c *gin.Context, key string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param(key)), 10, 64)
	if err != nil || id <= 0 {
		return 0, service.NewInvalidInputError([]service.FieldError{{Field: key, Message: "must be a valid integer > 0"}})
	}
	return id, nil
}
