// File: internal/workflow/tags.go
package workflow

import (
	"context"

	"github.com/bigid-apps/quickstart/internal/bigid"
	"github.com/bigid-apps/quickstart/internal/cases"
	"github.com/bigid-apps/quickstart/internal/execution"
)

// TagValueTrue is the value of the boolean tag put on backed-up objects.
const TagValueTrue = "True"

// Tag is a tag name/value pair with the ids BigID uses to apply it.
type Tag struct {
	TagID    string `json:"tagId" validate:"required"`
	ValueID  string `json:"valueId" validate:"required"`
	TagName  string `json:"tagName"`
	TagValue string `json:"tagValue"`
}

type tagPairsPage struct {
	Data []Tag `json:"data" validate:"required,dive"`
}

type tagRef struct {
	TagID   string `json:"tagId"`
	ValueID string `json:"valueId"`
}

type objectTags struct {
	Type               string   `json:"type"`
	FullyQualifiedName string   `json:"fullyQualifiedName"`
	Tags               []tagRef `json:"tags"`
}

type tagsRequest struct {
	Data []objectTags `json:"data"`
}

// ResolveTag finds the ids of the tag called name with the given value.
// Both must match exactly.
func (r *Runner) ResolveTag(ctx context.Context, ec *execution.Context, name, value string) (*Tag, error) {
	tag, err := r.resolveTag(ctx, ec, name, value)
	if err != nil {
		return nil, bigid.Annotate("Failed to fetch tags from BigID.", err)
	}
	return tag, nil
}

func (r *Runner) resolveTag(ctx context.Context, ec *execution.Context, name, value string) (*Tag, error) {
	resp, err := r.api.Get(ctx, bigid.TargetFrom(ec), "data-catalog/tags/all-pairs?search="+bigid.QueryEscape(name))
	if err != nil {
		return nil, err
	}
	var page tagPairsPage
	if err := bigid.Decode(resp, &page); err != nil {
		return nil, err
	}
	for i := range page.Data {
		if page.Data[i].TagName == name && page.Data[i].TagValue == value {
			return &page.Data[i], nil
		}
	}
	return nil, bigid.NotFoundf("BigID API found no tag with name: %s and value: %s.", name, value)
}

// SetTagsOnObjects applies tag to every object, one call each, and returns
// how many writes succeeded. The first failure stops the loop.
func (r *Runner) SetTagsOnObjects(ctx context.Context, ec *execution.Context, tag *Tag, objects []cases.CatalogObject) (int, error) {
	updated := 0
	for _, obj := range objects {
		body := tagsRequest{Data: []objectTags{{
			Type:               "OBJECT",
			FullyQualifiedName: obj.FullyQualifiedName,
			Tags:               []tagRef{{TagID: tag.TagID, ValueID: tag.ValueID}},
		}}}
		if _, err := r.api.PostJSON(ctx, bigid.TargetFrom(ec), "data-catalog/manual-fields/tags", body); err != nil {
			return updated, bigid.Annotate("Failed to update tags for object "+obj.FullyQualifiedName+".", err)
		}
		updated++
	}
	return updated, nil
}
