package storage

import (
	"context"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// DerivativePlan maps a dimension tag (e.g. "w300h200") to its target size.
type DerivativePlan map[string]Dimensions

// DimensionTag encodes d as w<width>h<height>, omitting absent sides.
func DimensionTag(d Dimensions) string {
	var b strings.Builder
	if d.Width > 0 {
		b.WriteString("w")
		b.WriteString(strconv.Itoa(d.Width))
	}
	if d.Height > 0 {
		b.WriteString("h")
		b.WriteString(strconv.Itoa(d.Height))
	}
	return b.String()
}

// Collision records two named sizes that produced the same tag.
type Collision struct {
	Tag     string
	Dropped string
	Kept    string
}

// PlanDerivatives folds named sizes into a plan keyed by dimension tag.
// Names are folded in sorted order and a later name replaces an earlier one
// with the same tag; every replacement is returned as a Collision. Sizes
// with neither side set are skipped.
func PlanDerivatives(sizes map[string]Dimensions) (DerivativePlan, []Collision) {
	plan := make(DerivativePlan, len(sizes))
	owner := make(map[string]string, len(sizes))
	var collisions []Collision

	names := make([]string, 0, len(sizes))
	for name := range sizes {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		d := sizes[name]
		tag := DimensionTag(d)
		if tag == "" {
			continue
		}
		if prev, ok := owner[tag]; ok {
			collisions = append(collisions, Collision{Tag: tag, Dropped: prev, Kept: name})
		}
		plan[tag] = d
		owner[tag] = name
	}
	return plan, collisions
}

// Plan builds the derivative plan from the current size source. It is
// rebuilt on every call because the active theme may change.
func (s *Storage) Plan(ctx context.Context) DerivativePlan {
	if s.sizes == nil {
		return DerivativePlan{}
	}
	plan, collisions := PlanDerivatives(s.sizes.ImageSizes())
	for _, c := range collisions {
		log.Ctx(ctx).Warn().
			Str("tag", c.Tag).
			Str("dropped", c.Dropped).
			Str("kept", c.Kept).
			Msg("image sizes share a dimension tag")
	}
	return plan
}

// DerivativeURL rewrites an original's URL into the URL of its tag derivative:
// ".../original/name.jpg" becomes ".../size/<tag>/name.jpg".
func DerivativeURL(originalURL, tag string) string {
	const marker = "/original/"
	i := strings.LastIndex(originalURL, marker)
	if i < 0 {
		return originalURL
	}
	return originalURL[:i] + "/size/" + tag + "/" + originalURL[i+len(marker):]
}
