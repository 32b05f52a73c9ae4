package graph

import (
	"fmt"
	"strings"

	"github.com/yungbote/siteproof-backend/internal/domain/assets"
)

// Kind is a graph collection exposed under /api/neo4j/:projectId/<kind>.
type Kind string

const (
	KindLots         Kind = "lots"
	KindWBS          Kind = "wbs"
	KindLBS          Kind = "lbs"
	KindAreaCodes    Kind = "area-codes"
	KindPhotos       Kind = "photos"
	KindSamples      Kind = "samples"
	KindITPTemplates Kind = "itp-templates"
)

type kindSpec struct {
	assetType assets.Type
	orderBy   string
}

var kinds = map[Kind]kindSpec{
	KindLots:         {assets.TypeLot, "n.document_number ASC, n.id ASC"},
	KindWBS:          {assets.TypeWBSNode, "n.document_number ASC, n.name ASC"},
	KindLBS:          {assets.TypeLBSNode, "n.document_number ASC, n.name ASC"},
	KindAreaCodes:    {assets.TypeAreaCode, "n.document_number ASC, n.name ASC"},
	KindPhotos:       {assets.TypePhoto, "n.created_at DESC, n.id DESC"},
	KindSamples:      {assets.TypeSample, "n.created_at DESC, n.id DESC"},
	KindITPTemplates: {assets.TypeITPTemplate, "n.name ASC, n.id ASC"},
}

// labels are the node labels of the projected asset types.
var labels = map[assets.Type]string{
	assets.TypeLot:         "Lot",
	assets.TypeWBSNode:     "WBSNode",
	assets.TypeLBSNode:     "LBSNode",
	assets.TypeAreaCode:    "AreaCode",
	assets.TypePhoto:       "Photo",
	assets.TypeSample:      "Sample",
	assets.TypeITPTemplate: "ITPTemplate",
}

func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := kinds[k]; !ok {
		return "", fmt.Errorf("unknown graph collection %q", raw)
	}
	return k, nil
}

func (k Kind) AssetType() assets.Type { return kinds[k].assetType }

func AllKinds() []Kind {
	return []Kind{KindLots, KindWBS, KindLBS, KindAreaCodes, KindPhotos, KindSamples, KindITPTemplates}
}

// Projected reports whether assets of type t are mirrored into the graph.
func Projected(t assets.Type) bool {
	_, ok := labels[t]
	return ok
}

func ProjectedTypes() []assets.Type {
	out := make([]assets.Type, 0, len(labels))
	for _, k := range AllKinds() {
		out = append(out, k.AssetType())
	}
	return out
}

func LabelFor(t assets.Type) string { return labels[t] }
