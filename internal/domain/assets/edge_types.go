package assets

import (
	"fmt"
	"strings"
)

type EdgeType string

type EdgeCategory string

const (
	CategoryContainment    EdgeCategory = "containment"
	CategoryDerivation     EdgeCategory = "derivation"
	CategoryPlacement      EdgeCategory = "placement"
	CategoryGovernance     EdgeCategory = "governance"
	CategoryResponsibility EdgeCategory = "responsibility"
	CategoryReference      EdgeCategory = "reference"
	CategoryDependency     EdgeCategory = "dependency"
	CategoryProvenance     EdgeCategory = "provenance"
)

const (
	EdgeParentOf EdgeType = "PARENT_OF" // parent -> child
	EdgePartOf   EdgeType = "PART_OF"

	EdgeInstanceOf  EdgeType = "INSTANCE_OF"
	EdgeTemplateFor EdgeType = "TEMPLATE_FOR"
	EdgeVersionOf   EdgeType = "VERSION_OF"
	EdgeSupersedes  EdgeType = "SUPERSEDES"
	EdgeAliasOf     EdgeType = "ALIAS_OF"

	EdgeBelongsToProject EdgeType = "BELONGS_TO_PROJECT"
	EdgeLocatedInLBS     EdgeType = "LOCATED_IN_LBS"
	EdgeCoversWBS        EdgeType = "COVERS_WBS"
	EdgeAppliesTo        EdgeType = "APPLIES_TO"
	EdgeMappedTo         EdgeType = "MAPPED_TO"
	EdgeRelatedTo        EdgeType = "RELATED_TO"

	EdgeGovernedBy    EdgeType = "GOVERNED_BY"
	EdgeImplements    EdgeType = "IMPLEMENTS"
	EdgeEvidences     EdgeType = "EVIDENCES"
	EdgeViolates      EdgeType = "VIOLATES"
	EdgeSatisfies     EdgeType = "SATISFIES"
	EdgeConstrainedBy EdgeType = "CONSTRAINED_BY"

	EdgeApprovedBy EdgeType = "APPROVED_BY"
	EdgeReviewedBy EdgeType = "REVIEWED_BY"
	EdgeOwnedBy    EdgeType = "OWNED_BY"
	EdgeAssignedTo EdgeType = "ASSIGNED_TO"
	EdgeReportedBy EdgeType = "REPORTED_BY"
	EdgeResolvedBy EdgeType = "RESOLVED_BY"
	EdgeCloses     EdgeType = "CLOSES"

	EdgeReferences EdgeType = "REFERENCES"
	EdgeCites      EdgeType = "CITES"
	EdgeQuotes     EdgeType = "QUOTES"
	EdgeSummarizes EdgeType = "SUMMARIZES"
	EdgeExtracts   EdgeType = "EXTRACTS"
	EdgeAnnotates  EdgeType = "ANNOTATES"
	EdgeTags       EdgeType = "TAGS"

	EdgeDependsOn  EdgeType = "DEPENDS_ON"
	EdgeBlockedBy  EdgeType = "BLOCKED_BY"
	EdgeReplaces   EdgeType = "REPLACES"
	EdgeDuplicates EdgeType = "DUPLICATES"

	EdgeContextFor    EdgeType = "CONTEXT_FOR"
	EdgeInputTo       EdgeType = "INPUT_TO"
	EdgeOutputOf      EdgeType = "OUTPUT_OF" // asset -> processing run
	EdgeGeneratedFrom EdgeType = "GENERATED_FROM"
)

var edgeCategories = map[EdgeType]EdgeCategory{
	EdgeParentOf: CategoryContainment, EdgePartOf: CategoryContainment,

	EdgeInstanceOf: CategoryDerivation, EdgeTemplateFor: CategoryDerivation, EdgeVersionOf: CategoryDerivation,
	EdgeSupersedes: CategoryDerivation, EdgeAliasOf: CategoryDerivation,

	EdgeBelongsToProject: CategoryPlacement, EdgeLocatedInLBS: CategoryPlacement, EdgeCoversWBS: CategoryPlacement,
	EdgeAppliesTo: CategoryPlacement, EdgeMappedTo: CategoryPlacement, EdgeRelatedTo: CategoryPlacement,

	EdgeGovernedBy: CategoryGovernance, EdgeImplements: CategoryGovernance, EdgeEvidences: CategoryGovernance,
	EdgeViolates: CategoryGovernance, EdgeSatisfies: CategoryGovernance, EdgeConstrainedBy: CategoryGovernance,

	EdgeApprovedBy: CategoryResponsibility, EdgeReviewedBy: CategoryResponsibility, EdgeOwnedBy: CategoryResponsibility,
	EdgeAssignedTo: CategoryResponsibility, EdgeReportedBy: CategoryResponsibility, EdgeResolvedBy: CategoryResponsibility,
	EdgeCloses: CategoryResponsibility,

	EdgeReferences: CategoryReference, EdgeCites: CategoryReference, EdgeQuotes: CategoryReference,
	EdgeSummarizes: CategoryReference, EdgeExtracts: CategoryReference, EdgeAnnotates: CategoryReference,
	EdgeTags: CategoryReference,

	EdgeDependsOn: CategoryDependency, EdgeBlockedBy: CategoryDependency, EdgeReplaces: CategoryDependency,
	EdgeDuplicates: CategoryDependency,

	EdgeContextFor: CategoryProvenance, EdgeInputTo: CategoryProvenance, EdgeOutputOf: CategoryProvenance,
	EdgeGeneratedFrom: CategoryProvenance,
}

func (e EdgeType) Valid() bool {
	_, ok := edgeCategories[e]
	return ok
}

func (e EdgeType) Category() EdgeCategory {
	return edgeCategories[e]
}

func ParseEdgeType(raw string) (EdgeType, error) {
	e := EdgeType(strings.ToUpper(strings.TrimSpace(raw)))
	if !e.Valid() {
		return "", fmt.Errorf("unknown edge type %q", raw)
	}
	return e, nil
}
