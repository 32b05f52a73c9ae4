package assets

import (
	"fmt"
	"sort"
	"strings"
)

type Type string

const (
	TypeDocument         Type = "document"
	TypeDrawing          Type = "drawing"
	TypeLot              Type = "lot"
	TypeITPTemplate      Type = "itp_template"
	TypeITPDocument      Type = "itp_document"
	TypeInspectionPoint  Type = "inspection_point"
	TypeSample           Type = "sample"
	TypeTestResult       Type = "test_result"
	TypePhoto            Type = "photo"
	TypeWBSNode          Type = "wbs_node"
	TypeLBSNode          Type = "lbs_node"
	TypeAreaCode         Type = "area_code"
	TypeTimesheet        Type = "timesheet"
	TypeDailyDiary       Type = "daily_diary"
	TypeSiteInstruction  Type = "site_instruction"
	TypePlant            Type = "plant"
	TypeRosterEntry      Type = "roster_entry"
	TypeNCR              Type = "ncr"
	TypeApprovalWorkflow Type = "approval_workflow"
	TypeQSEDocument      Type = "qse_document"
	TypeAttachment       Type = "attachment"
)

var knownTypes = map[Type]struct{}{
	TypeDocument: {}, TypeDrawing: {}, TypeLot: {}, TypeITPTemplate: {}, TypeITPDocument: {},
	TypeInspectionPoint: {}, TypeSample: {}, TypeTestResult: {}, TypePhoto: {}, TypeWBSNode: {},
	TypeLBSNode: {}, TypeAreaCode: {}, TypeTimesheet: {}, TypeDailyDiary: {}, TypeSiteInstruction: {},
	TypePlant: {}, TypeRosterEntry: {}, TypeNCR: {}, TypeApprovalWorkflow: {}, TypeQSEDocument: {},
	TypeAttachment: {},
}

func (t Type) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

func ParseType(raw string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown asset type %q", raw)
	}
	return t, nil
}

func AllTypes() []Type {
	out := make([]Type, 0, len(knownTypes))
	for t := range knownTypes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
